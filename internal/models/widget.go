package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Component names understood by the dashboard.
const (
	ComponentTable = "DataTableWidget"
	ComponentChart = "StockChartWidget"
	ComponentCard  = "KeyMetricsWidget"
)

// Widget is one dashboard tile. The JSON shape is the export/import format.
type Widget struct {
	ID            string        `json:"id"`
	ComponentName string        `json:"componentName"`
	Title         string        `json:"title"`
	Config        *WidgetConfig `json:"config,omitempty"`
	Layout        Layouts       `json:"layout"`
}

// Layouts holds grid placement per breakpoint. Only lg is used.
type Layouts struct {
	LG *GridItem `json:"lg,omitempty"`
}

type GridItem struct {
	I      string `json:"i"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	W      int    `json:"w"`
	H      int    `json:"h"`
	MinW   *int   `json:"minW,omitempty"`
	MinH   *int   `json:"minH,omitempty"`
	Static *bool  `json:"static,omitempty"`
}

// WidgetConfig is the flat, persisted configuration bag. Which fields matter
// depends on the widget's component.
type WidgetConfig struct {
	DataSource        string          `json:"dataSource,omitempty"`
	RefreshInterval   Interval        `json:"refreshInterval,omitempty"`
	APIProvider       string          `json:"apiProvider,omitempty"`
	CustomAPIEndpoint string          `json:"customApiEndpoint,omitempty"`
	ChartType         string          `json:"chartType,omitempty"`
	TimeInterval      string          `json:"timeInterval,omitempty"`
	CardType          string          `json:"cardType,omitempty"`
	SelectedFields    []SelectedField `json:"selectedFields,omitempty"`
	ArrayDataPath     string          `json:"arrayDataPath,omitempty"`
	Symbol            string          `json:"symbol,omitempty"`
	Keywords          string          `json:"keywords,omitempty"`
	From              string          `json:"from,omitempty"`
	To                string          `json:"to,omitempty"`
}

// SelectedField is a user-chosen payload path with a display label.
type SelectedField struct {
	Path    string `json:"path"`
	Label   string `json:"label"`
	Format  string `json:"format,omitempty"`
	IsArray bool   `json:"isArray,omitempty"`
}

// Interval is a refresh interval in seconds. It is stored as a decimal string
// but numbers are accepted on input.
type Interval string

func (i *Interval) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*i = Interval(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*i = Interval(n.String())
	return nil
}

// Seconds returns the interval in whole seconds, 0 when unset or invalid.
func (i Interval) Seconds() int {
	s := strings.TrimSpace(string(i))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0
	}
	return int(f)
}
