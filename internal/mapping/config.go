package mapping

import (
	"fmt"

	"github.com/GregMSThompson/findash-backend/internal/errs"
	"github.com/GregMSThompson/findash-backend/internal/models"
)

type Kind string

const (
	KindTable Kind = "table"
	KindChart Kind = "chart"
	KindCard  Kind = "card"
)

// Config is the per-kind projection configuration. Exactly one of
// TableConfig, ChartConfig or CardConfig.
type Config interface {
	Kind() Kind
}

// Field is a selected payload path and the label it is shown under.
type Field struct {
	Path  string
	Label string
}

type TableConfig struct {
	DataSource    string
	ArrayDataPath string
	Fields        []Field
}

type ChartConfig struct {
	ChartType    string
	TimeInterval string
	Fields       []Field
}

type CardConfig struct {
	CardType      string
	APIProvider   string
	Symbol        string
	ArrayDataPath string
	Fields        []Field
}

func (TableConfig) Kind() Kind { return KindTable }
func (ChartConfig) Kind() Kind { return KindChart }
func (CardConfig) Kind() Kind  { return KindCard }

// ResolveConfig builds the projection config for a widget component from its
// persisted configuration bag. A nil bag is treated as empty.
func ResolveConfig(componentName string, wc *models.WidgetConfig) (Config, error) {
	if wc == nil {
		wc = &models.WidgetConfig{}
	}
	fields := toFields(wc.SelectedFields)

	switch componentName {
	case models.ComponentTable:
		return TableConfig{
			DataSource:    wc.DataSource,
			ArrayDataPath: wc.ArrayDataPath,
			Fields:        fields,
		}, nil
	case models.ComponentChart:
		return ChartConfig{
			ChartType:    wc.ChartType,
			TimeInterval: wc.TimeInterval,
			Fields:       fields,
		}, nil
	case models.ComponentCard:
		return CardConfig{
			CardType:      wc.CardType,
			APIProvider:   wc.APIProvider,
			Symbol:        wc.Symbol,
			ArrayDataPath: wc.ArrayDataPath,
			Fields:        fields,
		}, nil
	}
	return nil, errs.NewValidationError(fmt.Sprintf("unknown widget component %q", componentName))
}

func toFields(selected []models.SelectedField) []Field {
	out := make([]Field, 0, len(selected))
	for _, f := range selected {
		label := f.Label
		if label == "" {
			label = LastSegment(f.Path)
		}
		out = append(out, Field{Path: f.Path, Label: label})
	}
	return out
}

// NormalizeFields drops empty paths and later duplicates, and fills in
// missing labels.
func NormalizeFields(selected []models.SelectedField) []models.SelectedField {
	out := make([]models.SelectedField, 0, len(selected))
	seen := make(map[string]struct{}, len(selected))
	for _, f := range selected {
		if f.Path == "" {
			continue
		}
		if _, dup := seen[f.Path]; dup {
			continue
		}
		seen[f.Path] = struct{}{}
		if f.Label == "" {
			f.Label = LastSegment(f.Path)
		}
		out = append(out, f)
	}
	return out
}
