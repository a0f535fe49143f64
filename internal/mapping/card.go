package mapping

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Card types.
const (
	CardQuote  = "quote"
	CardCustom = "custom"
	CardEmpty  = "empty"
)

// CardTypeFinancialData selects the user-field metric card.
const CardTypeFinancialData = "financial-data"

type CardData struct {
	Type    string   `json:"type"`
	Quote   *Quote   `json:"quote,omitempty"`
	Metrics []Metric `json:"metrics,omitempty"`
}

type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         *Number `json:"price"`
	Change        *Number `json:"change"`
	ChangePercent *Number `json:"changePercent"`
	High          *Number `json:"high,omitempty"`
	Low           *Number `json:"low,omitempty"`
	Open          *Number `json:"open,omitempty"`
	Volume        *Number `json:"volume,omitempty"`
	PreviousClose *Number `json:"previousClose,omitempty"`
	IsPositive    bool    `json:"isPositive"`
}

type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

var cryptoMarkers = []string{"USD", "BTC", "ETH"}

// DetectCard builds a key-metrics card: a custom financial-data card when
// configured and non-empty, else an Alpha Vantage global quote, else a
// Finnhub quote.
func DetectCard(raw []byte, cfg CardConfig) CardData {
	return detectCard(gjson.ParseBytes(raw), cfg)
}

func detectCard(data gjson.Result, cfg CardConfig) CardData {
	empty := CardData{Type: CardEmpty}
	if !objectLike(data) {
		return empty
	}

	if cfg.CardType == CardTypeFinancialData && len(cfg.Fields) > 0 {
		if metrics := customMetrics(data, cfg); len(metrics) > 0 {
			return CardData{Type: CardCustom, Metrics: metrics}
		}
	}

	if gq := field(data, "Global Quote"); truthy(gq) {
		change := parseFloat(field(gq, "09. change"))
		pct := strings.Replace(Stringify(field(gq, "10. change percent")), "%", "", 1)
		return CardData{Type: CardQuote, Quote: &Quote{
			Symbol:        stringOrEmpty(field(gq, "01. symbol")),
			Price:         numPtr(parseFloat(field(gq, "05. price"))),
			Change:        numPtr(change),
			ChangePercent: numPtr(parseFloatString(pct)),
			High:          numPtr(parseFloat(field(gq, "03. high"))),
			Low:           numPtr(parseFloat(field(gq, "04. low"))),
			Open:          numPtr(parseFloat(field(gq, "02. open"))),
			Volume:        numPtr(parseInt(field(gq, "06. volume"))),
			IsPositive:    change > 0,
		}}
	}

	symbol := strings.ToUpper(cfg.Symbol)
	crypto := false
	if cfg.APIProvider == "finnhub" {
		for _, m := range cryptoMarkers {
			if strings.Contains(symbol, m) {
				crypto = true
				break
			}
		}
	}
	c, d := field(data, "c"), field(data, "d")
	if c.Type == gjson.Number && (crypto || d.Type == gjson.Number) {
		if symbol == "" {
			symbol = "QUOTE"
		}
		return CardData{Type: CardQuote, Quote: &Quote{
			Symbol:        symbol,
			Price:         rawNumber(c),
			Change:        rawNumber(d),
			ChangePercent: rawNumber(field(data, "dp")),
			High:          rawNumber(field(data, "h")),
			Low:           rawNumber(field(data, "l")),
			Open:          rawNumber(field(data, "o")),
			Volume:        rawNumber(field(data, "v")),
			PreviousClose: rawNumber(field(data, "pc")),
			IsPositive:    d.Type == gjson.Number && d.Num > 0,
		}}
	}

	return empty
}

func customMetrics(data gjson.Result, cfg CardConfig) []Metric {
	source := data
	if cfg.ArrayDataPath != "" {
		source = Get(data, cfg.ArrayDataPath)
	}
	if source.IsArray() {
		source = index(source, 0)
	}
	if !objectLike(source) {
		return nil
	}
	var metrics []Metric
	for _, f := range cfg.Fields {
		v := FormatMetric(Get(source, f.Path))
		if v == "N/A" || v == "NaN" {
			continue
		}
		metrics = append(metrics, Metric{Label: f.Label, Value: v})
	}
	return metrics
}

func rawNumber(v gjson.Result) *Number {
	if v.Type != gjson.Number {
		return nil
	}
	return numPtr(v.Num)
}

func stringOrEmpty(v gjson.Result) string {
	if !v.Exists() || v.Type == gjson.Null {
		return ""
	}
	return Stringify(v)
}
