package mapping

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/GregMSThompson/findash-backend/internal/errs"
)

// Project maps a raw payload to the display shape for cfg's kind:
// []Row for tables, []ChartPoint for charts and CardData for cards.
// It has no side effects.
func Project(raw []byte, cfg Config) (any, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errs.NewParseError("response is not valid JSON", nil)
	}
	data := gjson.ParseBytes(raw)

	switch c := cfg.(type) {
	case TableConfig:
		return detectTableRows(data, c), nil
	case ChartConfig:
		return detectChartPoints(data, c), nil
	case CardConfig:
		return detectCard(data, c), nil
	}
	return nil, errs.NewValidationError(fmt.Sprintf("unsupported widget config %T", cfg))
}

// ProviderErrorMarkers are top-level keys data providers use to report
// failures inside a 200 response, checked in this order.
var ProviderErrorMarkers = []string{"Information", "Note", "Error Message"}

// CheckProviderError returns a ProviderError when the payload carries one of
// the provider error markers.
func CheckProviderError(raw []byte) error {
	data := gjson.ParseBytes(raw)
	if !data.IsObject() {
		return nil
	}
	for _, marker := range ProviderErrorMarkers {
		if v := member(data, marker); truthy(v) {
			return errs.NewProviderError(marker, Stringify(v))
		}
	}
	return nil
}
