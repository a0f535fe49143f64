package mapping

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var nonNumeric = regexp.MustCompile(`[^0-9.\-]+`)

// FormatMetric renders a metric value for a card: large magnitudes get a
// T/B/M/K suffix, moderate ones two (or, below 1, four) decimals. Missing
// values are "N/A".
func FormatMetric(v gjson.Result) string {
	if !v.Exists() || v.Type == gjson.Null {
		return "N/A"
	}
	s := nonNumeric.ReplaceAllString(Stringify(v), "")
	num := 0.0
	if s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return "N/A"
		}
		num = f
	}
	return FormatNumber(num)
}

// FormatNumber applies the card number format to n.
func FormatNumber(n float64) string {
	abs := math.Abs(n)
	switch {
	case abs >= 1e12:
		return strconv.FormatFloat(n/1e12, 'f', 2, 64) + "T"
	case abs >= 1e9:
		return strconv.FormatFloat(n/1e9, 'f', 2, 64) + "B"
	case abs >= 1e6:
		return strconv.FormatFloat(n/1e6, 'f', 2, 64) + "M"
	case abs >= 1000:
		return strconv.FormatFloat(n/1000, 'f', 1, 64) + "K"
	case abs > 0.0001 && abs < 10000:
		maxDigits := 4
		if abs > 1 {
			maxDigits = 2
		}
		return fixedTrimmed(n, 2, maxDigits)
	}
	return formatJSNumber(n)
}

// fixedTrimmed rounds to maxDigits decimals, then drops trailing zeros but
// keeps at least minDigits. Thousands are grouped with commas.
func fixedTrimmed(n float64, minDigits, maxDigits int) string {
	s := strconv.FormatFloat(n, 'f', maxDigits, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	for len(frac) > minDigits && strings.HasSuffix(frac, "0") {
		frac = frac[:len(frac)-1]
	}
	return groupThousands(intPart) + "." + frac
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}
