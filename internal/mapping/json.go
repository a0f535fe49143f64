// Package mapping turns arbitrary third-party JSON payloads into the shapes the
// dashboard renders: flattened field lists for the field picker, table rows,
// chart points and metric cards.
//
// Everything here walks the payload with gjson so that object keys are seen in
// document order. Several rules depend on that order ("first array-valued
// property", newest-first time series), so decoding into map[string]any is not
// an option.
//
// Values are stringified and coerced the way the dashboard's browser client
// always did (String(), parseFloat, parseInt). Those rules are implemented in
// this file and shared by the detectors.
package mapping

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Get resolves a dotted path against v. Objects are indexed by key (the last
// duplicate wins), arrays by non-negative integer index. Anything else yields
// a non-existent result.
func Get(v gjson.Result, path string) gjson.Result {
	cur := v
	for _, part := range strings.Split(path, ".") {
		switch {
		case cur.IsObject():
			cur = member(cur, part)
		case cur.IsArray():
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 {
				return gjson.Result{}
			}
			elems := cur.Array()
			if idx >= len(elems) {
				return gjson.Result{}
			}
			cur = elems[idx]
		default:
			return gjson.Result{}
		}
		if !cur.Exists() {
			return cur
		}
	}
	return cur
}

// GetBytes is Get over a raw payload.
func GetBytes(raw []byte, path string) gjson.Result {
	return Get(gjson.ParseBytes(raw), path)
}

func member(obj gjson.Result, key string) gjson.Result {
	var out gjson.Result
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.Str == key {
			out = v
		}
		return true
	})
	return out
}

// keys returns the object's keys in document order without duplicates.
func keys(obj gjson.Result) []string {
	var out []string
	seen := make(map[string]struct{})
	obj.ForEach(func(k, _ gjson.Result) bool {
		if _, ok := seen[k.Str]; !ok {
			seen[k.Str] = struct{}{}
			out = append(out, k.Str)
		}
		return true
	})
	return out
}

// firstArrayValue returns the first array-valued top-level property of an
// object, or the zero result.
func firstArrayValue(obj gjson.Result) (gjson.Result, bool) {
	if !obj.IsObject() {
		return gjson.Result{}, false
	}
	for _, k := range keys(obj) {
		if v := member(obj, k); v.IsArray() {
			return v, true
		}
	}
	return gjson.Result{}, false
}

// objectLike reports whether v is a JSON object or array.
func objectLike(v gjson.Result) bool {
	return v.IsObject() || v.IsArray()
}

func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return v.Num != 0 && !math.IsNaN(v.Num)
	case gjson.String:
		return v.Str != ""
	default:
		return true
	}
}

// Stringify renders a value the way String(value) does in a browser.
// Missing values render as "undefined".
func Stringify(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		return formatJSNumber(v.Num)
	case gjson.True:
		return "true"
	case gjson.False:
		return "false"
	case gjson.Null:
		if v.Exists() {
			return "null"
		}
		return "undefined"
	}
	if v.IsArray() {
		elems := v.Array()
		parts := make([]string, len(elems))
		for i, e := range elems {
			if e.Type == gjson.Null {
				continue
			}
			parts[i] = Stringify(e)
		}
		return strings.Join(parts, ",")
	}
	return "[object Object]"
}

func formatJSNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	exp = strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + exp
}

// parseFloat mirrors the browser's parseFloat: the longest decimal prefix of
// the value's string form, after leading whitespace. NaN when there is none.
func parseFloat(v gjson.Result) float64 {
	if v.Type == gjson.Number {
		return v.Num
	}
	return parseFloatString(Stringify(v))
}

func parseFloatString(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	if s == "" {
		return math.NaN()
	}
	i := 0
	if s[i] == '+' || s[i] == '-' {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		if s[0] == '-' {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return math.NaN()
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	// out of range input still yields +/-Inf alongside the error
	f, _ := strconv.ParseFloat(s[:i], 64)
	return f
}

// parseInt mirrors parseInt(value, 10).
func parseInt(v gjson.Result) float64 {
	s := strings.TrimLeft(Stringify(v), " \t\n\r\v\f")
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == start {
		return math.NaN()
	}
	f, _ := strconv.ParseFloat(s[:i], 64)
	return f
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
