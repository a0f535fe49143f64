package mapping

import (
	"math"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// ChartPoint is one sample of a price series. Numeric fields that failed to
// parse marshal as null.
type ChartPoint struct {
	Date   string  `json:"date"`
	Open   *Number `json:"open,omitempty"`
	High   *Number `json:"high,omitempty"`
	Low    *Number `json:"low,omitempty"`
	Close  Number  `json:"close"`
	Volume *Number `json:"volume,omitempty"`
}

// Key substrings tried, in order, when guessing which property of a record
// holds the timestamp and which holds the price.
var (
	DateKeyCandidates  = []string{"date", "time", "timestamp"}
	CloseKeyCandidates = []string{"close", "price", "value"}
)

const isoMillis = "2006-01-02T15:04:05.000Z"

// maximum magnitude of a JavaScript Date, in milliseconds
const maxDateMillis = 8.64e15

// DetectChartPoints turns a payload into chart points:
//
//  1. an object key containing "Time Series" (newest-first entries, reversed)
//  2. parallel c/t arrays with Unix-second timestamps
//  3. selected fields: [ms, close] pairs or records with date/close-like keys
//
// Anything else gives no points. Records whose date cannot be parsed are
// dropped.
func DetectChartPoints(raw []byte, cfg ChartConfig) []ChartPoint {
	return detectChartPoints(gjson.ParseBytes(raw), cfg)
}

func detectChartPoints(data gjson.Result, cfg ChartConfig) []ChartPoint {
	points := []ChartPoint{}
	if !truthy(data) {
		return points
	}

	if data.IsObject() {
		for _, k := range keys(data) {
			if !strings.Contains(k, "Time Series") {
				continue
			}
			if series := member(data, k); truthy(series) {
				return timeSeriesPoints(series)
			}
			break
		}

		c, t := member(data, "c"), member(data, "t")
		if truthy(c) && t.IsArray() {
			return candlePoints(data, t)
		}
	}

	if len(cfg.Fields) > 0 {
		return heuristicPoints(data, cfg.Fields[0].Path)
	}
	return points
}

func timeSeriesPoints(series gjson.Result) []ChartPoint {
	points := []ChartPoint{}
	if !series.IsObject() {
		return points
	}
	for _, date := range keys(series) {
		v := member(series, date)
		points = append(points, ChartPoint{
			Date:   date,
			Open:   numPtr(parseFloat(field(v, "1. open"))),
			High:   numPtr(parseFloat(field(v, "2. high"))),
			Low:    numPtr(parseFloat(field(v, "3. low"))),
			Close:  Number(parseFloat(field(v, "4. close"))),
			Volume: numPtr(parseInt(field(v, "5. volume"))),
		})
	}
	// providers list newest first; charts want oldest first
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points
}

func candlePoints(data, stamps gjson.Result) []ChartPoint {
	points := []ChartPoint{}
	o, h, l, c, v := member(data, "o"), member(data, "h"), member(data, "l"), member(data, "c"), member(data, "v")
	for i, ts := range stamps.Array() {
		secs := parseFloat(ts)
		date, ok := isoFromMillis(secs * 1000)
		if !ok {
			continue
		}
		points = append(points, ChartPoint{
			Date:   date,
			Open:   indexNumber(o, i),
			High:   indexNumber(h, i),
			Low:    indexNumber(l, i),
			Close:  Number(parseFloat(index(c, i))),
			Volume: indexNumber(v, i),
		})
	}
	return points
}

func heuristicPoints(data gjson.Result, firstPath string) []ChartPoint {
	points := []ChartPoint{}
	source := Get(data, firstPath)
	if !source.IsArray() {
		arr, ok := firstArrayValue(data)
		if !ok {
			return points
		}
		source = arr
	}
	items := source.Array()
	if len(items) == 0 {
		return points
	}

	if first := items[0]; first.IsArray() {
		pair := first.Array()
		if len(pair) == 2 && pair[0].Type == gjson.Number {
			for _, item := range items {
				p := item.Array()
				if !item.IsArray() || len(p) < 2 || p[0].Type != gjson.Number {
					continue
				}
				date, ok := isoFromMillis(p[0].Num)
				if !ok {
					continue
				}
				points = append(points, ChartPoint{Date: date, Close: Number(parseFloat(p[1]))})
			}
			return points
		}
	}

	for _, item := range items {
		if !objectLike(item) {
			continue
		}
		itemKeys := objectKeys(item)
		dateKey := matchKey(itemKeys, DateKeyCandidates, "date")
		closeKey := matchKey(itemKeys, CloseKeyCandidates, "close")

		date, ok := parseDateValue(field(item, dateKey))
		if !ok {
			continue
		}
		points = append(points, ChartPoint{
			Date:  date,
			Close: Number(parseFloat(field(item, closeKey))),
			Open:  numPtr(parseFloat(field(item, "open"))),
			High:  numPtr(parseFloat(field(item, "high"))),
			Low:   numPtr(parseFloat(field(item, "low"))),
		})
	}
	return points
}

// matchKey returns the first key whose lower-cased name contains any of the
// candidates.
func matchKey(keys, candidates []string, fallback string) string {
	for _, k := range keys {
		lk := strings.ToLower(k)
		for _, c := range candidates {
			if strings.Contains(lk, c) {
				return k
			}
		}
	}
	return fallback
}

func objectKeys(v gjson.Result) []string {
	if v.IsObject() {
		return keys(v)
	}
	out := make([]string, len(v.Array()))
	for i := range out {
		out[i] = formatJSNumber(float64(i))
	}
	return out
}

// field reads a key from an object or an index from an array.
func field(v gjson.Result, key string) gjson.Result {
	if v.IsObject() {
		return member(v, key)
	}
	if v.IsArray() {
		return Get(v, key)
	}
	return gjson.Result{}
}

func index(arr gjson.Result, i int) gjson.Result {
	if !arr.IsArray() {
		return gjson.Result{}
	}
	elems := arr.Array()
	if i >= len(elems) {
		return gjson.Result{}
	}
	return elems[i]
}

func indexNumber(arr gjson.Result, i int) *Number {
	v := index(arr, i)
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	return numPtr(parseFloat(v))
}

// parseDateValue converts a record's date value to an ISO timestamp. Numbers
// are epoch milliseconds, except 10-digit numbers which are epoch seconds.
func parseDateValue(v gjson.Result) (string, bool) {
	switch v.Type {
	case gjson.Number:
		ms := v.Num
		if len(formatJSNumber(ms)) == 10 {
			ms *= 1000
		}
		return isoFromMillis(ms)
	case gjson.String:
		t, ok := parseDateString(v.Str)
		if !ok {
			return "", false
		}
		return t.UTC().Format(isoMillis), true
	case gjson.Null:
		if v.Exists() {
			return isoFromMillis(0)
		}
		return "", false
	case gjson.True:
		return isoFromMillis(1)
	case gjson.False:
		return isoFromMillis(0)
	}
	return "", false
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-01",
	"2006",
	time.RFC1123Z,
	time.RFC1123,
	"Mon Jan 2 2006 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"01/02/2006",
	"2006/01/02",
}

// parseDateString accepts the date forms market APIs commonly emit.
// Zone-less values are read as UTC.
func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isoFromMillis(ms float64) (string, bool) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > maxDateMillis {
		return "", false
	}
	return time.UnixMilli(int64(ms)).UTC().Format(isoMillis), true
}
