package mapping

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/tidwall/gjson"
)

// Cell is one labelled value of a Row.
type Cell struct {
	Label string
	Value json.RawMessage
}

// Row is an ordered label to value mapping. It marshals to a JSON object with
// keys in insertion order. Missing values marshal as null.
type Row struct {
	cells []Cell
}

// Set stores a value under label, replacing an existing cell in place.
func (r *Row) Set(label string, v gjson.Result) {
	val := json.RawMessage("null")
	if v.Exists() {
		val = json.RawMessage(v.Raw)
	}
	for i := range r.cells {
		if r.cells[i].Label == label {
			r.cells[i].Value = val
			return
		}
	}
	r.cells = append(r.cells, Cell{Label: label, Value: val})
}

// Get returns the value stored under label.
func (r Row) Get(label string) (json.RawMessage, bool) {
	for _, c := range r.cells {
		if c.Label == label {
			return c.Value, true
		}
	}
	return nil, false
}

// Labels returns the labels in order.
func (r Row) Labels() []string {
	out := make([]string, len(r.cells))
	for i, c := range r.cells {
		out[i] = c.Label
	}
	return out
}

func (r Row) Len() int { return len(r.cells) }

func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.cells {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(c.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func rowFromObject(v gjson.Result) Row {
	var r Row
	if !v.IsObject() {
		return r
	}
	v.ForEach(func(k, val gjson.Result) bool {
		r.Set(k.Str, val)
		return true
	})
	return r
}

// Number is a float that marshals NaN and infinities as null.
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// Valid reports whether n is a finite number.
func (n Number) Valid() bool {
	f := float64(n)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func numPtr(f float64) *Number {
	n := Number(f)
	return &n
}
