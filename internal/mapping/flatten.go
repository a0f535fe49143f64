package mapping

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Leaf types reported by Flatten.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
)

// FlattenedField is one leaf of a payload, addressed by its dotted path.
type FlattenedField struct {
	Path  string `json:"path"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Flatten walks a raw JSON document. Only objects are descended into; arrays
// are leaves. A top-level array or scalar, or invalid JSON, yields nothing.
func Flatten(raw []byte) []FlattenedField {
	if !gjson.ValidBytes(raw) {
		return []FlattenedField{}
	}
	return FlattenValue(gjson.ParseBytes(raw), "")
}

// FlattenValue flattens v with every path prefixed by prefix.
func FlattenValue(v gjson.Result, prefix string) []FlattenedField {
	out := []FlattenedField{}
	if !v.IsObject() {
		return out
	}
	return flattenInto(out, v, prefix)
}

func flattenInto(out []FlattenedField, obj gjson.Result, prefix string) []FlattenedField {
	for _, k := range keys(obj) {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		v := member(obj, k)
		if v.IsObject() {
			out = flattenInto(out, v, path)
			continue
		}
		out = append(out, FlattenedField{Path: path, Type: leafType(v), Value: Stringify(v)})
	}
	return out
}

func leafType(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return TypeString
	case gjson.Number:
		return TypeNumber
	case gjson.True, gjson.False:
		return TypeBoolean
	case gjson.Null:
		return TypeObject
	}
	return TypeArray
}

// FilterFields keeps the fields whose path contains search (case-insensitive).
// With arraysOnly set only array leaves survive, which is what the array
// path picker offers.
func FilterFields(fields []FlattenedField, search string, arraysOnly bool) []FlattenedField {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]FlattenedField, 0, len(fields))
	for _, f := range fields {
		if arraysOnly && f.Type != TypeArray {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(f.Path), needle) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// LastSegment returns the final component of a dotted path. It is the default
// label for a newly selected field.
func LastSegment(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}
