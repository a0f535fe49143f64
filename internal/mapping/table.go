package mapping

import (
	"github.com/tidwall/gjson"
)

// DataSourceCustom selects the user-field projection for tables.
const DataSourceCustom = "custom"

type projection struct {
	label string
	path  string
}

var symbolSearchColumns = []projection{
	{"symbol", "1. symbol"},
	{"name", "2. name"},
	{"type", "3. type"},
	{"region", "4. region"},
}

var lookupColumns = []projection{
	{"symbol", "symbol"},
	{"description", "description"},
	{"type", "type"},
}

// DetectTableRows turns a payload into table rows. Known provider shapes are
// checked first; the first match wins:
//
//  1. bestMatches array (symbol search)
//  2. result array (symbol lookup)
//  3. custom data source with selected fields
//  4. the payload itself when it is an array
//
// Anything else gives no rows.
func DetectTableRows(raw []byte, cfg TableConfig) []Row {
	return detectTableRows(gjson.ParseBytes(raw), cfg)
}

func detectTableRows(data gjson.Result, cfg TableConfig) []Row {
	rows := []Row{}
	if !truthy(data) {
		return rows
	}

	if m := member(data, "bestMatches"); data.IsObject() && m.IsArray() {
		return projectColumns(m, symbolSearchColumns)
	}
	if m := member(data, "result"); data.IsObject() && m.IsArray() {
		return projectColumns(m, lookupColumns)
	}

	if cfg.DataSource == DataSourceCustom && len(cfg.Fields) > 0 {
		source := customSource(data, cfg.ArrayDataPath)
		if !source.IsArray() {
			return rows
		}
		for _, item := range source.Array() {
			var row Row
			if objectLike(item) {
				for _, f := range cfg.Fields {
					row.Set(f.Label, Get(item, f.Path))
				}
			}
			rows = append(rows, row)
		}
		return rows
	}

	if data.IsArray() {
		for _, item := range data.Array() {
			rows = append(rows, rowFromObject(item))
		}
	}
	return rows
}

func customSource(data gjson.Result, arrayPath string) gjson.Result {
	if arrayPath != "" {
		return Get(data, arrayPath)
	}
	if arr, ok := firstArrayValue(data); ok {
		return arr
	}
	if data.IsArray() {
		return data
	}
	return gjson.Result{}
}

func projectColumns(arr gjson.Result, cols []projection) []Row {
	rows := []Row{}
	for _, item := range arr.Array() {
		var row Row
		for _, c := range cols {
			if item.IsObject() {
				row.Set(c.label, member(item, c.path))
			} else {
				row.Set(c.label, gjson.Result{})
			}
		}
		rows = append(rows, row)
	}
	return rows
}
