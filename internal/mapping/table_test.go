package mapping

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshalRows(t *testing.T, rows []Row) string {
	t.Helper()
	b, err := json.Marshal(rows)
	require.NoError(t, err)
	return string(b)
}

func TestDetectTableRows_CustomFieldLookup(t *testing.T) {
	raw := []byte(`{"items":[{"a":{"b":42}}]}`)
	cfg := TableConfig{
		DataSource:    DataSourceCustom,
		ArrayDataPath: "items",
		Fields:        []Field{{Path: "a.b", Label: "X"}},
	}

	rows := DetectTableRows(raw, cfg)
	assert.Equal(t, `[{"X":42}]`, marshalRows(t, rows))
}

func TestDetectTableRows_KnownShapeWinsOverCustom(t *testing.T) {
	raw := []byte(`{"bestMatches":[{"1. symbol":"TSCO.LON","2. name":"Tesco PLC","3. type":"Equity","4. region":"United Kingdom"}],"other":[{"x":1}]}`)
	cfg := TableConfig{
		DataSource: DataSourceCustom,
		Fields:     []Field{{Path: "x", Label: "Unrelated"}},
	}

	rows := DetectTableRows(raw, cfg)
	assert.Equal(t,
		`[{"symbol":"TSCO.LON","name":"Tesco PLC","type":"Equity","region":"United Kingdom"}]`,
		marshalRows(t, rows))
}

func TestDetectTableRows_LookupResult(t *testing.T) {
	raw := []byte(`{"count":1,"result":[{"description":"APPLE INC","displaySymbol":"AAPL","symbol":"AAPL","type":"Common Stock"}]}`)

	rows := DetectTableRows(raw, TableConfig{})
	assert.Equal(t, `[{"symbol":"AAPL","description":"APPLE INC","type":"Common Stock"}]`, marshalRows(t, rows))
}

func TestDetectTableRows_MissingArrayPathIsEmpty(t *testing.T) {
	raw := []byte(`{"items":[{"a":1}]}`)
	cfg := TableConfig{
		DataSource:    DataSourceCustom,
		ArrayDataPath: "nonexistent.path",
		Fields:        []Field{{Path: "a", Label: "A"}},
	}

	rows := DetectTableRows(raw, cfg)
	require.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestDetectTableRows_CustomFallsBackToFirstArray(t *testing.T) {
	raw := []byte(`{"meta":{"n":2},"first":[{"p":"a"},"scalar"],"second":[{"p":"b"}]}`)
	cfg := TableConfig{
		DataSource: DataSourceCustom,
		Fields:     []Field{{Path: "p", Label: "P"}, {Path: "q", Label: "Q"}},
	}

	rows := DetectTableRows(raw, cfg)
	assert.Equal(t, `[{"P":"a","Q":null},{}]`, marshalRows(t, rows))
}

func TestDetectTableRows_Passthrough(t *testing.T) {
	raw := []byte(`[{"b":1,"a":2},3]`)

	rows := DetectTableRows(raw, TableConfig{})
	assert.Equal(t, `[{"b":1,"a":2},{}]`, marshalRows(t, rows))
}

func TestDetectTableRows_NoShape(t *testing.T) {
	for _, raw := range []string{`{"a":1}`, `null`, `"x"`, `{"bestMatches":"nope"}`} {
		assert.Empty(t, DetectTableRows([]byte(raw), TableConfig{}), raw)
	}
}
