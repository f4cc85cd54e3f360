package flatten

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copilotusage/internal/report"
)

func TestFlatten_Generic_ValueRendering(t *testing.T) {
	records := []report.RawRecord{
		{
			"name":    "tenant-a",
			"count":   float64(42),
			"ratio":   0.25,
			"active":  true,
			"nothing": nil,
			"tags":    []any{"red", "green", float64(3)},
			"owner":   map[string]any{"name": "ops", "id": float64(7)},
		},
	}

	rows, err := Flatten(records, report.ReportType("TenantAudit"))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "tenant-a", row.Get("name"))
	assert.Equal(t, "42", row.Get("count"))
	assert.Equal(t, "0.25", row.Get("ratio"))
	assert.Equal(t, "true", row.Get("active"))
	assert.Equal(t, "", row.Get("nothing"))
	assert.Equal(t, "red; green; 3", row.Get("tags"))
	// Map keys serialize sorted, so the rendering is stable
	assert.Equal(t, `{"id":7,"name":"ops"}`, row.Get("owner"))
}

func TestFlatten_Generic_NestedObjectWithArrayStaysOneColumn(t *testing.T) {
	records := []report.RawRecord{
		{
			"summary": map[string]any{
				"periods": []any{"D7", "D30"},
				"total":   float64(9),
			},
		},
	}

	rows, err := Flatten(records, report.ReportType("Unknown"))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// One compact text blob, not multiple columns
	assert.Equal(t, 1, rows[0].Len())
	assert.Equal(t, `{"periods":["D7","D30"],"total":9}`, rows[0].Get("summary"))
}

func TestFlatten_Generic_ArrayOfObjects(t *testing.T) {
	records := []report.RawRecord{
		{
			"entries": []any{
				map[string]any{"a": float64(1)},
				map[string]any{"b": float64(2)},
			},
		},
	}

	rows, err := Flatten(records, report.ReportType("Unknown"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}; {"b":2}`, rows[0].Get("entries"))
}

func TestFlatten_Generic_UnionHeaderReconciliation(t *testing.T) {
	records := []report.RawRecord{
		{"a": "1", "b": "2"},
		{"b": "3", "c": "4"},
		{"d": nil},
	}

	rows, err := Flatten(records, report.ReportType("Ragged"))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	union := report.UnionColumns(rows)
	assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, union)

	// Every row is serializable against the full union
	for _, row := range rows {
		for _, column := range union {
			assert.True(t, row.Has(column), "row missing column %s", column)
		}
	}
	assert.Equal(t, "", rows[0].Get("c"))
	assert.Equal(t, "", rows[2].Get("a"))
	assert.Equal(t, "4", rows[1].Get("c"))
}

func TestFlatten_Generic_NeverFails(t *testing.T) {
	records := []report.RawRecord{
		{
			"emptyArray":  []any{},
			"emptyObject": map[string]any{},
			"nested":      []any{[]any{"deep", map[string]any{"x": nil}}},
			"scalar":      "plain",
		},
	}

	rows, err := Flatten(records, report.ReportType("Chaos"))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "", row.Get("emptyArray"))
	assert.Equal(t, "{}", row.Get("emptyObject"))
	assert.Equal(t, `["deep",{"x":null}]`, row.Get("nested"))
	assert.Equal(t, "plain", row.Get("scalar"))
}

func TestScalarString_Numbers(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{float64(0), "0"},
		{float64(42), "42"},
		{float64(-3), "-3"},
		{0.5, "0.5"},
		{1e16, "10000000000000000"},
		{nil, ""},
		{true, "true"},
		{"x", "x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, scalarString(tt.in))
	}
}
