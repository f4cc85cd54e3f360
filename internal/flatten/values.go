package flatten

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"copilotusage/internal/report"
)

// scalarString renders a decoded JSON scalar as text. Null becomes the
// empty string; downstream CSV consumers cannot distinguish absent from
// empty and that is accepted.
func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return formatNumber(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// formatNumber renders integral values without a decimal point so that
// counts decoded as float64 round-trip as "42", not "42.000000".
func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// compactJSON renders v as single-line JSON. encoding/json sorts object
// keys, which keeps the rendering stable across runs.
func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// nestedMap returns the nested object stored under key, if present.
func nestedMap(rec report.RawRecord, key string) (map[string]any, bool) {
	m, ok := rec[key].(map[string]any)
	return m, ok
}

// nestedSlice returns the array stored under key, if present.
func nestedSlice(rec report.RawRecord, key string) ([]any, bool) {
	s, ok := rec[key].([]any)
	return s, ok
}
