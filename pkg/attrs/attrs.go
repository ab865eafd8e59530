// Package attrs reads values out of slog-style key-value attribute slices.
package attrs

// ExtractString returns the string value paired with key in a
// [key1, value1, key2, value2, ...] slice. Missing keys and values of any
// other type yield the empty string. The first match wins.
func ExtractString(attrs []any, key string) string {
	for i := 0; i+1 < len(attrs); i += 2 {
		k, ok := attrs[i].(string)
		if !ok || k != key {
			continue
		}
		v, _ := attrs[i+1].(string)
		return v
	}
	return ""
}
