package api

import (
	"encoding/json"
	"strings"
)

// decodeCamel decodes a JSON body into out after converting snake_case object
// keys to camelCase, so backend payloads map onto the camelCase tags.
func decodeCamel(data []byte, out any) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	converted, err := json.Marshal(camelKeys(raw))
	if err != nil {
		return err
	}
	return json.Unmarshal(converted, out)
}

func camelKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for key, inner := range val {
			out[camelCase(key)] = camelKeys(inner)
		}
		return out
	case []any:
		for i, inner := range val {
			val[i] = camelKeys(inner)
		}
		return val
	default:
		return v
	}
}

func camelCase(key string) string {
	if !strings.Contains(key, "_") {
		return key
	}
	parts := strings.Split(key, "_")
	var b strings.Builder
	b.Grow(len(key))
	first := true
	for _, part := range parts {
		if part == "" {
			continue
		}
		if first {
			b.WriteString(part)
			first = false
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// stringOrField accepts either a bare JSON string or an object holding the
// value under field.
func stringOrField(data []byte, field string) (string, error) {
	var raw any
	if err := decodeCamel(data, &raw); err != nil {
		return "", err
	}
	switch val := raw.(type) {
	case string:
		return val, nil
	case map[string]any:
		if s, ok := val[field].(string); ok {
			return s, nil
		}
	}
	return "", nil
}
