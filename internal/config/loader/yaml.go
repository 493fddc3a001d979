package loader

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a YAML document into the same shape ParseTOML
// produces: nested map[string]any tables and int64 integers.
func ParseYAML(source string, data []byte) (map[string]any, error) {
	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, &ParseError{Path: source, Message: err.Error(), Err: err}
	}
	norm, ok := normalizeYAML(out).(map[string]any)
	if !ok || norm == nil {
		return make(map[string]any), nil
	}
	return norm, nil
}

func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	case int:
		return int64(t)
	default:
		return v
	}
}
