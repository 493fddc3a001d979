// Package layer stacks configuration sources by priority.
//
// Each source (built-in defaults, the user file, the project file, the
// environment, command-line flags) becomes one Layer. Merging applies the
// layers lowest priority first, so a later layer overrides an earlier one
// key by key while nested tables merge.
package layer

// Source indicates where a layer came from.
type Source uint8

const (
	// SourceBuiltin is the compiled-in defaults.
	SourceBuiltin Source = iota
	// SourceUser is the per-user file (~/.config/proofline/).
	SourceUser
	// SourceProject is the file in the working directory.
	SourceProject
	// SourceEnv is environment variables.
	SourceEnv
	// SourceFlags is command-line flags.
	SourceFlags
)

// String returns the layer name used in logs.
func (s Source) String() string {
	switch s {
	case SourceBuiltin:
		return "defaults"
	case SourceUser:
		return "user"
	case SourceProject:
		return "project"
	case SourceEnv:
		return "environment"
	case SourceFlags:
		return "flags"
	default:
		return "unknown"
	}
}

// Priority returns the merge priority of s. Higher wins.
func (s Source) Priority() int {
	return int(s) * 100
}

// Layer is one configuration source.
type Layer struct {
	Source Source
	// Path is the file the layer was read from, if any.
	Path string
	Data map[string]any
}

// New creates an empty layer.
func New(source Source) *Layer {
	return &Layer{Source: source, Data: make(map[string]any)}
}

// Clone returns a deep copy of l.
func (l *Layer) Clone() *Layer {
	return &Layer{Source: l.Source, Path: l.Path, Data: cloneMap(l.Data)}
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = cloneValue(v)
	}
	return dst
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
