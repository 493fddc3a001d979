package loader

import (
	"os"
	"strconv"
	"strings"

	"github.com/dshills/proofline/internal/config/layer"
)

// DefaultPrefix is the prefix scanned for configuration variables.
const DefaultPrefix = "PROOFLINE_"

// EnvLoader loads configuration from environment variables.
//
// Variables named in the mapping go to their mapped path. Any other
// variable carrying the prefix is converted by envToPath, so
// PROOFLINE_AUTOCOMPLETE_MIN_CONTEXT_LENGTH sets autocomplete.minContextLength.
type EnvLoader struct {
	prefix  string
	mapping map[string]string
	environ func() []string
}

// NewEnvLoader creates a loader with the vendor key mapping.
// The prefix should include the trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(),
		environ: os.Environ,
	}
}

// WithEnviron replaces the environment source, for tests.
func (l *EnvLoader) WithEnviron(fn func() []string) *EnvLoader {
	if fn != nil {
		l.environ = fn
	}
	return l
}

func defaultEnvMapping() map[string]string {
	return map[string]string{
		"OPENAI_API_KEY":    "keys.openai",
		"ANTHROPIC_API_KEY": "keys.anthropic",
		"GEMINI_API_KEY":    "keys.gemini",
		"GOOGLE_API_KEY":    "keys.gemini",
	}
}

// AddMapping maps envVar to configPath.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

// Load reads the environment and returns a configuration map.
// Empty values are ignored.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	vars := l.vars()

	// GEMINI_API_KEY wins over GOOGLE_API_KEY.
	for _, env := range []string{"GOOGLE_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"} {
		if path, ok := l.mapping[env]; ok && vars[env] != "" {
			layer.SetByPath(config, path, vars[env])
		}
	}
	for env, path := range l.mapping {
		if _, builtin := defaultEnvMapping()[env]; builtin {
			continue
		}
		if val := vars[env]; val != "" {
			layer.SetByPath(config, path, parseValue(val))
		}
	}

	for name, value := range vars {
		if !strings.HasPrefix(name, l.prefix) || value == "" {
			continue
		}
		if _, ok := l.mapping[name]; ok {
			continue
		}
		path := l.envToPath(name)
		if path == "" {
			continue
		}
		layer.SetByPath(config, path, parseValue(value))
	}

	return config, nil
}

func (l *EnvLoader) vars() map[string]string {
	out := make(map[string]string)
	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if ok {
			out[name] = value
		}
	}
	return out
}

// envToPath converts PROOFLINE_RATE_LIMIT_BACKOFF to rateLimit.backoff.
// The final underscore-separated word is the setting; everything before
// it is the section. Known two-word sections and settings are recognized
// so PROOFLINE_PROVIDER_API_KEY becomes provider.apiKey.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.ToLower(strings.TrimPrefix(env, l.prefix))
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '_' })
	if len(parts) < 2 {
		return ""
	}

	section := parts[0]
	rest := parts[1:]
	if section == "rate" && len(rest) > 1 && rest[0] == "limit" {
		section = "rateLimit"
		rest = rest[1:]
	}
	return section + "." + camel(rest)
}

func camel(parts []string) string {
	var b strings.Builder
	for i, p := range parts {
		if i == 0 {
			b.WriteString(p)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// parseValue attempts to parse the string value into an appropriate type.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
