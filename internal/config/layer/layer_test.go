package layer

import (
	"reflect"
	"testing"
)

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"provider": map[string]any{"name": "openai", "model": "gpt-4o-mini"},
		"grammar":  map[string]any{"enabled": true},
	}
	src := map[string]any{
		"provider": map[string]any{"model": "gpt-4o"},
		"grammar":  false,
	}

	got := DeepMerge(dst, src)

	if v, _ := GetByPath(got, "provider.name"); v != "openai" {
		t.Errorf("provider.name = %v, want openai", v)
	}
	if v, _ := GetByPath(got, "provider.model"); v != "gpt-4o" {
		t.Errorf("provider.model = %v, want gpt-4o", v)
	}
	if v, _ := GetByPath(got, "grammar"); v != false {
		t.Errorf("grammar = %v, want false (scalar replaces table)", v)
	}
}

func TestDeepMerge_DoesNotAlias(t *testing.T) {
	src := map[string]any{"a": map[string]any{"b": 1}}
	got := DeepMerge(nil, src)
	SetByPath(got, "a.b", 2)
	if v, _ := GetByPath(src, "a.b"); v != 1 {
		t.Errorf("source modified through merge result: a.b = %v", v)
	}
}

func TestGetSetByPath(t *testing.T) {
	data := map[string]any{"a": "scalar"}
	SetByPath(data, "a.b.c", 3)
	SetByPath(data, "x", "y")

	tests := []struct {
		path string
		want any
		ok   bool
	}{
		{"a.b.c", 3, true},
		{"x", "y", true},
		{"a.b.missing", nil, false},
		{"x.deeper", nil, false},
		{"", nil, false},
	}
	for _, tt := range tests {
		got, ok := GetByPath(data, tt.path)
		if ok != tt.ok || !reflect.DeepEqual(got, tt.want) {
			t.Errorf("GetByPath(%q) = %v, %v; want %v, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDiff(t *testing.T) {
	old := map[string]any{
		"provider": map[string]any{"name": "openai", "model": "a"},
		"logging":  map[string]any{"level": "info"},
	}
	new := map[string]any{
		"provider": map[string]any{"name": "openai", "model": "b"},
		"grammar":  map[string]any{"delay": "1s"},
	}

	got := Diff(old, new)
	want := []string{"grammar.delay", "logging.level", "provider.model"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Diff = %v, want %v", got, want)
	}
	if d := Diff(old, old); len(d) != 0 {
		t.Errorf("Diff of identical maps = %v", d)
	}
}

func TestManager_Precedence(t *testing.T) {
	m := NewManager()

	env := New(SourceEnv)
	SetByPath(env.Data, "provider.name", "anthropic")
	m.Put(env)

	defaults := New(SourceBuiltin)
	SetByPath(defaults.Data, "provider.name", "openai")
	SetByPath(defaults.Data, "provider.model", "gpt-4o-mini")
	m.Put(defaults)

	m.Set(SourceFlags, "provider.model", "claude")

	merged := m.Merge()
	if v, _ := GetByPath(merged, "provider.name"); v != "anthropic" {
		t.Errorf("provider.name = %v, want anthropic", v)
	}
	if v, _ := GetByPath(merged, "provider.model"); v != "claude" {
		t.Errorf("provider.model = %v, want claude", v)
	}
	if src, _ := m.Which("provider.name"); src != SourceEnv {
		t.Errorf("Which(provider.name) = %v, want environment", src)
	}

	// Replacing a layer invalidates the cached merge.
	m.Put(New(SourceEnv))
	if v, _ := GetByPath(m.Merge(), "provider.name"); v != "openai" {
		t.Errorf("after replacing env layer provider.name = %v, want openai", v)
	}
}
