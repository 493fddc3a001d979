package layer

import (
	"sort"
	"sync"
)

// Manager holds one layer per source and serves the merged view.
type Manager struct {
	mu     sync.RWMutex
	layers []*Layer // ascending priority
	merged map[string]any
	dirty  bool
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{dirty: true}
}

// Put installs l, replacing any layer with the same source.
func (m *Manager) Put(l *Layer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putLocked(l)
}

func (m *Manager) putLocked(l *Layer) {
	m.dirty = true
	for i, cur := range m.layers {
		if cur.Source == l.Source {
			m.layers[i] = l
			return
		}
	}
	m.layers = append(m.layers, l)
	sort.SliceStable(m.layers, func(i, j int) bool {
		return m.layers[i].Source.Priority() < m.layers[j].Source.Priority()
	})
}

// Layer returns the layer for source, or nil.
func (m *Manager) Layer(source Source) *Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findLocked(source)
}

func (m *Manager) findLocked(source Source) *Layer {
	for _, l := range m.layers {
		if l.Source == source {
			return l
		}
	}
	return nil
}

// Set stores value at path in the layer for source, creating the layer if
// needed.
func (m *Manager) Set(source Source, path string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	target := m.findLocked(source)
	if target == nil {
		target = New(source)
		m.putLocked(target)
	}
	SetByPath(target.Data, path, value)
	m.dirty = true
}

// Merge returns a copy of all layers merged in priority order.
func (m *Manager) Merge() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dirty || m.merged == nil {
		merged := make(map[string]any)
		for _, l := range m.layers {
			merged = DeepMerge(merged, l.Data)
		}
		m.merged = merged
		m.dirty = false
	}
	return cloneMap(m.merged)
}

// Which returns the highest-priority source that sets path.
func (m *Manager) Which(path string) (Source, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.layers) - 1; i >= 0; i-- {
		if _, ok := GetByPath(m.layers[i].Data, path); ok {
			return m.layers[i].Source, true
		}
	}
	return 0, false
}
