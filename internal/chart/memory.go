package chart

import (
	"slices"
	"sync"

	"github.com/rickgao/levelfeed/internal/model"
)

// Observer is notified of surface changes. Calls are made with the surface
// lock held and must not block.
type Observer interface {
	LineDrawn(spec model.LineSpec)
	LineDeleted(id int)
}

// Memory is a goroutine-safe drawing surface backed by a map.
type Memory struct {
	mu        sync.RWMutex
	lines     map[int]model.LineSpec
	observers []Observer
}

// NewMemory creates an empty surface.
func NewMemory() *Memory {
	return &Memory{lines: make(map[int]model.LineSpec)}
}

// Observe registers o for future changes.
func (m *Memory) Observe(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

// LineExists reports whether id is drawn.
func (m *Memory) LineExists(id int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.lines[id]
	return ok
}

// DeleteLine removes id. Missing IDs are ignored.
func (m *Memory) DeleteLine(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.lines[id]; !ok {
		return
	}
	delete(m.lines, id)
	for _, o := range m.observers {
		o.LineDeleted(id)
	}
}

// DrawLine adds spec, replacing any line with the same ID.
func (m *Memory) DrawLine(spec model.LineSpec) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lines[spec.ID] = spec
	for _, o := range m.observers {
		o.LineDrawn(spec)
	}
}

// Lines returns the drawn lines ordered by ID.
func (m *Memory) Lines() []model.LineSpec {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.LineSpec, 0, len(m.lines))
	for _, l := range m.lines {
		out = append(out, l)
	}
	slices.SortFunc(out, func(a, b model.LineSpec) int {
		return a.ID - b.ID
	})
	return out
}

// Len returns the number of drawn lines.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.lines)
}
