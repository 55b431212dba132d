package logging

import (
	"sync"
	"time"
)

// SystemClock reads the wall clock. It is the default Clock wherever a
// caller passes nil.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Metrics is a process-local counter and gauge registry. Components
// record under flat string keys; the diagnostics endpoint snapshots the
// whole map.
type Metrics struct {
	mu     sync.RWMutex
	values map[string]uint64
}

// NewMetrics returns an empty registry.
func NewMetrics() *Metrics {
	return &Metrics{values: make(map[string]uint64)}
}

// TelemetryAdd increments the counter under key by delta.
func (m *Metrics) TelemetryAdd(key string, delta uint64) {
	if m == nil || key == "" {
		return
	}
	m.mu.Lock()
	if m.values == nil {
		m.values = make(map[string]uint64)
	}
	m.values[key] += delta
	m.mu.Unlock()
}

// TelemetryStore overwrites the gauge under key with value.
func (m *Metrics) TelemetryStore(key string, value uint64) {
	if m == nil || key == "" {
		return
	}
	m.mu.Lock()
	if m.values == nil {
		m.values = make(map[string]uint64)
	}
	m.values[key] = value
	m.mu.Unlock()
}

// TelemetrySnapshot copies the current values.
func (m *Metrics) TelemetrySnapshot() map[string]uint64 {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.values) == 0 {
		return map[string]uint64{}
	}
	snapshot := make(map[string]uint64, len(m.values))
	for k, v := range m.values {
		snapshot[k] = v
	}
	return snapshot
}
