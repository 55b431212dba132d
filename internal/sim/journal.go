package sim

import (
	"sync"
	"time"
)

// EventKind labels one journal entry.
type EventKind string

const (
	EventPelletEaten      EventKind = "pellet_eaten"
	EventPowerPelletEaten EventKind = "power_pellet_eaten"
	EventAgentCaught      EventKind = "agent_caught"
	EventAgentReachedHome EventKind = "agent_reached_home"
	EventModeChanged      EventKind = "mode_changed"
	EventWaveChanged      EventKind = "wave_changed"
	EventTeleported       EventKind = "teleported"
	EventAgentsReset      EventKind = "agents_reset"
	EventLevelReset       EventKind = "level_reset"
)

// JournalEntry records one domain event for diagnostics.
type JournalEntry struct {
	Tick       uint64    `json:"tick"`
	Kind       EventKind `json:"kind"`
	Actor      string    `json:"actor,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
}

const (
	defaultJournalCapacity = 256
	defaultJournalMaxAge   = time.Minute
)

// Journal keeps a rolling buffer of recent domain events so diagnostics
// can show what the simulation did without replaying it. Retention is
// enforced by count and by age on every record.
type Journal struct {
	mu         sync.RWMutex
	entries    []JournalEntry
	maxEntries int
	maxAge     time.Duration
}

// NewJournal constructs a journal with the provided retention bounds.
// Non-positive values fall back to the defaults.
func NewJournal(capacity int, maxAge time.Duration) *Journal {
	if capacity <= 0 {
		capacity = defaultJournalCapacity
	}
	if maxAge <= 0 {
		maxAge = defaultJournalMaxAge
	}
	return &Journal{
		entries:    make([]JournalEntry, 0, capacity),
		maxEntries: capacity,
		maxAge:     maxAge,
	}
}

// Record appends an entry, evicting expired and overflowing entries.
func (j *Journal) Record(entry JournalEntry) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now()
	}
	j.entries = append(j.entries, entry)

	cutoff := entry.RecordedAt.Add(-j.maxAge)
	idx := 0
	for idx < len(j.entries) {
		if !j.entries[idx].RecordedAt.Before(cutoff) {
			break
		}
		idx++
	}
	if idx > 0 {
		copy(j.entries, j.entries[idx:])
		j.entries = j.entries[:len(j.entries)-idx]
	}

	if overflow := len(j.entries) - j.maxEntries; overflow > 0 {
		copy(j.entries, j.entries[overflow:])
		j.entries = j.entries[:len(j.entries)-overflow]
	}
}

// Recent returns the retained entries in chronological order. Callers
// receive a copy and may hold it indefinitely.
func (j *Journal) Recent() []JournalEntry {
	if j == nil {
		return nil
	}
	j.mu.RLock()
	defer j.mu.RUnlock()
	if len(j.entries) == 0 {
		return nil
	}
	entries := make([]JournalEntry, len(j.entries))
	copy(entries, j.entries)
	return entries
}

// Len reports the number of retained entries.
func (j *Journal) Len() int {
	if j == nil {
		return 0
	}
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}
