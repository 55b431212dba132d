package sim

import (
	"sync"

	"gridchase/internal/telemetry"
)

const (
	commandQueueDepthMetricKey    = "sim_command_queue_depth"
	commandQueueRejectedMetricKey = "sim_command_queue_rejected_total"
)

// CommandRing stages commands between transport goroutines and the tick
// that consumes them. Capacity is fixed: a full ring rejects instead of
// growing, so a flooding client cannot stretch tick latency.
type CommandRing struct {
	mu      sync.Mutex
	slots   []Command
	start   int
	size    int
	metrics telemetry.Metrics
}

// NewCommandRing sizes the ring, clamping the capacity to at least one
// slot.
func NewCommandRing(capacity int, metrics telemetry.Metrics) *CommandRing {
	if capacity < 1 {
		capacity = 1
	}
	return &CommandRing{slots: make([]Command, capacity), metrics: metrics}
}

// Capacity reports the slot count. The backing array never changes
// after construction.
func (r *CommandRing) Capacity() int {
	if r == nil {
		return 0
	}
	return len(r.slots)
}

// Push appends cmd in arrival order. It reports false when every slot
// is taken.
func (r *CommandRing) Push(cmd Command) bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.size == len(r.slots) {
		if r.metrics != nil {
			r.metrics.Add(commandQueueRejectedMetricKey, 1)
		}
		return false
	}
	r.slots[(r.start+r.size)%len(r.slots)] = cmd
	r.size++
	r.publishDepthLocked()
	return true
}

// Drain copies out the staged commands in FIFO order and empties the
// ring. The returned slice is freshly allocated, so callers may retain
// it.
func (r *CommandRing) Drain() []Command {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.size == 0 {
		return nil
	}
	out := make([]Command, 0, r.size)
	for i := 0; i < r.size; i++ {
		out = append(out, r.slots[(r.start+i)%len(r.slots)])
	}
	clear(r.slots)
	r.start = 0
	r.size = 0
	r.publishDepthLocked()
	return out
}

// Len reports the staged command count.
func (r *CommandRing) Len() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

func (r *CommandRing) publishDepthLocked() {
	if r.metrics == nil {
		return
	}
	r.metrics.Store(commandQueueDepthMetricKey, uint64(r.size))
}
