package logging

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync/atomic"
	"time"
)

// Clock abstracts time for the router and anything else that stamps
// events.
type Clock interface {
	Now() time.Time
}

// Sink is one delivery target. Write always runs on the router's
// dispatch goroutine, so implementations only need to guard against
// Close racing a final Write.
type Sink interface {
	Write(Event) error
	Close(context.Context) error
}

// NamedSink pairs a sink with the name used in failure warnings.
type NamedSink struct {
	Name string
	Sink Sink
}

// Router is the process-wide event pipeline. Producers publish from any
// goroutine; a single dispatcher stamps each event and hands it to every
// sink in turn. A sink that keeps failing is put on a cooldown and
// skipped until the deadline passes, so one bad target cannot stall the
// rest.
type Router struct {
	clock    Clock
	intake   chan Event
	targets  []*target
	baseline map[string]any
	minSev   Severity
	warnGap  time.Duration
	warnLog  *log.Logger

	closing  atomic.Bool
	quit     chan struct{}
	done     chan struct{}
	dropped  atomic.Uint64
	lastWarn atomic.Int64
}

// target holds per-sink delivery state. Only the dispatcher touches it,
// so none of it is synchronized.
type target struct {
	name     string
	sink     Sink
	failures int
	retryAt  time.Time
	skipped  uint64
}

// NewRouter starts the dispatch goroutine. Entries with a nil Sink are
// ignored; duplicate names are an error because failure warnings would
// be ambiguous.
func NewRouter(clock Clock, cfg Config, sinks []NamedSink) (*Router, error) {
	cfg = cfg.normalized()
	if clock == nil {
		clock = SystemClock{}
	}
	r := &Router{
		clock:    clock,
		intake:   make(chan Event, cfg.BufferSize),
		baseline: cfg.CloneFields(),
		minSev:   cfg.MinimumSeverity,
		warnGap:  cfg.DropWarnInterval,
		warnLog:  log.New(os.Stderr, "[logging] ", log.LstdFlags),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	seen := make(map[string]struct{}, len(sinks))
	for _, named := range sinks {
		if named.Sink == nil {
			continue
		}
		if _, dup := seen[named.Name]; dup {
			return nil, fmt.Errorf("logging: duplicate sink %q", named.Name)
		}
		seen[named.Name] = struct{}{}
		r.targets = append(r.targets, &target{name: named.Name, sink: named.Sink})
	}
	go r.dispatch()
	return r, nil
}

// Publish queues the event. It never blocks: when the intake channel is
// full the event is counted and dropped, with a rate-limited warning on
// stderr.
func (r *Router) Publish(_ context.Context, event Event) {
	if event.Type == "" || event.Severity < r.minSev {
		return
	}
	if r.closing.Load() {
		return
	}
	select {
	case r.intake <- event.clone():
	default:
		r.noteDrop(event)
	}
}

// Close stops intake, flushes whatever is already queued and closes
// every sink. The context bounds the wait. Later calls wait for the
// first to finish.
func (r *Router) Close(ctx context.Context) error {
	if !r.closing.CompareAndSwap(false, true) {
		select {
		case <-r.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	close(r.quit)
	select {
	case <-r.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	var firstErr error
	for _, t := range r.targets {
		if err := t.sink.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Router) dispatch() {
	defer close(r.done)
	for {
		select {
		case event := <-r.intake:
			r.deliver(event)
		case <-r.quit:
			for {
				select {
				case event := <-r.intake:
					r.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (r *Router) deliver(event Event) {
	if event.Time.IsZero() {
		event.Time = r.clock.Now()
	}
	if len(r.baseline) > 0 {
		if event.Extra == nil {
			event.Extra = make(map[string]any, len(r.baseline))
		}
		for k, v := range r.baseline {
			if _, set := event.Extra[k]; !set {
				event.Extra[k] = v
			}
		}
	}
	now := r.clock.Now()
	for _, t := range r.targets {
		if !t.retryAt.IsZero() && now.Before(t.retryAt) {
			t.skipped++
			continue
		}
		if err := t.sink.Write(event); err != nil {
			t.failures++
			wait := backoff(t.failures)
			t.retryAt = now.Add(wait)
			r.warnLog.Printf("sink %s: %v (pausing %s, %d events skipped so far)", t.name, err, wait, t.skipped)
			continue
		}
		t.failures = 0
		t.retryAt = time.Time{}
	}
}

func (r *Router) noteDrop(event Event) {
	total := r.dropped.Add(1)
	now := time.Now().UnixNano()
	last := r.lastWarn.Load()
	if now-last < r.warnGap.Nanoseconds() {
		return
	}
	if r.lastWarn.CompareAndSwap(last, now) {
		r.warnLog.Printf("intake full, dropping %s (%d dropped in total)", event.Type, total)
	}
}

// backoff doubles from two seconds and saturates at a minute.
func backoff(failures int) time.Duration {
	d := (2 * time.Second) << min(failures-1, 5)
	if d > time.Minute {
		d = time.Minute
	}
	return d
}
