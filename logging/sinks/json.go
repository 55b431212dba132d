package sinks

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"gridchase/logging"
)

// JSONLines appends one JSON object per event. Writes land in a memory
// buffer and reach the underlying writer once cfg.MaxBatch events are
// pending or cfg.FlushInterval elapses, whichever comes first.
type JSONLines struct {
	mu       sync.Mutex
	buf      *bufio.Writer
	enc      *json.Encoder
	pending  int
	maxBatch int

	stopOnce sync.Once
	stop     chan struct{}
}

// NewJSON wraps w. Without a positive flush interval every write
// flushes immediately.
func NewJSON(w io.Writer, cfg logging.JSONConfig) *JSONLines {
	if w == nil {
		w = io.Discard
	}
	buf := bufio.NewWriter(w)
	s := &JSONLines{
		buf:      buf,
		enc:      json.NewEncoder(buf),
		maxBatch: cfg.MaxBatch,
		stop:     make(chan struct{}),
	}
	if cfg.FlushInterval > 0 {
		go s.flushLoop(cfg.FlushInterval)
	} else {
		s.maxBatch = 1
	}
	return s
}

// Write implements logging.Sink.
func (s *JSONLines) Write(event logging.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(event); err != nil {
		return err
	}
	s.pending++
	if s.maxBatch > 0 && s.pending >= s.maxBatch {
		return s.flushLocked()
	}
	return nil
}

// Close stops the background flusher and drains the buffer.
func (s *JSONLines) Close(context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *JSONLines) flushLocked() error {
	s.pending = 0
	return s.buf.Flush()
}

func (s *JSONLines) flushLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			s.flushLocked()
			s.mu.Unlock()
		case <-s.stop:
			return
		}
	}
}
