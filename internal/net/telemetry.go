package net

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"
)

type broadcastCounters struct {
	framesSent            atomic.Uint64
	bytesSent             atomic.Uint64
	entitiesSent          atomic.Uint64
	broadcastFailures     atomic.Uint64
	lastBroadcastBytes    atomic.Uint64
	lastBroadcastEntities atomic.Uint64
	tickDurationMillis    atomic.Int64
	debug                 bool
}

// TelemetrySnapshot reports cumulative broadcast counters for diagnostics.
type TelemetrySnapshot struct {
	FramesSent        uint64 `json:"framesSent"`
	BytesSent         uint64 `json:"bytesSent"`
	EntitiesSent      uint64 `json:"entitiesSent"`
	BroadcastFailures uint64 `json:"broadcastFailures"`
	TickDuration      int64  `json:"tickDurationMillis"`
}

func newBroadcastCounters() *broadcastCounters {
	c := &broadcastCounters{}
	if os.Getenv("DEBUG_TELEMETRY") == "1" {
		c.debug = true
	}
	return c
}

func (c *broadcastCounters) RecordBroadcast(bytes, entities int) {
	if bytes < 0 {
		bytes = 0
	}
	if entities < 0 {
		entities = 0
	}
	c.framesSent.Add(1)
	c.bytesSent.Add(uint64(bytes))
	c.entitiesSent.Add(uint64(entities))
	c.lastBroadcastBytes.Store(uint64(bytes))
	c.lastBroadcastEntities.Store(uint64(entities))
}

func (c *broadcastCounters) RecordFailure() {
	c.broadcastFailures.Add(1)
}

func (c *broadcastCounters) RecordTickDuration(duration time.Duration) {
	millis := duration.Milliseconds()
	if millis < 0 {
		millis = 0
	}
	c.tickDurationMillis.Store(millis)
	if c.debug {
		fmt.Printf(
			"[telemetry] tick=%dms bytes=%d totalBytes=%d entities=%d totalEntities=%d\n",
			millis,
			c.lastBroadcastBytes.Load(),
			c.bytesSent.Load(),
			c.lastBroadcastEntities.Load(),
			c.entitiesSent.Load(),
		)
	}
}

func (c *broadcastCounters) Snapshot() TelemetrySnapshot {
	return TelemetrySnapshot{
		FramesSent:        c.framesSent.Load(),
		BytesSent:         c.bytesSent.Load(),
		EntitiesSent:      c.entitiesSent.Load(),
		BroadcastFailures: c.broadcastFailures.Load(),
		TickDuration:      c.tickDurationMillis.Load(),
	}
}
