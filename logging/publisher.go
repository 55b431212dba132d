package logging

import (
	"context"
	"encoding/json"
	"time"
)

// EventType names one kind of structured event, e.g. "pellet_eaten".
type EventType string

// Severity orders events by urgency. The router drops events below the
// configured minimum before they reach any sink.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

// String returns the lowercase label sinks print.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON emits the label instead of the raw integer so log files
// stay readable without the enum table.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// EntityKind classifies the entity an event is about.
type EntityKind string

const (
	EntityKindUnknown EntityKind = "unknown"
	EntityKindPlayer  EntityKind = "player"
	EntityKindNPC     EntityKind = "npc"
	EntityKindWorld   EntityKind = "world"
)

// EntityRef points at one simulation entity.
type EntityRef struct {
	ID   string     `json:"id"`
	Kind EntityKind `json:"kind"`
}

// Event categories, one per helper package.
const (
	CategoryGameplay   = "gameplay"
	CategoryLifecycle  = "lifecycle"
	CategorySimulation = "simulation"
	CategoryNetwork    = "network"
	CategorySystem     = "system"
)

// Event is one structured record of something the server did. Tick ties
// the record to the simulation step that produced it. Time may be left
// zero; the router stamps it on delivery.
type Event struct {
	Type      EventType      `json:"type"`
	Tick      uint64         `json:"tick"`
	Time      time.Time      `json:"time"`
	Actor     EntityRef      `json:"actor"`
	Targets   []EntityRef    `json:"targets,omitempty"`
	Severity  Severity       `json:"severity"`
	Category  string         `json:"category,omitempty"`
	Payload   any            `json:"payload,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
	TraceID   string         `json:"traceId,omitempty"`
	CommandID string         `json:"commandId,omitempty"`
}

// clone detaches the event's mutable members so the dispatch goroutine
// never shares state with the producer.
func (e Event) clone() Event {
	out := e
	if len(e.Targets) > 0 {
		out.Targets = append([]EntityRef(nil), e.Targets...)
	}
	if len(e.Extra) > 0 {
		out.Extra = make(map[string]any, len(e.Extra))
		for k, v := range e.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// Publisher accepts events for asynchronous delivery. Implementations
// must not block: producers publish from the game loop.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// NopPublisher returns a Publisher that discards everything. It is the
// fallback wherever a component is constructed without one.
func NopPublisher() Publisher {
	return nopPublisher{}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) {}
