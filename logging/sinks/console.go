package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"gridchase/logging"
)

// Console prints one line per event for a human watching the server.
type Console struct {
	out      *log.Logger
	useColor bool
}

// NewConsoleSink writes timestamped lines to w.
func NewConsoleSink(w io.Writer, cfg logging.ConsoleConfig) *Console {
	return &Console{out: log.New(w, "", log.LstdFlags), useColor: cfg.UseColor}
}

// Write implements logging.Sink.
func (c *Console) Write(event logging.Event) error {
	if c == nil || c.out == nil {
		return nil
	}
	var b strings.Builder
	if event.Category != "" {
		b.WriteString("[" + event.Category + "] ")
	}
	b.WriteString(string(event.Type))
	fmt.Fprintf(&b, " tick=%d", event.Tick)
	if actor := refLabel(event.Actor); actor != "" {
		b.WriteString(" actor=" + actor)
	}
	for _, target := range event.Targets {
		b.WriteString(" target=" + refLabel(target))
	}
	b.WriteString(" sev=" + c.paint(event.Severity))
	if event.Payload != nil {
		if data, err := json.Marshal(event.Payload); err == nil {
			b.WriteString(" payload=" + string(data))
		} else {
			fmt.Fprintf(&b, " payload=%v", event.Payload)
		}
	}
	c.out.Print(b.String())
	return nil
}

// Close implements logging.Sink. Console output needs no flushing.
func (c *Console) Close(context.Context) error {
	return nil
}

// paint wraps warn and error labels in ANSI color when enabled.
func (c *Console) paint(sev logging.Severity) string {
	label := sev.String()
	if !c.useColor {
		return label
	}
	switch sev {
	case logging.SeverityWarn:
		return "\x1b[33m" + label + "\x1b[0m"
	case logging.SeverityError:
		return "\x1b[31m" + label + "\x1b[0m"
	default:
		return label
	}
}

func refLabel(ref logging.EntityRef) string {
	switch {
	case ref.ID == "" && ref.Kind == "":
		return ""
	case ref.ID == "":
		return string(ref.Kind)
	case ref.Kind == "":
		return ref.ID
	default:
		return string(ref.Kind) + ":" + ref.ID
	}
}
