package sinks

import (
	"bytes"
	"strings"
	"testing"

	"gridchase/logging"
)

func TestConsoleWriteFormatsEvent(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, logging.ConsoleConfig{})

	err := sink.Write(logging.Event{
		Type:     "pellet_eaten",
		Tick:     42,
		Category: logging.CategoryGameplay,
		Severity: logging.SeverityInfo,
		Actor:    logging.EntityRef{ID: "player", Kind: logging.EntityKindPlayer},
		Payload:  map[string]any{"power": true},
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	line := buf.String()
	for _, want := range []string{
		"[gameplay] pellet_eaten",
		"tick=42",
		"actor=player:player",
		"sev=info",
		`payload={"power":true}`,
	} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected output to contain %q, got %q", want, line)
		}
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("expected no color codes without UseColor, got %q", line)
	}
}

func TestConsoleColorsWarnings(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, logging.ConsoleConfig{UseColor: true})

	if err := sink.Write(logging.Event{Type: "tick_budget", Severity: logging.SeverityWarn}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[33mwarn\x1b[0m") {
		t.Fatalf("expected yellow warn label, got %q", buf.String())
	}
}
