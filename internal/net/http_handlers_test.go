package net

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"gridchase/internal/net/proto"
	"gridchase/internal/observability"
)

func TestHTTPHealth(t *testing.T) {
	handler := NewHTTPHandler(newTestHub(t), HTTPHandlerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if body := resp.Body.String(); body != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
}

func TestHTTPJoinAssignsSeat(t *testing.T) {
	handler := NewHTTPHandler(newTestHub(t), HTTPHandlerConfig{})

	join := func() map[string]any {
		req := httptest.NewRequest(http.MethodPost, "/join", nil)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)

		if resp.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.Code)
		}
		if contentType := resp.Header().Get("Content-Type"); contentType != "application/json" {
			t.Fatalf("expected Content-Type application/json, got %q", contentType)
		}
		var payload map[string]any
		if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
			t.Fatalf("failed to decode join payload: %v", err)
		}
		return payload
	}

	first := join()
	if ver, ok := first["ver"].(float64); !ok || int(ver) != proto.Version {
		t.Fatalf("expected protocol version %d, got %v", proto.Version, first["ver"])
	}
	if id, ok := first["id"].(string); !ok || id == "" {
		t.Fatalf("expected join to return an id, got %v", first["id"])
	}
	if seat, ok := first["seat"].(bool); !ok || !seat {
		t.Fatalf("expected first joiner to take the seat, got %v", first["seat"])
	}

	levelValue, ok := first["level"].(map[string]any)
	if !ok {
		t.Fatalf("expected level geometry in join payload, got %T", first["level"])
	}
	if cols, ok := levelValue["cols"].(float64); !ok || int(cols) != 5 {
		t.Fatalf("expected 5 columns, got %v", levelValue["cols"])
	}

	stateValue, ok := first["state"].(map[string]any)
	if !ok {
		t.Fatalf("expected state frame in join payload, got %T", first["state"])
	}
	if stateValue["type"] != proto.TypeState {
		t.Fatalf("expected embedded state frame, got %v", stateValue["type"])
	}
	if lives, ok := stateValue["lives"].(float64); !ok || int(lives) != 3 {
		t.Fatalf("expected 3 lives in state frame, got %v", stateValue["lives"])
	}

	second := join()
	if seat, ok := second["seat"].(bool); !ok || seat {
		t.Fatalf("expected second joiner to spectate, got %v", second["seat"])
	}
}

func TestHTTPJoinRejectsGet(t *testing.T) {
	handler := NewHTTPHandler(newTestHub(t), HTTPHandlerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/join", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", resp.Code)
	}
}

func TestHTTPDiagnosticsReportsState(t *testing.T) {
	hub := newTestHub(t)
	hub.Join()
	handler := NewHTTPHandler(hub, HTTPHandlerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/diagnostics", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode diagnostics payload: %v", err)
	}

	if payload["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", payload["status"])
	}
	if lives, ok := payload["lives"].(float64); !ok || int(lives) != 3 {
		t.Fatalf("expected 3 lives, got %v", payload["lives"])
	}
	if seed, ok := payload["seed"].(string); !ok || seed != "hub-test" {
		t.Fatalf("expected seed hub-test, got %v", payload["seed"])
	}
	if rate, ok := payload["tickRate"].(float64); !ok || int(rate) != 15 {
		t.Fatalf("expected tick rate 15, got %v", payload["tickRate"])
	}

	clients, ok := payload["clients"].([]any)
	if !ok || len(clients) != 1 {
		t.Fatalf("expected one diagnostics client, got %v", payload["clients"])
	}
	if _, ok := payload["telemetry"].(map[string]any); !ok {
		t.Fatalf("expected telemetry counters, got %T", payload["telemetry"])
	}
}

func TestHTTPLevelResetSchedules(t *testing.T) {
	hub := newTestHub(t)
	handler := NewHTTPHandler(hub, HTTPHandlerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/level/reset", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode reset payload: %v", err)
	}
	if payload["status"] != "scheduled" {
		t.Fatalf("expected scheduled status, got %v", payload["status"])
	}
	if !hub.pendingReset.Load() {
		t.Fatalf("expected reset to be pending")
	}

	req = httptest.NewRequest(http.MethodGet, "/level/reset", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405 for GET, got %d", resp.Code)
	}
}

func TestHTTPServesClientFiles(t *testing.T) {
	dir := t.TempDir()
	page := []byte("<!DOCTYPE html><title>gridchase</title>")
	if err := os.WriteFile(filepath.Join(dir, "index.html"), page, 0o644); err != nil {
		t.Fatalf("failed to write fixture page: %v", err)
	}

	handler := NewHTTPHandler(newTestHub(t), HTTPHandlerConfig{ClientDir: dir})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if got := resp.Body.String(); got != string(page) {
		t.Fatalf("expected client page, got %q", got)
	}
}

func TestHTTPPprofRequiresOptIn(t *testing.T) {
	hub := newTestHub(t)

	handler := NewHTTPHandler(hub, HTTPHandlerConfig{})
	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 without opt-in, got %d", resp.Code)
	}

	handler = NewHTTPHandler(hub, HTTPHandlerConfig{
		Observability: observability.Config{EnablePprof: true},
	})
	req = httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected pprof index with opt-in, got %d", resp.Code)
	}
}
