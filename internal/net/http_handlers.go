package net

import (
	"encoding/json"
	"log"
	nethttp "net/http"
	"net/http/pprof"
	"time"

	"gridchase/internal/net/proto"
	"gridchase/internal/net/ws"
	"gridchase/internal/observability"
	"gridchase/internal/sim"
)

type HTTPHandlerConfig struct {
	ClientDir     string
	Logger        *log.Logger
	Observability observability.Config
}

// NewHTTPHandler mounts the hub's HTTP surface: join, websocket,
// diagnostics, game reset and the static client bundle.
func NewHTTPHandler(hub *Hub, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status     string             `json:"status"`
			ServerTime int64              `json:"serverTime"`
			Tick       uint64             `json:"tick"`
			Lives      int64              `json:"lives"`
			Score      uint64             `json:"score"`
			Round      uint64             `json:"round"`
			Seed       string             `json:"seed"`
			TickRate   int                `json:"tickRate"`
			Heartbeat  int64              `json:"heartbeatMillis"`
			Clients    any                `json:"clients"`
			Telemetry  TelemetrySnapshot  `json:"telemetry"`
			Events     []sim.JournalEntry `json:"events,omitempty"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			Tick:       hub.Tick(),
			Lives:      hub.Lives(),
			Score:      hub.Score(),
			Round:      hub.Round(),
			Seed:       hub.Seed(),
			TickRate:   hub.TickRate(),
			Heartbeat:  heartbeatInterval.Milliseconds(),
			Clients:    hub.DiagnosticsSnapshot(),
			Telemetry:  hub.TelemetrySnapshot(),
			Events:     hub.RecentEvents(),
		}

		data, err := json.Marshal(payload)
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	mux.HandleFunc("/join", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}

		data, err := proto.EncodeJoinResponseV1(hub.Join())
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	mux.HandleFunc("/level/reset", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}

		hub.RequestGameReset()

		response := struct {
			Status string `json:"status"`
			Tick   uint64 `json:"tick"`
		}{
			Status: "scheduled",
			Tick:   hub.Tick(),
		}

		data, err := json.Marshal(response)
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	wsHandler := ws.NewHandler(hub, ws.HandlerConfig{Logger: logger})
	mux.HandleFunc("/ws", wsHandler.Handle)

	if cfg.Observability.EnablePprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	if cfg.ClientDir != "" {
		fs := nethttp.FileServer(nethttp.Dir(cfg.ClientDir))
		mux.Handle("/", fs)
	}

	return mux
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
