package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"gridchase/internal/level"
	"gridchase/internal/net"
	"gridchase/internal/observability"
	"gridchase/internal/sim"
	"gridchase/internal/telemetry"
	"gridchase/logging"
	simulationlog "gridchase/logging/simulation"
	loggingSinks "gridchase/logging/sinks"
)

const shutdownTimeout = 5 * time.Second

// Config carries the knobs main cannot read from the environment.
type Config struct {
	Logger        telemetry.Logger
	Addr          string
	LevelPath     string
	ClientDir     string
	Observability observability.Config
}

// Run assembles the hub, the logging router and the HTTP surface, then
// serves until the listener fails or ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	telemetryLogger := cfg.Logger
	if telemetryLogger == nil {
		telemetryLogger = telemetry.WrapLogger(log.Default())
	}

	fallbackLogger := log.Default()
	if provider, ok := telemetryLogger.(interface{ StandardLogger() *log.Logger }); ok {
		if candidate := provider.StandardLogger(); candidate != nil {
			fallbackLogger = candidate
		}
	}

	logConfig := logging.DefaultConfig()
	if raw := os.Getenv("LOG_JSON"); raw != "" {
		logConfig.JSON.FilePath = raw
		logConfig.EnabledSinks = append(logConfig.EnabledSinks, "json")
	}

	namedSinks := []logging.NamedSink{
		{Name: "console", Sink: loggingSinks.NewConsoleSink(os.Stdout, logConfig.Console)},
	}
	if logConfig.HasSink("json") && logConfig.JSON.FilePath != "" {
		file, err := os.OpenFile(logConfig.JSON.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			telemetryLogger.Printf("failed to open json log %q: %v", logConfig.JSON.FilePath, err)
		} else {
			defer file.Close()
			namedSinks = append(namedSinks, logging.NamedSink{
				Name: "json",
				Sink: loggingSinks.NewJSON(file, logConfig.JSON),
			})
		}
	}

	router, err := logging.NewRouter(logging.SystemClock{}, logConfig, namedSinks)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		if cerr := router.Close(context.Background()); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	lvl, source, err := loadLevel(cfg.LevelPath)
	if err != nil {
		simulationlog.LevelLoadFailed(ctx, router, simulationlog.LevelLoadFailedPayload{
			Source: source,
			Error:  err.Error(),
		})
		return fmt.Errorf("failed to load level from %s: %w", source, err)
	}
	simulationlog.LevelLoaded(ctx, router, simulationlog.LevelLoadedPayload{
		Name:    lvl.Name,
		Source:  source,
		Cols:    lvl.Tiles.Cols(),
		Rows:    lvl.Tiles.Rows(),
		Pellets: len(lvl.Pellets),
		Chasers: len(lvl.Chasers),
	})

	hubCfg := net.DefaultHubConfig()
	if raw := os.Getenv("TICK_RATE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			hubCfg.TickRate = value
		} else {
			telemetryLogger.Printf("invalid TICK_RATE=%q: %v", raw, err)
		}
	}

	observabilityCfg := cfg.Observability
	if raw := os.Getenv("ENABLE_PPROF"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			observabilityCfg.EnablePprof = value
		} else {
			telemetryLogger.Printf("invalid ENABLE_PPROF=%q: %v", raw, err)
		}
	}

	metrics := logging.NewMetrics()
	hub, err := net.NewHub(lvl, sim.Config{Seed: os.Getenv("SEED")}, sim.Deps{
		Logger:    telemetryLogger,
		Metrics:   telemetry.WrapMetrics(metrics),
		Clock:     logging.SystemClock{},
		Publisher: router,
	}, hubCfg)
	if err != nil {
		return fmt.Errorf("failed to construct hub: %w", err)
	}

	stop := make(chan struct{})
	go hub.Run(stop)
	defer close(stop)

	clientDir := cfg.ClientDir
	if raw := os.Getenv("CLIENT_DIR"); raw != "" {
		clientDir = raw
	}
	if clientDir == "" {
		if resolved, err := resolveClientAssetsDir(); err == nil {
			clientDir = resolved
		} else {
			telemetryLogger.Printf("client assets not found, serving API only: %v", err)
		}
	}

	handler := net.NewHTTPHandler(hub, net.HTTPHandlerConfig{
		ClientDir:     clientDir,
		Logger:        fallbackLogger,
		Observability: observabilityCfg,
	})

	addr := cfg.Addr
	if raw := os.Getenv("ADDR"); raw != "" {
		addr = raw
	}
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{Addr: addr, Handler: handler}
	telemetryLogger.Printf("server listening on %s (seed=%s tick_rate=%d)", srv.Addr, hub.Seed(), hub.TickRate())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			telemetryLogger.Printf("server shutdown: %v", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}
}

// loadLevel resolves the level definition, preferring an explicit path and
// falling back to the LEVEL_FILE environment variable, then the built-in map.
func loadLevel(path string) (*level.Level, string, error) {
	if path == "" {
		path = os.Getenv("LEVEL_FILE")
	}
	if path != "" {
		lvl, err := level.Load(path)
		return lvl, path, err
	}
	lvl, err := level.Default()
	return lvl, "builtin", err
}
