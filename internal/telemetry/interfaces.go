package telemetry

import (
	"log"

	"gridchase/logging"
)

// Logger is the printf-style surface server components log through. It
// stays deliberately tiny: structured events go through the logging
// router, this is for operator-facing process output.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggerFunc adapts a plain function into a Logger.
type LoggerFunc func(format string, args ...any)

// Printf implements Logger.
func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// WrapLogger adapts a standard library logger. The result also exposes
// the wrapped *log.Logger through StandardLogger for components that
// insist on the concrete type.
func WrapLogger(l *log.Logger) Logger {
	return stdLogger{inner: l}
}

type stdLogger struct {
	inner *log.Logger
}

// Printf implements Logger. A nil inner logger discards output.
func (s stdLogger) Printf(format string, args ...any) {
	if s.inner == nil {
		return
	}
	s.inner.Printf(format, args...)
}

// StandardLogger returns the wrapped logger, which may be nil.
func (s stdLogger) StandardLogger() *log.Logger {
	return s.inner
}

// Metrics is the counter and gauge surface server components record
// through.
type Metrics interface {
	Add(key string, delta uint64)
	Store(key string, value uint64)
}

// WrapMetrics adapts the logging registry. The registry's methods are
// nil-safe, so the adapter forwards unconditionally.
func WrapMetrics(registry *logging.Metrics) Metrics {
	return registryMetrics{registry: registry}
}

type registryMetrics struct {
	registry *logging.Metrics
}

// Add implements Metrics.
func (r registryMetrics) Add(key string, delta uint64) {
	r.registry.TelemetryAdd(key, delta)
}

// Store implements Metrics.
func (r registryMetrics) Store(key string, value uint64) {
	r.registry.TelemetryStore(key, value)
}
