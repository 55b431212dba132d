package logging

import "time"

// Config tunes the event router and the sinks the server attaches at
// startup.
type Config struct {
	// EnabledSinks lists the sink names the composition layer should
	// construct. The router delivers to whatever it is handed; this
	// list exists so an environment flag can switch sinks on.
	EnabledSinks []string

	// BufferSize bounds the intake queue. Publishing beyond it drops
	// the event rather than blocking the game loop.
	BufferSize int

	// MinimumSeverity filters events before they are queued.
	MinimumSeverity Severity

	// Fields are stamped into every event's extra map unless the
	// producer already set the key.
	Fields map[string]any

	// DropWarnInterval rate-limits the stderr warning emitted while
	// intake overflows.
	DropWarnInterval time.Duration

	Console ConsoleConfig
	JSON    JSONConfig
}

// ConsoleConfig tunes the human-readable sink.
type ConsoleConfig struct {
	UseColor bool
}

// JSONConfig tunes the newline-delimited JSON file sink.
type JSONConfig struct {
	FilePath string

	// MaxBatch flushes the file buffer once this many events are
	// pending. Zero defers entirely to the flush interval.
	MaxBatch int

	// FlushInterval bounds how long a buffered event can sit before it
	// reaches disk. Zero or negative flushes after every write.
	FlushInterval time.Duration
}

// DefaultConfig suits a single local game server: console output only,
// info level, intake sized for bursts of journal events.
func DefaultConfig() Config {
	return Config{
		EnabledSinks:     []string{"console"},
		BufferSize:       512,
		MinimumSeverity:  SeverityInfo,
		DropWarnInterval: 5 * time.Second,
		JSON: JSONConfig{
			MaxBatch:      32,
			FlushInterval: 2 * time.Second,
		},
	}
}

// HasSink reports whether name appears in EnabledSinks.
func (c Config) HasSink(name string) bool {
	for _, enabled := range c.EnabledSinks {
		if enabled == name {
			return true
		}
	}
	return false
}

// CloneFields copies the baseline fields so the router owns its map.
func (c Config) CloneFields() map[string]any {
	if len(c.Fields) == 0 {
		return nil
	}
	out := make(map[string]any, len(c.Fields))
	for k, v := range c.Fields {
		out[k] = v
	}
	return out
}

// normalized clamps unusable values to the defaults.
func (c Config) normalized() Config {
	out := c
	if out.BufferSize <= 0 {
		out.BufferSize = 512
	}
	if out.DropWarnInterval <= 0 {
		out.DropWarnInterval = 5 * time.Second
	}
	return out
}
