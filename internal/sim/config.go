package sim

import "strings"

const DefaultSeed = "prototype"

// Config carries the world tunables that are not level data.
type Config struct {
	Seed string `json:"seed"`
}

func (cfg Config) normalized() Config {
	normalized := cfg
	normalized.Seed = strings.TrimSpace(normalized.Seed)
	if normalized.Seed == "" {
		normalized.Seed = DefaultSeed
	}
	return normalized
}

func (cfg Config) Normalized() Config {
	return cfg.normalized()
}

func DefaultConfig() Config {
	return Config{Seed: DefaultSeed}
}
