package sim

import (
	"math/rand"

	"gridchase/internal/telemetry"
	"gridchase/logging"
)

// RNGFactory produces deterministic RNG streams for world subsystems.
type RNGFactory func(rootSeed, label string) *rand.Rand

// Deps bundles shared infrastructure dependencies required by the world
// and the loop. Zero values are safe: nil members degrade to no-ops.
type Deps struct {
	Logger    telemetry.Logger
	Metrics   telemetry.Metrics
	Clock     logging.Clock
	Publisher logging.Publisher
	Events    EventSink
	RNG       RNGFactory
}
