package simulation

import (
	"context"

	"gridchase/logging"
)

const (
	// EventTickBudgetOverrun is emitted when the simulation loop exceeds the allotted tick budget.
	EventTickBudgetOverrun logging.EventType = "simulation.tick_budget_overrun"
	// EventLevelLoaded is emitted when a level compiles successfully at startup.
	EventLevelLoaded logging.EventType = "simulation.level_loaded"
	// EventLevelLoadFailed is emitted when a level fails validation or compilation.
	EventLevelLoadFailed logging.EventType = "simulation.level_load_failed"
)

// TickBudgetOverrunPayload captures timing details for a tick budget breach.
type TickBudgetOverrunPayload struct {
	DurationMillis int64   `json:"durationMillis"`
	BudgetMillis   int64   `json:"budgetMillis"`
	Ratio          float64 `json:"ratio"`
	Streak         int     `json:"streak"`
}

// TickBudgetOverrun publishes a warning when the simulation exceeds the configured tick budget.
func TickBudgetOverrun(ctx context.Context, pub logging.Publisher, tick uint64, payload TickBudgetOverrunPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTickBudgetOverrun,
		Tick:     tick,
		Severity: logging.SeverityWarn,
		Category: logging.CategorySimulation,
		Payload:  payload,
	})
}

// LevelLoadedPayload describes the compiled level.
type LevelLoadedPayload struct {
	Name    string `json:"name"`
	Source  string `json:"source"`
	Cols    int    `json:"cols"`
	Rows    int    `json:"rows"`
	Pellets int    `json:"pellets"`
	Chasers int    `json:"chasers"`
}

// LevelLoaded publishes a successful level load.
func LevelLoaded(ctx context.Context, pub logging.Publisher, payload LevelLoadedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventLevelLoaded,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySimulation,
		Payload:  payload,
	})
}

// LevelLoadFailedPayload carries the defect report for a rejected level.
type LevelLoadFailedPayload struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// LevelLoadFailed publishes a fatal level load defect.
func LevelLoadFailed(ctx context.Context, pub logging.Publisher, payload LevelLoadFailedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventLevelLoadFailed,
		Severity: logging.SeverityError,
		Category: logging.CategorySimulation,
		Payload:  payload,
	})
}
