package sim

import (
	"testing"
	"time"
)

type stubCore struct {
	deps     Deps
	applied  [][]Command
	stepped  []uint64
	snapshot Snapshot
}

func (c *stubCore) Deps() Deps               { return c.deps }
func (c *stubCore) Apply(commands []Command) { c.applied = append(c.applied, commands) }
func (c *stubCore) Snapshot() Snapshot       { return c.snapshot }

func (c *stubCore) Step(tick uint64, _ time.Time, _ float64) {
	c.stepped = append(c.stepped, tick)
}

func TestLoopEnqueueThrottlesPerActor(t *testing.T) {
	var drops []string
	loop := NewLoop(&stubCore{}, LoopConfig{CommandCapacity: 8, PerActorLimit: 2}, LoopHooks{
		OnCommandDrop: func(reason string, cmd Command) {
			drops = append(drops, reason+"/"+cmd.ActorID)
		},
	})

	for i := 0; i < 2; i++ {
		if ok, reason := loop.Enqueue(Command{ActorID: "player", Type: CommandSteer}); !ok {
			t.Fatalf("enqueue %d rejected: %s", i, reason)
		}
	}
	ok, reason := loop.Enqueue(Command{ActorID: "player", Type: CommandSteer})
	if ok || reason != CommandRejectQueueLimit {
		t.Fatalf("expected per-actor throttle, ok=%v reason=%q", ok, reason)
	}
	if len(drops) != 1 || drops[0] != "queue_limit/player" {
		t.Fatalf("unexpected drop reports: %v", drops)
	}
	if loop.Pending() != 2 {
		t.Fatalf("pending = %d, want 2", loop.Pending())
	}
}

func TestLoopEnqueueReportsQueueFull(t *testing.T) {
	loop := NewLoop(&stubCore{}, LoopConfig{CommandCapacity: 1}, LoopHooks{})

	if ok, _ := loop.Enqueue(Command{ActorID: "a", Type: CommandSteer}); !ok {
		t.Fatalf("first enqueue should succeed")
	}
	ok, reason := loop.Enqueue(Command{ActorID: "b", Type: CommandSteer})
	if ok || reason != CommandRejectQueueFull {
		t.Fatalf("expected saturated buffer rejection, ok=%v reason=%q", ok, reason)
	}
}

func TestLoopAdvanceAppliesStagedCommands(t *testing.T) {
	core := &stubCore{snapshot: Snapshot{Tick: 7}}
	loop := NewLoop(core, LoopConfig{CommandCapacity: 8, PerActorLimit: 2}, LoopHooks{})

	loop.Enqueue(Command{ActorID: "player", Type: CommandSteer})
	loop.Enqueue(Command{ActorID: "player", Type: CommandReset})

	result := loop.Advance(LoopTickContext{Tick: 7, Now: time.Unix(0, 0), Delta: 1.0 / 15})
	if len(core.applied) != 1 || len(core.applied[0]) != 2 {
		t.Fatalf("expected both commands applied in one batch, got %+v", core.applied)
	}
	if len(core.stepped) != 1 || core.stepped[0] != 7 {
		t.Fatalf("expected single step at tick 7, got %v", core.stepped)
	}
	if result.Snapshot.Tick != 7 || len(result.Commands) != 2 {
		t.Fatalf("unexpected step result: %+v", result)
	}
	if loop.Pending() != 0 {
		t.Fatalf("pending = %d, want 0 after advance", loop.Pending())
	}

	// Draining resets the per-actor window.
	for i := 0; i < 2; i++ {
		if ok, reason := loop.Enqueue(Command{ActorID: "player", Type: CommandSteer}); !ok {
			t.Fatalf("enqueue %d after advance rejected: %s", i, reason)
		}
	}
}

func TestLoopQueueWarningFires(t *testing.T) {
	var warned []int
	loop := NewLoop(&stubCore{}, LoopConfig{CommandCapacity: 8, WarningStep: 2}, LoopHooks{
		OnQueueWarning: func(length int) { warned = append(warned, length) },
	})

	for i := 0; i < 4; i++ {
		loop.Enqueue(Command{ActorID: "player", Type: CommandSteer})
	}
	if len(warned) != 2 || warned[0] != 2 || warned[1] != 4 {
		t.Fatalf("unexpected warnings: %v", warned)
	}
}

func TestLoopDrainCommandsClearsQueue(t *testing.T) {
	core := &stubCore{}
	loop := NewLoop(core, LoopConfig{CommandCapacity: 4}, LoopHooks{})

	loop.Enqueue(Command{ActorID: "player", Type: CommandSteer})
	drained := loop.DrainCommands()
	if len(drained) != 1 || loop.Pending() != 0 {
		t.Fatalf("drain returned %d commands, pending %d", len(drained), loop.Pending())
	}
	if len(core.applied) != 0 {
		t.Fatalf("drain must not advance the core, got %+v", core.applied)
	}
}
