package sim

import (
	"testing"

	"gridchase/internal/behavior"
	"gridchase/internal/level"
)

func TestWaveSchedulerCyclesThroughSchedule(t *testing.T) {
	s := newWaveScheduler([]level.Wave{
		{Mode: behavior.ModePatrol, Ticks: 2},
		{Mode: behavior.ModePursuit, Ticks: 1},
	})
	if s.Current() != behavior.ModePatrol {
		t.Fatalf("initial mode = %v, want patrol", s.Current())
	}

	if mode, changed := s.Advance(); changed || mode != behavior.ModePatrol {
		t.Fatalf("tick 1: mode=%v changed=%v, want patrol without change", mode, changed)
	}
	if mode, changed := s.Advance(); !changed || mode != behavior.ModePursuit {
		t.Fatalf("tick 2: mode=%v changed=%v, want pursuit flip", mode, changed)
	}
	if mode, changed := s.Advance(); !changed || mode != behavior.ModePatrol {
		t.Fatalf("tick 3: mode=%v changed=%v, want wraparound to patrol", mode, changed)
	}

	s.Advance()
	s.Reset()
	if s.Current() != behavior.ModePatrol {
		t.Fatalf("mode after reset = %v, want patrol", s.Current())
	}
	if mode, changed := s.Advance(); changed || mode != behavior.ModePatrol {
		t.Fatalf("reset should rewind the hold, mode=%v changed=%v", mode, changed)
	}
}

func TestWaveSchedulerEmptyScheduleHoldsPatrol(t *testing.T) {
	s := newWaveScheduler(nil)
	if s.Current() != behavior.ModePatrol {
		t.Fatalf("empty schedule mode = %v, want patrol", s.Current())
	}
	for i := 0; i < 3; i++ {
		if mode, changed := s.Advance(); changed || mode != behavior.ModePatrol {
			t.Fatalf("empty schedule must never flip, mode=%v changed=%v", mode, changed)
		}
	}
}
