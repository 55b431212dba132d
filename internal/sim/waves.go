package sim

import (
	"gridchase/internal/behavior"
	"gridchase/internal/level"
)

// waveScheduler cycles through the level's ambient mode schedule. Each
// wave holds for its configured tick count, then the next entry becomes
// the ambient mode for every chaser; the schedule wraps around.
type waveScheduler struct {
	waves   []level.Wave
	index   int
	elapsed uint64
}

func newWaveScheduler(waves []level.Wave) *waveScheduler {
	return &waveScheduler{waves: waves}
}

// Current reports the ambient mode of the active wave.
func (s *waveScheduler) Current() behavior.Mode {
	if s == nil || len(s.waves) == 0 {
		return behavior.ModePatrol
	}
	return s.waves[s.index].Mode
}

// Advance consumes one tick and reports whether the schedule moved to a
// new wave, along with the now-active ambient mode.
func (s *waveScheduler) Advance() (behavior.Mode, bool) {
	if s == nil || len(s.waves) == 0 {
		return behavior.ModePatrol, false
	}
	s.elapsed++
	if s.elapsed < s.waves[s.index].Ticks {
		return s.Current(), false
	}
	s.elapsed = 0
	s.index = (s.index + 1) % len(s.waves)
	return s.Current(), true
}

// Reset rewinds the schedule to its first wave.
func (s *waveScheduler) Reset() {
	if s == nil {
		return
	}
	s.index = 0
	s.elapsed = 0
}
