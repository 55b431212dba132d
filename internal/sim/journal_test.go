package sim

import (
	"testing"
	"time"
)

func TestJournalEvictsByCount(t *testing.T) {
	j := NewJournal(3, time.Hour)
	base := time.Unix(0, 0)
	for i := 0; i < 5; i++ {
		j.Record(JournalEntry{
			Tick:       uint64(i + 1),
			Kind:       EventPelletEaten,
			RecordedAt: base.Add(time.Duration(i) * time.Second),
		})
	}
	recent := j.Recent()
	if len(recent) != 3 {
		t.Fatalf("expected 3 retained entries, got %d", len(recent))
	}
	if recent[0].Tick != 3 || recent[2].Tick != 5 {
		t.Fatalf("expected oldest entries evicted, got %+v", recent)
	}
}

func TestJournalEvictsByAge(t *testing.T) {
	j := NewJournal(16, time.Minute)
	base := time.Unix(0, 0)
	j.Record(JournalEntry{Tick: 1, Kind: EventWaveChanged, RecordedAt: base})
	j.Record(JournalEntry{Tick: 2, Kind: EventWaveChanged, RecordedAt: base.Add(90 * time.Second)})
	j.Record(JournalEntry{Tick: 3, Kind: EventWaveChanged, RecordedAt: base.Add(2 * time.Minute)})

	recent := j.Recent()
	if len(recent) != 2 {
		t.Fatalf("expected stale entry evicted, got %+v", recent)
	}
	if recent[0].Tick != 2 || recent[1].Tick != 3 {
		t.Fatalf("unexpected retained entries: %+v", recent)
	}
}

func TestJournalStampsMissingTimes(t *testing.T) {
	j := NewJournal(4, time.Hour)
	j.Record(JournalEntry{Tick: 1, Kind: EventAgentCaught})
	recent := j.Recent()
	if len(recent) != 1 || recent[0].RecordedAt.IsZero() {
		t.Fatalf("expected recorded time to be stamped, got %+v", recent)
	}
}

func TestJournalNilIsSafe(t *testing.T) {
	var j *Journal
	j.Record(JournalEntry{Tick: 1})
	if j.Recent() != nil || j.Len() != 0 {
		t.Fatalf("nil journal should behave as empty")
	}
}
