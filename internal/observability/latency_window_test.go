package observability

import (
	"testing"
	"time"
)

func TestLatencyWindowSnapshotStats(t *testing.T) {
	w := NewLatencyWindow(8)
	for _, ms := range []float64{100, 200, 300, 400} {
		w.Observe(StageFirstAudio, ms)
	}

	snap := w.Snapshot()
	if len(snap.Stages) != 1 {
		t.Fatalf("len(Stages) = %d, want 1", len(snap.Stages))
	}
	s := snap.Stages[0]
	if s.Stage != StageFirstAudio {
		t.Fatalf("Stage = %q, want %q", s.Stage, StageFirstAudio)
	}
	if s.Samples != 4 {
		t.Fatalf("Samples = %d, want 4", s.Samples)
	}
	if s.LastMS != 400 {
		t.Fatalf("LastMS = %v, want 400", s.LastMS)
	}
	if s.AvgMS != 250 {
		t.Fatalf("AvgMS = %v, want 250", s.AvgMS)
	}
	if s.P50MS != 250 {
		t.Fatalf("P50MS = %v, want 250", s.P50MS)
	}
}

func TestLatencyWindowStageTargetOverride(t *testing.T) {
	w := NewLatencyWindow(4)
	w.SetStageTarget(StageFirstAudio, 700*time.Millisecond)
	w.Observe(StageFirstAudio, 100)
	w.Observe(StageConnect, 100)

	snap := w.Snapshot()
	for _, s := range snap.Stages {
		switch s.Stage {
		case StageFirstAudio:
			if s.TargetP95MS != 700 {
				t.Fatalf("first-audio TargetP95MS = %v, want 700", s.TargetP95MS)
			}
		case StageConnect:
			if s.TargetP95MS != 1500 {
				t.Fatalf("connect TargetP95MS = %v, want default 1500", s.TargetP95MS)
			}
		}
	}

	// Non-positive targets leave the default in place.
	w.SetStageTarget(StageConnect, 0)
	for _, s := range w.Snapshot().Stages {
		if s.Stage == StageConnect && s.TargetP95MS != 1500 {
			t.Fatalf("connect TargetP95MS after zero override = %v, want 1500", s.TargetP95MS)
		}
	}
}

func TestLatencyWindowWrapsAround(t *testing.T) {
	w := NewLatencyWindow(2)
	w.Observe(StageTurnTotal, 100)
	w.Observe(StageTurnTotal, 200)
	w.Observe(StageTurnTotal, 300)

	snap := w.Snapshot()
	if snap.Stages[0].Samples != 2 {
		t.Fatalf("Samples = %d, want 2 (window size)", snap.Stages[0].Samples)
	}
	if snap.Stages[0].LastMS != 300 {
		t.Fatalf("LastMS = %v, want 300", snap.Stages[0].LastMS)
	}
}

func TestLatencyWindowIndicators(t *testing.T) {
	w := NewLatencyWindow(4)
	w.ObserveIndicator("barge_in")
	w.ObserveIndicator("barge_in")
	w.ObserveIndicator("decode_drop")
	w.ObserveIndicator("  ")

	snap := w.Snapshot()
	if len(snap.Indicators) != 2 {
		t.Fatalf("len(Indicators) = %d, want 2", len(snap.Indicators))
	}
	if snap.Indicators[0].Name != "barge_in" || snap.Indicators[0].Count != 2 {
		t.Fatalf("Indicators[0] = %+v, want barge_in x2", snap.Indicators[0])
	}
}

func TestLatencyWindowReset(t *testing.T) {
	w := NewLatencyWindow(4)
	w.Observe(StageConnect, 50)
	w.ObserveIndicator("barge_in")
	w.Reset()
	snap := w.Snapshot()
	if len(snap.Stages) != 0 || len(snap.Indicators) != 0 {
		t.Fatalf("Snapshot after Reset = %+v, want empty", snap)
	}
}

func TestLatencyWindowIgnoresInvalidSamples(t *testing.T) {
	w := NewLatencyWindow(4)
	w.Observe("", 10)
	w.Observe(StageConnect, -5)
	if got := len(w.Snapshot().Stages); got != 0 {
		t.Fatalf("len(Stages) = %d, want 0", got)
	}
}
