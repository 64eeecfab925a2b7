package simulation

import (
	"math"
	"testing"
)

// AssertSpeedNonDecreasing asserts that the horizontal speed never drops
// from one recorded tick to the next.
func AssertSpeedNonDecreasing(t *testing.T, rec *Recorder, tolerance float64) {
	t.Helper()
	for i := 1; i < len(rec.Ticks); i++ {
		prev, cur := rec.Ticks[i-1].Speed, rec.Ticks[i].Speed
		if cur+tolerance < prev {
			t.Errorf("AssertSpeedNonDecreasing: tick %d: speed %.6f < previous %.6f", rec.Ticks[i].Index, cur, prev)
		}
	}
}

// AssertSpeedBounded asserts that no recorded tick exceeds max.
func AssertSpeedBounded(t *testing.T, rec *Recorder, max, tolerance float64) {
	t.Helper()
	for _, tk := range rec.Ticks {
		if tk.Speed > max+tolerance {
			t.Errorf("AssertSpeedBounded: tick %d: speed %.6f > max %.4f", tk.Index, tk.Speed, max)
		}
	}
}

// AssertConverged asserts that the run met its own stop criterion with
// final speed within tolerance of want.
func AssertConverged(t *testing.T, res Result, want, tolerance float64) {
	t.Helper()
	if !res.Converged {
		t.Fatalf("AssertConverged: run stopped early (%s) after %d ticks", res.Stopped, res.Ticks)
	}
	if math.Abs(res.Speed-want) > tolerance {
		t.Errorf("AssertConverged: final speed %.6f, want %.6f ± %.g", res.Speed, want, tolerance)
	}
}

// AssertTickIndexes asserts that ticks were reported 1..n without gaps.
func AssertTickIndexes(t *testing.T, rec *Recorder, n int) {
	t.Helper()
	if len(rec.Ticks) != n {
		t.Fatalf("AssertTickIndexes: got %d ticks, want %d", len(rec.Ticks), n)
	}
	for i, tk := range rec.Ticks {
		if tk.Index != i+1 {
			t.Errorf("AssertTickIndexes: position %d has index %d", i, tk.Index)
		}
	}
}
