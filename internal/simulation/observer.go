package simulation

import (
	"github.com/nvandessel/strafe/internal/movement"
)

// Snapshot labels emitted by the loops.
const (
	LabelStart      = "start"
	LabelAfterAccel = "After accel"
	LabelBeforeTurn = "Before turn"
	LabelAfterTurn  = "After turn"
)

// Tick describes one iteration of a loop.
type Tick struct {
	Index int            `json:"tick"` // 1-based
	Step  movement.Step  `json:"step"`
	State movement.State `json:"state"`
	Speed float64        `json:"speed"`
	// Diff is the horizontal Manhattan distance to the previous velocity.
	Diff float64 `json:"diff"`
}

// Observer receives diagnostics while a scenario runs. Implementations must
// not retain or mutate the states they are given.
type Observer interface {
	// Snapshot reports a labelled state ("start", "Before turn", ...).
	Snapshot(label string, s movement.State)

	// Tick reports the outcome of one loop iteration.
	Tick(t Tick)
}

// NopObserver discards everything.
type NopObserver struct{}

func (NopObserver) Snapshot(string, movement.State) {}
func (NopObserver) Tick(Tick)                       {}

// MultiObserver fans out to every non-nil observer in order.
type MultiObserver []Observer

func (m MultiObserver) Snapshot(label string, s movement.State) {
	for _, o := range m {
		if o != nil {
			o.Snapshot(label, s)
		}
	}
}

func (m MultiObserver) Tick(t Tick) {
	for _, o := range m {
		if o != nil {
			o.Tick(t)
		}
	}
}

// Recorder keeps every tick and snapshot it sees, in order.
type Recorder struct {
	Ticks     []Tick
	Snapshots []LabeledState
}

// LabeledState is a snapshot captured by a Recorder.
type LabeledState struct {
	Label string         `json:"label"`
	State movement.State `json:"state"`
}

func (r *Recorder) Snapshot(label string, s movement.State) {
	r.Snapshots = append(r.Snapshots, LabeledState{Label: label, State: s})
}

func (r *Recorder) Tick(t Tick) {
	r.Ticks = append(r.Ticks, t)
}
