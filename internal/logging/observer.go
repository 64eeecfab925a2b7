package logging

import (
	"context"
	"log/slog"

	"github.com/nvandessel/strafe/internal/movement"
	"github.com/nvandessel/strafe/internal/simulation"
)

// Observer forwards simulation diagnostics to a slog.Logger and, when set,
// a TraceLogger.
type Observer struct {
	logger *slog.Logger
	trace  *TraceLogger
	run    string
}

var _ simulation.Observer = (*Observer)(nil)

// NewObserver returns an Observer labelling every record with run.
// A nil logger discards log output; a nil trace disables JSONL tracing.
func NewObserver(logger *slog.Logger, trace *TraceLogger, run string) *Observer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Observer{logger: logger, trace: trace, run: run}
}

// Snapshot logs a labelled state at debug level.
func (o *Observer) Snapshot(label string, s movement.State) {
	o.logger.Debug(label,
		"run", o.run,
		"vx", s.Velocity[0],
		"vy", s.Velocity[1],
		"speed", s.Speed(),
	)
	o.trace.Write(TraceEvent{
		Event: "snapshot",
		Run:   o.run,
		Label: label,
		VX:    s.Velocity[0],
		VY:    s.Velocity[1],
		Speed: s.Speed(),
	})
}

// Tick logs the rule's speeds at debug level and the diff and velocity at
// trace level.
func (o *Observer) Tick(t simulation.Tick) {
	if t.Step.Applied {
		o.logger.Debug("accelerate",
			"run", o.run,
			"tick", t.Index,
			"current_speed", t.Step.CurrentSpeed,
			"add_speed", t.Step.AddSpeed,
			"accel_speed", t.Step.AccelSpeed,
		)
	}
	o.logger.Log(context.Background(), LevelTrace, "tick",
		"run", o.run,
		"tick", t.Index,
		"vx", t.State.Velocity[0],
		"vy", t.State.Velocity[1],
		"speed", t.Speed,
		"diff", t.Diff,
	)
	o.trace.Write(TraceEvent{
		Event:        "tick",
		Run:          o.run,
		Tick:         t.Index,
		VX:           t.State.Velocity[0],
		VY:           t.State.Velocity[1],
		Speed:        t.Speed,
		Diff:         t.Diff,
		Applied:      t.Step.Applied,
		CurrentSpeed: t.Step.CurrentSpeed,
		AddSpeed:     t.Step.AddSpeed,
		AccelSpeed:   t.Step.AccelSpeed,
	})
}
