package store

import (
	"github.com/nvandessel/strafe/internal/simulation"
)

// RunFromResult builds a Run from a simulation result and the ticks recorded
// while it ran. maxTicks is the cap the run was started with.
func RunFromResult(res simulation.Result, ticks []simulation.Tick, maxTicks int) Run {
	sc := res.Scenario
	run := Run{
		Kind:        sc.Kind.String(),
		StartX:      sc.StartX,
		StartY:      sc.StartY,
		WishX:       sc.WishX,
		WishY:       sc.WishY,
		Accel:       sc.Params.Accel,
		FrameTime:   sc.Params.FrameTime,
		MaxTicks:    maxTicks,
		Ticks:       res.Ticks,
		Converged:   res.Converged,
		Stopped:     res.Stopped,
		FinalX:      res.Final.Velocity[0],
		FinalY:      res.Final.Velocity[1],
		FinalSpeed:  res.Speed,
		TargetSpeed: res.TargetSpeed,
	}

	run.Samples = make([]Sample, 0, len(ticks))
	for _, t := range ticks {
		run.Samples = append(run.Samples, Sample{
			Tick:         t.Index,
			VX:           t.State.Velocity[0],
			VY:           t.State.Velocity[1],
			Speed:        t.Speed,
			Diff:         t.Diff,
			CurrentSpeed: t.Step.CurrentSpeed,
			AddSpeed:     t.Step.AddSpeed,
			AccelSpeed:   t.Step.AccelSpeed,
			Applied:      t.Step.Applied,
		})
	}
	return run
}
