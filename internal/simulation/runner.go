package simulation

import (
	"context"
	"fmt"

	"github.com/nvandessel/strafe/internal/constants"
	"github.com/nvandessel/strafe/internal/movement"
	"github.com/nvandessel/strafe/internal/vecmath"
)

// Options control how a run is observed and bounded.
type Options struct {
	// Observer receives snapshots and ticks. Nil discards them.
	Observer Observer

	// MaxTicks stops a run after this many ticks. 0 means unbounded.
	MaxTicks int
}

func (o Options) observer() Observer {
	if o.Observer == nil {
		return NopObserver{}
	}
	return o.Observer
}

// stopReason reports whether the loop must end before running tick n+1.
func (o Options) stopReason(ctx context.Context, ticks int) string {
	if o.MaxTicks > 0 && ticks >= o.MaxTicks {
		return StopMaxTicks
	}
	if ctx.Err() != nil {
		return StopCanceled
	}
	return ""
}

// Run dispatches the scenario to its loop.
func Run(ctx context.Context, sc Scenario, opts Options) (Result, error) {
	var res Result
	switch sc.Kind {
	case constants.KindAccelerate:
		res = Accelerate(ctx, sc.Start(), sc.Wish(), sc.Params, opts)
	case constants.KindTurn:
		res = Turn(ctx, sc.Start(), sc.Params, opts)
	default:
		return Result{}, fmt.Errorf("unknown scenario kind %q", sc.Kind)
	}
	res.Scenario = sc
	return res, nil
}

// Accelerate applies the rule toward wish until the velocity stops changing.
// The wish vector is normalized every tick and its length is the wish speed.
// At least one tick always runs.
func Accelerate(ctx context.Context, start movement.State, wish vecmath.Vec3, p movement.Params, opts Options) Result {
	obs := opts.observer()
	res := Result{
		Scenario: Scenario{Kind: constants.KindAccelerate, Params: p},
		Initial:  start,
	}

	s := start
	obs.Snapshot(LabelStart, s)
	for {
		if stop := opts.stopReason(ctx, res.Ticks); stop != "" {
			res.Stopped = stop
			break
		}

		prev := s
		dir := wish
		wishSpeed := vecmath.Normalize(&dir)

		var step movement.Step
		s, step = movement.AirAccelerate(s, dir, wishSpeed, p)
		res.Ticks++

		diff := vecmath.HorizontalDistance(prev.Velocity, s.Velocity)
		obs.Tick(Tick{Index: res.Ticks, Step: step, State: s, Speed: s.Speed(), Diff: diff})

		if diff < constants.ConvergenceThreshold {
			res.Converged = true
			break
		}
	}
	obs.Snapshot(LabelAfterAccel, s)

	res.Final = s
	res.Speed = s.Speed()
	return res
}

// Turn accelerates perpendicular to the current velocity with wish speed
// TurnWishSpeed until the horizontal speed reaches TurnGainFactor times the
// initial speed. A state at rest runs zero ticks.
func Turn(ctx context.Context, start movement.State, p movement.Params, opts Options) Result {
	obs := opts.observer()
	res := Result{
		Scenario:     Scenario{Kind: constants.KindTurn, Params: p},
		Initial:      start,
		InitialSpeed: start.Speed(),
	}
	res.TargetSpeed = res.InitialSpeed * constants.TurnGainFactor
	res.ReportSpeed = res.InitialSpeed * constants.TurnReportFactor

	s := start
	obs.Snapshot(LabelBeforeTurn, s)
	for s.Speed() < res.TargetSpeed {
		if stop := opts.stopReason(ctx, res.Ticks); stop != "" {
			res.Stopped = stop
			break
		}

		prev := s
		normal := vecmath.PerpendicularHorizontal(s.Velocity)
		vecmath.Normalize(&normal)

		var step movement.Step
		s, step = movement.AirAccelerate(s, normal, constants.TurnWishSpeed, p)
		res.Ticks++

		obs.Tick(Tick{
			Index: res.Ticks,
			Step:  step,
			State: s,
			Speed: s.Speed(),
			Diff:  vecmath.HorizontalDistance(prev.Velocity, s.Velocity),
		})
	}
	obs.Snapshot(LabelAfterTurn, s)

	res.Final = s
	res.Speed = s.Speed()
	res.Converged = res.Stopped == ""
	return res
}
