package simulation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/strafe/internal/constants"
	"github.com/nvandessel/strafe/internal/movement"
	"github.com/nvandessel/strafe/internal/simulation"
	"github.com/nvandessel/strafe/internal/vecmath"
)

func TestAccelerate_UnitWishConvergesToWishSpeed(t *testing.T) {
	rec := &simulation.Recorder{}
	res := simulation.Accelerate(context.Background(), movement.NewState(0, 0),
		vecmath.Vec3{1, 0, 0}, movement.DefaultParams(), simulation.Options{Observer: rec})

	// 8 full steps of 0.12, one partial step of 0.04, one no-op.
	assert.Equal(t, 10, res.Ticks)
	simulation.AssertConverged(t, res, 1.0, 1e-9)
	simulation.AssertSpeedNonDecreasing(t, rec, 1e-12)
	simulation.AssertSpeedBounded(t, rec, 1.0, 1e-9)
	simulation.AssertTickIndexes(t, rec, res.Ticks)
	assert.Less(t, rec.Ticks[len(rec.Ticks)-1].Diff, constants.ConvergenceThreshold)
}

func TestAccelerate_LongWishConvergesToCap(t *testing.T) {
	rec := &simulation.Recorder{}
	res := simulation.Accelerate(context.Background(), movement.NewState(0, 0),
		vecmath.Vec3{100, 0, 0}, movement.DefaultParams(), simulation.Options{Observer: rec})

	// 12, 24, 30, then no change.
	assert.Equal(t, 4, res.Ticks)
	simulation.AssertConverged(t, res, constants.AirWishSpeedCap, 1e-9)
	simulation.AssertSpeedNonDecreasing(t, rec, 1e-12)
	simulation.AssertSpeedBounded(t, rec, constants.AirWishSpeedCap, 1e-9)
	assert.False(t, rec.Ticks[3].Step.Applied)
}

func TestAccelerate_AlreadyFastConvergesInOneTick(t *testing.T) {
	res := simulation.Accelerate(context.Background(), movement.NewState(320, 0),
		vecmath.Vec3{1, 0, 0}, movement.DefaultParams(), simulation.Options{})

	assert.Equal(t, 1, res.Ticks)
	assert.True(t, res.Converged)
	assert.Equal(t, movement.NewState(320, 0), res.Final)
}

func TestAccelerate_ZeroWishDirection(t *testing.T) {
	res := simulation.Accelerate(context.Background(), movement.NewState(5, -5),
		vecmath.Vec3{}, movement.DefaultParams(), simulation.Options{})

	assert.Equal(t, 1, res.Ticks)
	assert.True(t, res.Converged)
	assert.Equal(t, res.Initial, res.Final)
}

func TestAccelerate_DiagonalWish(t *testing.T) {
	res := simulation.Accelerate(context.Background(), movement.NewState(0, 0),
		vecmath.Vec3{3, 4, 0}, movement.DefaultParams(), simulation.Options{})

	require.True(t, res.Converged)
	assert.InDelta(t, 5.0, res.Speed, 0.01)
	// Velocity ends up along the wish direction.
	assert.InDelta(t, 0.6, res.Final.Velocity[0]/res.Speed, 1e-9)
	assert.InDelta(t, 0.8, res.Final.Velocity[1]/res.Speed, 1e-9)
}

func TestAccelerate_MaxTicks(t *testing.T) {
	res := simulation.Accelerate(context.Background(), movement.NewState(0, 0),
		vecmath.Vec3{1, 0, 0}, movement.DefaultParams(), simulation.Options{MaxTicks: 3})

	assert.Equal(t, 3, res.Ticks)
	assert.False(t, res.Converged)
	assert.Equal(t, simulation.StopMaxTicks, res.Stopped)
}

func TestAccelerate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := simulation.Accelerate(ctx, movement.NewState(0, 0),
		vecmath.Vec3{1, 0, 0}, movement.DefaultParams(), simulation.Options{})

	assert.Equal(t, 0, res.Ticks)
	assert.Equal(t, simulation.StopCanceled, res.Stopped)
	assert.Equal(t, res.Initial, res.Final)
}

func TestTurn_FromRestRunsZeroTicks(t *testing.T) {
	rec := &simulation.Recorder{}
	res := simulation.Turn(context.Background(), movement.NewState(0, 0),
		movement.DefaultParams(), simulation.Options{Observer: rec})

	assert.Equal(t, 0, res.Ticks)
	assert.Equal(t, movement.NewState(0, 0), res.Final)
	assert.Equal(t, 0.0, res.TargetSpeed)
	assert.True(t, res.Converged)
	assert.Empty(t, rec.Ticks)
	require.Len(t, rec.Snapshots, 2)
	assert.Equal(t, "Before turn", rec.Snapshots[0].Label)
	assert.Equal(t, "After turn", rec.Snapshots[1].Label)
}

func TestTurn_GroundSpeed(t *testing.T) {
	rec := &simulation.Recorder{}
	res := simulation.Turn(context.Background(), movement.NewState(320, 0),
		movement.DefaultParams(), simulation.Options{Observer: rec})

	// Each tick adds 30 units perpendicular: speed² grows by 900.
	assert.Equal(t, 23, res.Ticks)
	assert.InDelta(t, 350.72, res.TargetSpeed, 1e-9)
	assert.InDelta(t, 416.0, res.ReportSpeed, 1e-9)
	assert.GreaterOrEqual(t, res.Speed, res.TargetSpeed)
	assert.True(t, res.Converged)
	simulation.AssertSpeedNonDecreasing(t, rec, 1e-9)
	simulation.AssertTickIndexes(t, rec, 23)

	// The loop stops as soon as the target is reached.
	assert.Less(t, rec.Ticks[len(rec.Ticks)-2].Speed, res.TargetSpeed)
	for _, tk := range rec.Ticks {
		assert.InDelta(t, 30.0, tk.Step.AccelSpeed, 1e-9)
		assert.InDelta(t, 0, tk.State.Velocity[2], 1e-12)
	}
}

func TestTurn_TurnsCounterClockwise(t *testing.T) {
	res := simulation.Turn(context.Background(), movement.NewState(320, 0),
		movement.DefaultParams(), simulation.Options{})

	assert.Greater(t, res.Final.Velocity[1], 0.0)
}

func TestTurn_MaxTicks(t *testing.T) {
	p := movement.DefaultParams()
	p.Accel = 0 // never gains speed

	res := simulation.Turn(context.Background(), movement.NewState(320, 0), p, simulation.Options{MaxTicks: 50})
	assert.Equal(t, 50, res.Ticks)
	assert.False(t, res.Converged)
	assert.Equal(t, simulation.StopMaxTicks, res.Stopped)
}

func TestRun_Dispatch(t *testing.T) {
	ctx := context.Background()

	turn, err := simulation.Run(ctx, simulation.Scenario{
		Kind: constants.KindTurn, StartX: 320, Params: movement.DefaultParams(),
	}, simulation.Options{})
	require.NoError(t, err)
	assert.Equal(t, 23, turn.Ticks)
	assert.Equal(t, constants.KindTurn, turn.Scenario.Kind)
	assert.Equal(t, 320.0, turn.Scenario.StartX)

	accel, err := simulation.Run(ctx, simulation.Scenario{
		Kind: constants.KindAccelerate, WishX: 100, Params: movement.DefaultParams(),
	}, simulation.Options{})
	require.NoError(t, err)
	assert.Equal(t, 4, accel.Ticks)
	assert.Equal(t, 100.0, accel.Scenario.WishX)
}

func TestRun_UnknownKind(t *testing.T) {
	_, err := simulation.Run(context.Background(), simulation.Scenario{Kind: "hop"}, simulation.Options{})
	assert.Error(t, err)
}

func TestMultiObserver(t *testing.T) {
	a, b := &simulation.Recorder{}, &simulation.Recorder{}
	obs := simulation.MultiObserver{a, nil, b}

	simulation.Accelerate(context.Background(), movement.NewState(0, 0),
		vecmath.Vec3{100, 0, 0}, movement.DefaultParams(), simulation.Options{Observer: obs})

	assert.Len(t, a.Ticks, 4)
	assert.Equal(t, a.Ticks, b.Ticks)
	assert.Equal(t, a.Snapshots, b.Snapshots)
}
