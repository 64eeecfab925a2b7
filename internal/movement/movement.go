// Package movement implements the air acceleration sub-step of Quake-style
// player movement.
//
// The rule is pure: it takes the current State and returns the next one
// together with a Step describing the speeds it computed. Callers that want
// per-tick diagnostics read them from the Step instead of having the rule
// print them.
package movement

import (
	"github.com/nvandessel/strafe/internal/constants"
	"github.com/nvandessel/strafe/internal/vecmath"
)

// State is the only value carried from one tick to the next.
type State struct {
	Velocity vecmath.Vec3 `json:"velocity"`
}

// NewState returns a state moving at (x, y) in the horizontal plane.
func NewState(x, y float64) State {
	return State{Velocity: vecmath.Horizontal(x, y)}
}

// Speed returns the horizontal speed of the state.
func (s State) Speed() float64 {
	return vecmath.HorizontalSpeed(s.Velocity)
}

// Params holds the tuning of the acceleration rule.
type Params struct {
	Accel     float64 // acceleration coefficient
	FrameTime float64 // tick length, seconds
}

// DefaultParams returns the stock tuning (accel 10, 12ms frames).
func DefaultParams() Params {
	return Params{
		Accel:     constants.DefaultAccel,
		FrameTime: constants.DefaultFrameTime,
	}
}

// Step records what one application of the rule computed.
type Step struct {
	CurrentSpeed float64 `json:"current_speed"`
	AddSpeed     float64 `json:"add_speed"`
	AccelSpeed   float64 `json:"accel_speed"`
	// Applied is false when AddSpeed <= 0 and the velocity was left alone.
	Applied bool `json:"applied"`
}

// AirAccelerate applies one tick of air acceleration toward wishDir.
//
// wishDir must already be a unit vector. The wish speed is capped at
// AirWishSpeedCap when deciding how much speed may be added, but the
// acceleration magnitude is computed from the uncapped wishSpeed.
func AirAccelerate(s State, wishDir vecmath.Vec3, wishSpeed float64, p Params) (State, Step) {
	capped := wishSpeed
	if capped > constants.AirWishSpeedCap {
		capped = constants.AirWishSpeedCap
	}

	var step Step
	step.CurrentSpeed = vecmath.Dot(s.Velocity, wishDir)
	step.AddSpeed = capped - step.CurrentSpeed
	if step.AddSpeed <= 0 {
		return s, step
	}

	step.AccelSpeed = p.Accel * wishSpeed * p.FrameTime
	if step.AccelSpeed > step.AddSpeed {
		step.AccelSpeed = step.AddSpeed
	}

	for i := range s.Velocity {
		s.Velocity[i] += step.AccelSpeed * wishDir[i]
	}
	step.Applied = true
	return s, step
}
