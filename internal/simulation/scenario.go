package simulation

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/nvandessel/strafe/internal/constants"
	"github.com/nvandessel/strafe/internal/movement"
	"github.com/nvandessel/strafe/internal/vecmath"
)

// Usage is printed when the positional arguments match no scenario.
const Usage = "usage: strafe startx starty [wishx wishy frametime]"

// ErrUsage is returned by ParseArgs for an unsupported argument count.
var ErrUsage = errors.New("wrong number of arguments")

// Stop reasons reported in Result.Stopped.
const (
	StopMaxTicks = "max_ticks"
	StopCanceled = "canceled"
)

// Scenario fixes every input of one run.
type Scenario struct {
	Kind   constants.ScenarioKind `json:"kind"`
	StartX float64                `json:"start_x"`
	StartY float64                `json:"start_y"`
	// WishX and WishY are only used by KindAccelerate. Their length is the
	// wish speed.
	WishX  float64         `json:"wish_x,omitempty"`
	WishY  float64         `json:"wish_y,omitempty"`
	Params movement.Params `json:"params"`
}

// Start returns the initial motion state of the scenario.
func (sc Scenario) Start() movement.State {
	return movement.NewState(sc.StartX, sc.StartY)
}

// Wish returns the (unnormalized) wish vector of an accelerate scenario.
func (sc Scenario) Wish() vecmath.Vec3 {
	return vecmath.Horizontal(sc.WishX, sc.WishY)
}

// Result is the outcome of a run.
type Result struct {
	Scenario Scenario       `json:"scenario"`
	Initial  movement.State `json:"initial"`
	Final    movement.State `json:"final"`
	Speed    float64        `json:"speed"`
	Ticks    int            `json:"ticks"`

	// Converged is true when the loop's own stop criterion was met.
	Converged bool `json:"converged"`
	// Stopped names why a run ended early (StopMaxTicks, StopCanceled).
	Stopped string `json:"stopped,omitempty"`

	// Turn only.
	InitialSpeed float64 `json:"initial_speed,omitempty"`
	TargetSpeed  float64 `json:"target_speed,omitempty"`
	ReportSpeed  float64 `json:"report_speed,omitempty"`
}

// ParseArgs maps positional arguments to a scenario by count:
//
//	startx starty                          turn
//	startx starty wishx wishy frametime    accelerate
//
// Start and wish components are integers, frametime is a float. Any other
// count returns ErrUsage. Fields not given on the command line come from p.
func ParseArgs(args []string, p movement.Params) (Scenario, error) {
	switch len(args) {
	case 2:
		ints, err := parseInts(args)
		if err != nil {
			return Scenario{}, err
		}
		return Scenario{
			Kind:   constants.KindTurn,
			StartX: float64(ints[0]),
			StartY: float64(ints[1]),
			Params: p,
		}, nil
	case 5:
		ints, err := parseInts(args[:4])
		if err != nil {
			return Scenario{}, err
		}
		ft, err := strconv.ParseFloat(args[4], 64)
		if err != nil {
			return Scenario{}, fmt.Errorf("invalid frametime %q: %w", args[4], err)
		}
		p.FrameTime = ft
		return Scenario{
			Kind:   constants.KindAccelerate,
			StartX: float64(ints[0]),
			StartY: float64(ints[1]),
			WishX:  float64(ints[2]),
			WishY:  float64(ints[3]),
			Params: p,
		}, nil
	default:
		return Scenario{}, fmt.Errorf("%w: got %d, want 2 or 5", ErrUsage, len(args))
	}
}

func parseInts(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid integer argument %q: %w", a, err)
		}
		out[i] = n
	}
	return out, nil
}
