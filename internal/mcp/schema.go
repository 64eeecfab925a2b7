package mcp

import (
	"time"

	"github.com/nvandessel/strafe/internal/store"
)

// StrafeAccelerateInput defines the input for the strafe_accelerate tool.
type StrafeAccelerateInput struct {
	StartX float64 `json:"start_x" jsonschema:"Initial velocity x component"`
	StartY float64 `json:"start_y" jsonschema:"Initial velocity y component"`
	WishX  float64 `json:"wish_x" jsonschema:"Wish vector x component; the wish vector length is the wish speed"`
	WishY  float64 `json:"wish_y" jsonschema:"Wish vector y component"`

	Accel        *float64 `json:"accel,omitempty" jsonschema:"Acceleration coefficient (default from config, 10)"`
	FrameTime    *float64 `json:"frame_time,omitempty" jsonschema:"Tick length in seconds (default from config, 0.012)"`
	MaxTicks     int      `json:"max_ticks,omitempty" jsonschema:"Stop after this many ticks (default and upper bound 100000)"`
	Record       bool     `json:"record,omitempty" jsonschema:"Store the run in the history database"`
	IncludeTicks bool     `json:"include_ticks,omitempty" jsonschema:"Return per-tick samples (at most 1000)"`
}

// StrafeTurnInput defines the input for the strafe_turn tool.
type StrafeTurnInput struct {
	StartX float64 `json:"start_x" jsonschema:"Initial velocity x component"`
	StartY float64 `json:"start_y" jsonschema:"Initial velocity y component"`

	Accel        *float64 `json:"accel,omitempty" jsonschema:"Acceleration coefficient (default from config, 10)"`
	FrameTime    *float64 `json:"frame_time,omitempty" jsonschema:"Tick length in seconds (default from config, 0.012)"`
	MaxTicks     int      `json:"max_ticks,omitempty" jsonschema:"Stop after this many ticks (default and upper bound 100000)"`
	Record       bool     `json:"record,omitempty" jsonschema:"Store the run in the history database"`
	IncludeTicks bool     `json:"include_ticks,omitempty" jsonschema:"Return per-tick samples (at most 1000)"`
}

// StrafeRunOutput defines the output of the strafe_accelerate and strafe_turn tools.
type StrafeRunOutput struct {
	Kind      string  `json:"kind" jsonschema:"Scenario kind: accelerate or turn"`
	Ticks     int     `json:"ticks" jsonschema:"Number of ticks simulated"`
	Converged bool    `json:"converged" jsonschema:"Whether the loop reached its own stop criterion"`
	Stopped   string  `json:"stopped,omitempty" jsonschema:"Why the run ended early: max_ticks or canceled"`
	FinalX    float64 `json:"final_x" jsonschema:"Final velocity x component"`
	FinalY    float64 `json:"final_y" jsonschema:"Final velocity y component"`
	Speed     float64 `json:"speed" jsonschema:"Final horizontal speed"`

	InitialSpeed float64 `json:"initial_speed,omitempty" jsonschema:"Turn only: starting horizontal speed"`
	TargetSpeed  float64 `json:"target_speed,omitempty" jsonschema:"Turn only: speed at which the turn stops"`
	ReportSpeed  float64 `json:"report_speed,omitempty" jsonschema:"Turn only: 1.3 times the initial speed, informational"`

	RunID   string         `json:"run_id,omitempty" jsonschema:"History ID when the run was recorded"`
	Samples []store.Sample `json:"samples,omitempty" jsonschema:"Per-tick samples when include_ticks is set"`
	Message string         `json:"message" jsonschema:"Human-readable result message"`
}

// StrafeHistoryInput defines the input for the strafe_history tool.
type StrafeHistoryInput struct {
	ID    string `json:"id,omitempty" jsonschema:"Return this run with its samples instead of listing"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of runs to list (default 20)"`
}

// StrafeHistoryOutput defines the output for the strafe_history tool.
type StrafeHistoryOutput struct {
	Runs  []HistoryRun `json:"runs,omitempty" jsonschema:"Recorded runs, most recent first"`
	Run   *HistoryRun  `json:"run,omitempty" jsonschema:"The requested run with samples"`
	Count int          `json:"count" jsonschema:"Number of runs returned"`
}

// HistoryRun is a recorded run as returned by strafe_history.
type HistoryRun struct {
	ID          string         `json:"id"`
	CreatedAt   string         `json:"created_at"`
	Kind        string         `json:"kind"`
	StartX      float64        `json:"start_x"`
	StartY      float64        `json:"start_y"`
	WishX       float64        `json:"wish_x"`
	WishY       float64        `json:"wish_y"`
	Accel       float64        `json:"accel"`
	FrameTime   float64        `json:"frame_time"`
	Ticks       int            `json:"ticks"`
	Converged   bool           `json:"converged"`
	Stopped     string         `json:"stopped,omitempty"`
	FinalSpeed  float64        `json:"final_speed"`
	TargetSpeed float64        `json:"target_speed,omitempty"`
	Samples     []store.Sample `json:"samples,omitempty"`
}

func historyRunFromStore(r store.Run) HistoryRun {
	return HistoryRun{
		ID:          r.ID,
		CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339),
		Kind:        r.Kind,
		StartX:      r.StartX,
		StartY:      r.StartY,
		WishX:       r.WishX,
		WishY:       r.WishY,
		Accel:       r.Accel,
		FrameTime:   r.FrameTime,
		Ticks:       r.Ticks,
		Converged:   r.Converged,
		Stopped:     r.Stopped,
		FinalSpeed:  r.FinalSpeed,
		TargetSpeed: r.TargetSpeed,
		Samples:     r.Samples,
	}
}
