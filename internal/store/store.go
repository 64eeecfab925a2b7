// Package store defines the HistoryStore interface for recording simulation
// runs and their per-tick samples.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a run ID does not exist.
var ErrNotFound = errors.New("run not found")

// Run is one recorded simulation.
type Run struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Kind      string    `json:"kind"` // "accelerate", "turn"

	StartX    float64 `json:"start_x"`
	StartY    float64 `json:"start_y"`
	WishX     float64 `json:"wish_x"`
	WishY     float64 `json:"wish_y"`
	Accel     float64 `json:"accel"`
	FrameTime float64 `json:"frame_time"`
	MaxTicks  int     `json:"max_ticks"`

	Ticks       int     `json:"ticks"`
	Converged   bool    `json:"converged"`
	Stopped     string  `json:"stopped,omitempty"`
	FinalX      float64 `json:"final_x"`
	FinalY      float64 `json:"final_y"`
	FinalSpeed  float64 `json:"final_speed"`
	TargetSpeed float64 `json:"target_speed,omitempty"`

	// Samples is only populated by GetRun.
	Samples []Sample `json:"samples,omitempty"`
}

// Sample is the recorded state after one tick.
type Sample struct {
	Tick         int     `json:"tick"`
	VX           float64 `json:"vx"`
	VY           float64 `json:"vy"`
	Speed        float64 `json:"speed"`
	Diff         float64 `json:"diff"`
	CurrentSpeed float64 `json:"current_speed"`
	AddSpeed     float64 `json:"add_speed"`
	AccelSpeed   float64 `json:"accel_speed"`
	Applied      bool    `json:"applied"`
}

// HistoryStore defines the interface for storing and querying run history.
type HistoryStore interface {
	// RecordRun stores the run and its samples and returns its ID.
	// An empty run.ID is assigned; a zero CreatedAt is set to now.
	RecordRun(ctx context.Context, run Run) (string, error)

	// ListRuns returns the most recent runs first, without samples.
	// limit <= 0 returns every run.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// GetRun returns a run with its samples, or ErrNotFound.
	GetRun(ctx context.Context, id string) (*Run, error)

	// Clear deletes every run and returns how many were removed.
	Clear(ctx context.Context) (int, error)

	Close() error
}
