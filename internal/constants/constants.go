// Package constants provides named physics constants and defaults used throughout strafe.
// This centralizes the magic numbers of the acceleration model.
package constants

// Acceleration rule constants
const (
	// AirWishSpeedCap limits the wish speed used when comparing against the current
	// speed along the wish direction. The acceleration magnitude still uses the
	// uncapped wish speed.
	AirWishSpeedCap = 30.0

	// DefaultAccel is the default acceleration coefficient (sv_accel).
	DefaultAccel = 10.0

	// DefaultFrameTime is the default tick length in seconds.
	DefaultFrameTime = 0.012
)

// Convergence and turn constants
const (
	// ConvergenceThreshold is the horizontal Manhattan distance between two
	// consecutive velocities below which straight acceleration is considered done.
	ConvergenceThreshold = 0.01

	// TurnWishSpeed is the wish speed applied on every turn tick (max ground speed).
	TurnWishSpeed = 320.0

	// TurnGainFactor is the speed multiple at which the turn loop stops.
	TurnGainFactor = 1.096

	// TurnReportFactor is only reported alongside the initial speed; it does not
	// drive the loop.
	TurnReportFactor = 1.3
)

// History constants
const (
	// DefaultHistoryLimit is the number of runs listed when no limit is given.
	DefaultHistoryLimit = 20
)

// MCP server constants
const (
	// MCPMaxTicks bounds runs started through MCP tools. A turn with accel 0
	// never reaches its target, so tool calls are always capped.
	MCPMaxTicks = 100000

	// MCPMaxSamples is the largest number of per-tick samples a tool returns.
	MCPMaxSamples = 1000
)
