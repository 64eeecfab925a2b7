// Package simulation runs the two acceleration scenarios of strafe on top of
// the movement rule.
//
// Accelerate repeatedly applies the rule toward a fixed wish direction until
// two consecutive velocities differ by less than ConvergenceThreshold
// (horizontal Manhattan distance). Turn reorients the wish direction to the
// perpendicular of the current velocity every tick until the horizontal speed
// reaches TurnGainFactor times its initial value.
//
// Neither loop has an iteration bound of its own. Options.MaxTicks and
// context cancellation are the only ways to stop a run early; both are off
// for a zero Options and a background context.
//
// Usage:
//
//	sc, err := simulation.ParseArgs(os.Args[1:], movement.DefaultParams())
//	if errors.Is(err, simulation.ErrUsage) {
//	    fmt.Println(simulation.Usage)
//	    return
//	}
//	result, err := simulation.Run(ctx, sc, simulation.Options{Observer: obs})
package simulation
