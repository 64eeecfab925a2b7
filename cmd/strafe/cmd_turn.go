package main

import (
	"github.com/nvandessel/strafe/internal/constants"
	"github.com/nvandessel/strafe/internal/movement"
	"github.com/nvandessel/strafe/internal/simulation"
	"github.com/spf13/cobra"
)

func newTurnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "turn <startx> <starty>",
		Short: "Simulate an optimal perpendicular air turn",
		Long: `Accelerate perpendicular to the current velocity with wish speed 320
until the horizontal speed reaches 1.096 times the starting speed.
A start velocity of zero runs no ticks.

With --accel 0 the speed never grows; combine it with --max-ticks.

Examples:
  strafe turn 320 0
  strafe turn 320 0 --ticks
  strafe turn 320 0 --frame-time 0.008 --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vals, err := parseFloats(args)
			if err != nil {
				return err
			}

			env, err := loadRunEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			p, opts, err := physicsFlags(cmd, env)
			if err != nil {
				return err
			}

			sc := simulation.Scenario{
				Kind:   constants.KindTurn,
				StartX: vals[0],
				StartY: vals[1],
				Params: p,
			}
			return executeScenario(cmd, env, sc, opts)
		},
	}

	addPhysicsFlags(cmd)
	return cmd
}

// addPhysicsFlags registers the tuning flags shared by accel and turn.
func addPhysicsFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("accel", constants.DefaultAccel, "Acceleration coefficient (default from config)")
	cmd.Flags().Float64("frame-time", constants.DefaultFrameTime, "Tick length in seconds (default from config)")
	cmd.Flags().Int("max-ticks", 0, "Stop after this many ticks, 0 for no limit (default from config)")
	cmd.Flags().Bool("record", false, "Store the run in the history database")
}

// physicsFlags merges explicitly set flags over the loaded config.
func physicsFlags(cmd *cobra.Command, env *runEnv) (movement.Params, runOptions, error) {
	physics := env.cfg.Physics
	opts := runOptions{
		MaxTicks: physics.MaxTicks,
		Record:   env.cfg.History.Record,
	}

	if cmd.Flags().Changed("accel") {
		physics.Accel, _ = cmd.Flags().GetFloat64("accel")
	}
	if cmd.Flags().Changed("frame-time") {
		physics.FrameTime, _ = cmd.Flags().GetFloat64("frame-time")
	}
	if cmd.Flags().Changed("max-ticks") {
		physics.MaxTicks, _ = cmd.Flags().GetInt("max-ticks")
		opts.MaxTicks = physics.MaxTicks
	}
	if cmd.Flags().Changed("record") {
		opts.Record, _ = cmd.Flags().GetBool("record")
	}

	check := *env.cfg
	check.Physics = physics
	if err := check.Validate(); err != nil {
		return movement.Params{}, runOptions{}, err
	}

	return physics.Params(), opts, nil
}
