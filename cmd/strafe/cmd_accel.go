package main

import (
	"fmt"
	"strconv"

	"github.com/nvandessel/strafe/internal/constants"
	"github.com/nvandessel/strafe/internal/simulation"
	"github.com/spf13/cobra"
)

func newAccelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accel <startx> <starty> <wishx> <wishy>",
		Short: "Accelerate toward a wish vector until the velocity converges",
		Long: `Accelerate from the start velocity toward the wish vector.

The wish vector is normalized every tick and its length is the wish speed.
The run ends once two consecutive velocities differ by less than 0.01
(horizontal Manhattan distance). Components may be fractional.

Examples:
  strafe accel 0 0 100 0
  strafe accel 0 0 1 0 --frame-time 0.008 --record
  strafe accel -- -30 0 100 0`,
		Args: cobra.ExactArgs(4),
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
				Kind:   constants.KindAccelerate,
				StartX: vals[0],
				StartY: vals[1],
				WishX:  vals[2],
				WishY:  vals[3],
				Params: p,
			}
			return executeScenario(cmd, env, sc, opts)
		},
	}

	addPhysicsFlags(cmd)
	return cmd
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", a, err)
		}
		out[i] = f
	}
	return out, nil
}
