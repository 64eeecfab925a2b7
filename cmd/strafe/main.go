package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nvandessel/strafe/internal/movement"
	"github.com/nvandessel/strafe/internal/simulation"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(separateNegativeArgs(rootCmd, os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "strafe startx starty [wishx wishy frametime]",
		Short: "Quake-style air acceleration simulator",
		Long: `strafe replays the air acceleration rule tick by tick.

With two arguments it simulates an optimal perpendicular turn from the
given velocity until the speed has grown by a factor of 1.096. With five
arguments it accelerates from the start velocity toward the wish vector
until the velocity stops changing.

Start and wish components are integers, frametime is in seconds.

  strafe 320 0                 # turn
  strafe 0 0 100 0 0.012       # accelerate
  strafe -320 0                # turn from a negative x velocity`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runPositional,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug or trace (default from config)")
	rootCmd.PersistentFlags().String("trace-file", "", "Append every tick as JSONL to this file")
	rootCmd.PersistentFlags().Bool("ticks", false, "Print the state after every tick")

	rootCmd.AddCommand(
		newAccelCmd(),
		newTurnCmd(),
		newHistoryCmd(),
		newConfigCmd(),
		newMCPServerCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// runPositional dispatches on the number of positional arguments. An
// unsupported count prints the usage line and runs nothing.
func runPositional(cmd *cobra.Command, args []string) error {
	// The count is checked before the config so usage never depends on it.
	if _, err := simulation.ParseArgs(args, movement.DefaultParams()); errors.Is(err, simulation.ErrUsage) {
		fmt.Fprintln(cmd.OutOrStdout(), simulation.Usage)
		return nil
	}

	env, err := loadRunEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	sc, err := simulation.ParseArgs(args, env.cfg.Physics.Params())
	if err != nil {
		return err
	}

	return executeScenario(cmd, env, sc, runOptions{
		MaxTicks: env.cfg.Physics.MaxTicks,
		Record:   env.cfg.History.Record,
	})
}
