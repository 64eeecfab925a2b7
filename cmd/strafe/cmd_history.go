package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nvandessel/strafe/internal/backup"
	"github.com/nvandessel/strafe/internal/config"
	"github.com/nvandessel/strafe/internal/constants"
	"github.com/nvandessel/strafe/internal/store"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded runs",
		Long: `List, show, clear, back up and restore runs stored in the history database.

Runs are recorded with --record or history.record: true in
~/.strafe/config.yaml.

Examples:
  strafe history list
  strafe history show run-1718000000000000000 --ticks
  strafe history clear --force
  strafe history backup --keep 5
  strafe history restore ~/.strafe/backups/strafe-history-20260301-120000.000000000.json.gz`,
	}

	cmd.AddCommand(
		newHistoryListCmd(),
		newHistoryShowCmd(),
		newHistoryClearCmd(),
		newHistoryBackupCmd(),
		newHistoryRestoreCmd(),
	)

	return cmd
}

func newHistoryListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			limit, _ := cmd.Flags().GetInt("limit")
			out := cmd.OutOrStdout()

			hs, err := openHistoryFromConfig()
			if err != nil {
				return err
			}
			defer hs.Close()

			runs, err := hs.ListRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			if jsonOut {
				if runs == nil {
					runs = []store.Run{}
				}
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"runs":  runs,
					"count": len(runs),
					"path":  hs.Path(),
				})
			}

			if len(runs) == 0 {
				fmt.Fprintf(out, "No runs recorded in %s\n", hs.Path())
				return nil
			}

			fmt.Fprintf(out, "Runs in %s:\n", hs.Path())
			for _, r := range runs {
				status := "converged"
				if !r.Converged {
					status = "stopped: " + r.Stopped
				}
				fmt.Fprintf(out, "  %s  %s  %-10s start (%g, %g)  %d ticks  speed %f  %s\n",
					r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Kind,
					r.StartX, r.StartY, r.Ticks, r.FinalSpeed, status)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", constants.DefaultHistoryLimit, "Maximum number of runs to list (0 for all)")
	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run (--ticks adds its per-tick samples)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			showTicks, _ := cmd.Flags().GetBool("ticks")
			out := cmd.OutOrStdout()

			hs, err := openHistoryFromConfig()
			if err != nil {
				return err
			}
			defer hs.Close()

			run, err := hs.GetRun(cmd.Context(), args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("run not found: %s", args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to get run: %w", err)
			}

			if jsonOut {
				if !showTicks {
					run.Samples = nil
				}
				return json.NewEncoder(out).Encode(run)
			}

			fmt.Fprintf(out, "Run %s (%s)\n", run.ID, run.Kind)
			fmt.Fprintf(out, "  recorded:   %s\n", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "  start:      %f %f\n", run.StartX, run.StartY)
			if run.Kind == constants.KindAccelerate.String() {
				fmt.Fprintf(out, "  wish:       %f %f\n", run.WishX, run.WishY)
			}
			fmt.Fprintf(out, "  accel:      %g\n", run.Accel)
			fmt.Fprintf(out, "  frame time: %g\n", run.FrameTime)
			if run.MaxTicks > 0 {
				fmt.Fprintf(out, "  max ticks:  %d\n", run.MaxTicks)
			}
			fmt.Fprintf(out, "  final:      %f %f (%f)\n", run.FinalX, run.FinalY, run.FinalSpeed)
			if run.TargetSpeed > 0 {
				fmt.Fprintf(out, "  target:     %f\n", run.TargetSpeed)
			}
			fmt.Fprintf(out, "  iterations: %d\n", run.Ticks)
			if !run.Converged {
				fmt.Fprintf(out, "  stopped:    %s\n", run.Stopped)
			}

			if showTicks {
				fmt.Fprintln(out)
				for _, sm := range run.Samples {
					fmt.Fprintf(out, "  tick %d: %f %f (%f) current %f add %f accel %f diff %f\n",
						sm.Tick, sm.VX, sm.VY, sm.Speed, sm.CurrentSpeed, sm.AddSpeed, sm.AccelSpeed, sm.Diff)
				}
			}
			return nil
		},
	}

	return cmd
}

func newHistoryClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded run",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			force, _ := cmd.Flags().GetBool("force")
			out := cmd.OutOrStdout()

			if !force {
				return fmt.Errorf("refusing to clear history without --force")
			}

			hs, err := openHistoryFromConfig()
			if err != nil {
				return err
			}
			defer hs.Close()

			n, err := hs.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"status":  "cleared",
					"removed": n,
				})
			}
			fmt.Fprintf(out, "Removed %d runs\n", n)
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Confirm deleting all runs")
	return cmd
}

func newHistoryBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup [path]",
		Short: "Write every run to a compressed archive",
		Long: `Write every recorded run and its samples to a gzip-compressed archive
with a sha256 checksum. Without a path the archive goes to ~/.strafe/backups
and --keep / --max-age prune older archives there.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			keep, _ := cmd.Flags().GetInt("keep")
			maxAge, _ := cmd.Flags().GetString("max-age")
			out := cmd.OutOrStdout()

			var policy backup.AllPolicies
			if keep > 0 {
				policy = append(policy, &backup.CountPolicy{MaxCount: keep})
			}
			if maxAge != "" {
				d, err := backup.ParseDuration(maxAge)
				if err != nil {
					return fmt.Errorf("invalid --max-age: %w", err)
				}
				policy = append(policy, &backup.AgePolicy{MaxAge: d})
			}

			var dir, path string
			if len(args) == 1 {
				path = args[0]
			} else {
				var err error
				dir, err = backup.DefaultDir()
				if err != nil {
					return err
				}
				path = backup.GeneratePath(dir, time.Now())
			}

			hs, err := openHistoryFromConfig()
			if err != nil {
				return err
			}
			defer hs.Close()

			a, err := backup.Backup(cmd.Context(), hs, path)
			if err != nil {
				return err
			}

			var pruned []string
			if dir != "" && len(policy) > 0 {
				pruned, err = backup.ApplyRetention(dir, policy)
				if err != nil {
					return fmt.Errorf("failed to apply retention: %w", err)
				}
			}

			if jsonOut {
				if pruned == nil {
					pruned = []string{}
				}
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"path":    path,
					"runs":    len(a.Runs),
					"samples": a.SampleCount(),
					"pruned":  pruned,
				})
			}
			fmt.Fprintf(out, "Backed up %d runs (%d samples) to %s\n", len(a.Runs), a.SampleCount(), path)
			for _, p := range pruned {
				fmt.Fprintf(out, "  pruned %s\n", p)
			}
			return nil
		},
	}

	cmd.Flags().Int("keep", 0, "Keep only the N newest archives in the default directory (0 keeps all)")
	cmd.Flags().String("max-age", "", "Remove archives in the default directory older than this (e.g. 30d, 2w, 720h)")
	return cmd
}

func newHistoryRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <path>",
		Short: "Load runs from an archive",
		Long: `Load runs from an archive written by 'strafe history backup'.
Runs whose ID already exists are skipped unless --replace clears the
history first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			replace, _ := cmd.Flags().GetBool("replace")
			out := cmd.OutOrStdout()

			mode := backup.RestoreMerge
			if replace {
				mode = backup.RestoreReplace
			}

			hs, err := openHistoryFromConfig()
			if err != nil {
				return err
			}
			defer hs.Close()

			result, err := backup.Restore(cmd.Context(), hs, args[0], mode)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(out).Encode(result)
			}
			fmt.Fprintf(out, "Restored %d runs, skipped %d\n", result.RunsRestored, result.RunsSkipped)
			if result.RunsCleared > 0 {
				fmt.Fprintf(out, "  cleared %d existing runs first\n", result.RunsCleared)
			}
			return nil
		},
	}

	cmd.Flags().Bool("replace", false, "Clear the history before restoring")
	return cmd
}

func openHistoryFromConfig() (*store.SQLiteHistoryStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return openHistoryStore(cfg)
}
