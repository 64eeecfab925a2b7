package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nvandessel/strafe/internal/config"
	"github.com/nvandessel/strafe/internal/constants"
	"github.com/nvandessel/strafe/internal/logging"
	"github.com/nvandessel/strafe/internal/movement"
	"github.com/nvandessel/strafe/internal/simulation"
	"github.com/nvandessel/strafe/internal/store"
	"github.com/spf13/cobra"
)

// runEnv carries what every simulating command needs.
type runEnv struct {
	cfg    *config.StrafeConfig
	logger *slog.Logger
	trace  *logging.TraceLogger
}

// loadRunEnv loads the config and applies the global --log-level and
// --trace-file flags on top of it.
func loadRunEnv(cmd *cobra.Command) (*runEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if traceFile, _ := cmd.Flags().GetString("trace-file"); traceFile != "" {
		cfg.Logging.TraceFile = traceFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	env := &runEnv{
		cfg:    cfg,
		logger: logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()),
	}
	env.trace, err = logging.NewTraceLogger(cfg.Logging.TraceFile)
	if err != nil {
		env.logger.Warn("tracing disabled", "path", cfg.Logging.TraceFile, "error", err)
	}
	return env, nil
}

func (e *runEnv) Close() {
	e.trace.Close()
}

type runOptions struct {
	MaxTicks int
	Record   bool
}

// runOutput is the --json shape of a finished run.
type runOutput struct {
	simulation.Result
	RunID string `json:"run_id,omitempty"`
}

// executeScenario runs sc, records it when asked, and prints the outcome.
func executeScenario(cmd *cobra.Command, env *runEnv, sc simulation.Scenario, opts runOptions) error {
	jsonOut, _ := cmd.Flags().GetBool("json")
	showTicks, _ := cmd.Flags().GetBool("ticks")
	out := cmd.OutOrStdout()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	observers, rec := runObservers(env, sc, out, !jsonOut, showTicks, opts.Record)

	res, err := simulation.Run(ctx, sc, simulation.Options{
		Observer: observers,
		MaxTicks: opts.MaxTicks,
	})
	if err != nil {
		return err
	}
	if res.Stopped != "" {
		env.logger.Warn("run stopped before its stop criterion", "reason", res.Stopped, "ticks", res.Ticks)
	}

	var runID string
	if opts.Record {
		runID, err = recordRun(ctx, env, res, rec.Ticks, opts.MaxTicks)
		if err != nil {
			return err
		}
		env.logger.Info("run recorded", "id", runID)
	}

	if jsonOut {
		return json.NewEncoder(out).Encode(runOutput{Result: res, RunID: runID})
	}

	fmt.Fprintf(out, "iterations: %d\n", res.Ticks)
	if runID != "" {
		fmt.Fprintf(out, "recorded: %s\n", runID)
	}
	return nil
}

// runObservers builds the observer chain for one run. The returned Recorder
// is nil unless record is set, so unrecorded runs keep no ticks in memory.
func runObservers(env *runEnv, sc simulation.Scenario, out io.Writer, text, showTicks, record bool) (simulation.MultiObserver, *simulation.Recorder) {
	observers := simulation.MultiObserver{logging.NewObserver(env.logger, env.trace, sc.Kind.String())}
	if text {
		observers = append(observers, &textObserver{w: out, showTicks: showTicks})
	}

	var rec *simulation.Recorder
	if record {
		rec = &simulation.Recorder{}
		observers = append(observers, rec)
	}
	return observers, rec
}

func recordRun(ctx context.Context, env *runEnv, res simulation.Result, ticks []simulation.Tick, maxTicks int) (string, error) {
	hs, err := openHistoryStore(env.cfg)
	if err != nil {
		return "", err
	}
	defer hs.Close()

	id, err := hs.RecordRun(context.WithoutCancel(ctx), store.RunFromResult(res, ticks, maxTicks))
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return id, nil
}

func openHistoryStore(cfg *config.StrafeConfig) (*store.SQLiteHistoryStore, error) {
	path, err := store.ResolveHistoryPath(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve history path: %w", err)
	}
	hs, err := store.NewSQLiteHistoryStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	return hs, nil
}

// signalContext cancels on SIGINT/SIGTERM so an unbounded run can be stopped
// and still report how far it got.
func signalContext(parent context.Context) (context.Context, func()) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-done:
		}
	}()

	return ctx, func() {
		close(done)
		stopSignals(sigChan)
		cancel()
	}
}

// textObserver prints labelled snapshots as "label: x y (speed)" and, when
// showTicks is set, every tick.
type textObserver struct {
	w         io.Writer
	showTicks bool
}

func (o *textObserver) Snapshot(label string, s movement.State) {
	fmt.Fprintf(o.w, "%s: %f %f (%f)\n", label, s.Velocity[0], s.Velocity[1], s.Speed())
	if label == simulation.LabelBeforeTurn {
		fmt.Fprintf(o.w, "initspeed = %f\n", s.Speed()*constants.TurnReportFactor)
	}
}

func (o *textObserver) Tick(t simulation.Tick) {
	if !o.showTicks {
		return
	}
	fmt.Fprintf(o.w, "tick %d: %f %f (%f) diff: %f\n",
		t.Index, t.State.Velocity[0], t.State.Velocity[1], t.Speed, t.Diff)
}
