package mcp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/strafe/internal/constants"
	"github.com/nvandessel/strafe/internal/logging"
	"github.com/nvandessel/strafe/internal/movement"
	"github.com/nvandessel/strafe/internal/ratelimit"
	"github.com/nvandessel/strafe/internal/simulation"
	"github.com/nvandessel/strafe/internal/store"
	"gopkg.in/yaml.v3"
)

const (
	configResourceURI  = "strafe://config"
	historyResourceURI = "strafe://history/recent"
)

// registerTools registers all strafe MCP tools with the server.
func (s *Server) registerTools() error {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "strafe_accelerate",
		Description: "Accelerate from a start velocity toward a wish vector until the velocity converges",
	}, s.handleStrafeAccelerate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "strafe_turn",
		Description: "Simulate an optimal perpendicular air turn until speed grows by a factor of 1.096",
	}, s.handleStrafeTurn)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "strafe_history",
		Description: "List recorded runs, or fetch one run with its per-tick samples",
	}, s.handleStrafeHistory)

	return nil
}

// registerResources registers MCP resources for auto-loading into context.
func (s *Server) registerResources() error {
	s.server.AddResource(&sdk.Resource{
		URI:         configResourceURI,
		Name:        "strafe-config",
		Description: "Effective physics, logging and history settings used by the strafe tools.",
		MIMEType:    "application/yaml",
	}, s.handleConfigResource)

	s.server.AddResource(&sdk.Resource{
		URI:         historyResourceURI,
		Name:        "strafe-history-recent",
		Description: "The most recent recorded simulation runs.",
		MIMEType:    "text/markdown",
	}, s.handleHistoryResource)

	return nil
}

// handleConfigResource returns the effective configuration as YAML.
func (s *Server) handleConfigResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	data, err := yaml.Marshal(s.settings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      configResourceURI,
				MIMEType: "application/yaml",
				Text:     string(data),
			},
		},
	}, nil
}

// handleHistoryResource returns the latest runs as a markdown table.
func (s *Server) handleHistoryResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	runs, err := s.store.ListRuns(ctx, constants.DefaultHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# Recent strafe runs\n\n")
	if len(runs) == 0 {
		sb.WriteString("No runs recorded yet. Pass `record: true` to `strafe_accelerate` or `strafe_turn`.\n")
	} else {
		sb.WriteString("| ID | Kind | Start | Ticks | Final speed | Converged |\n")
		sb.WriteString("|---|---|---|---|---|---|\n")
		for _, r := range runs {
			sb.WriteString(fmt.Sprintf("| %s | %s | (%g, %g) | %d | %.4f | %t |\n",
				r.ID, r.Kind, r.StartX, r.StartY, r.Ticks, r.FinalSpeed, r.Converged))
		}
	}

	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      historyResourceURI,
				MIMEType: "text/markdown",
				Text:     sb.String(),
			},
		},
	}, nil
}

// handleStrafeAccelerate implements the strafe_accelerate tool.
func (s *Server) handleStrafeAccelerate(ctx context.Context, req *sdk.CallToolRequest, args StrafeAccelerateInput) (_ *sdk.CallToolResult, _ StrafeRunOutput, retErr error) {
	start := time.Now()
	var runID string
	defer func() {
		s.auditTool("strafe_accelerate", start, retErr, sanitizeToolParams(map[string]interface{}{
			"start_x": args.StartX, "start_y": args.StartY,
			"wish_x": args.WishX, "wish_y": args.WishY,
			"max_ticks": args.MaxTicks, "record": args.Record,
		}), runID)
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "strafe_accelerate"); err != nil {
		return nil, StrafeRunOutput{}, err
	}

	if err := checkFinite(args.StartX, args.StartY, args.WishX, args.WishY); err != nil {
		return nil, StrafeRunOutput{}, err
	}
	p, err := s.params(args.Accel, args.FrameTime)
	if err != nil {
		return nil, StrafeRunOutput{}, err
	}

	sc := simulation.Scenario{
		Kind:   constants.KindAccelerate,
		StartX: args.StartX,
		StartY: args.StartY,
		WishX:  args.WishX,
		WishY:  args.WishY,
		Params: p,
	}
	out, err := s.runScenario(ctx, "strafe_accelerate", sc, args.MaxTicks, args.Record, args.IncludeTicks)
	runID = out.RunID
	if err != nil {
		return nil, StrafeRunOutput{}, err
	}
	return nil, out, nil
}

// handleStrafeTurn implements the strafe_turn tool.
func (s *Server) handleStrafeTurn(ctx context.Context, req *sdk.CallToolRequest, args StrafeTurnInput) (_ *sdk.CallToolResult, _ StrafeRunOutput, retErr error) {
	start := time.Now()
	var runID string
	defer func() {
		s.auditTool("strafe_turn", start, retErr, sanitizeToolParams(map[string]interface{}{
			"start_x": args.StartX, "start_y": args.StartY,
			"max_ticks": args.MaxTicks, "record": args.Record,
		}), runID)
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "strafe_turn"); err != nil {
		return nil, StrafeRunOutput{}, err
	}

	if err := checkFinite(args.StartX, args.StartY); err != nil {
		return nil, StrafeRunOutput{}, err
	}
	p, err := s.params(args.Accel, args.FrameTime)
	if err != nil {
		return nil, StrafeRunOutput{}, err
	}

	sc := simulation.Scenario{
		Kind:   constants.KindTurn,
		StartX: args.StartX,
		StartY: args.StartY,
		Params: p,
	}
	out, err := s.runScenario(ctx, "strafe_turn", sc, args.MaxTicks, args.Record, args.IncludeTicks)
	runID = out.RunID
	if err != nil {
		return nil, StrafeRunOutput{}, err
	}
	return nil, out, nil
}

// handleStrafeHistory implements the strafe_history tool.
func (s *Server) handleStrafeHistory(ctx context.Context, req *sdk.CallToolRequest, args StrafeHistoryInput) (_ *sdk.CallToolResult, _ StrafeHistoryOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("strafe_history", start, retErr, sanitizeToolParams(map[string]interface{}{
			"id": args.ID, "limit": args.Limit,
		}), args.ID)
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "strafe_history"); err != nil {
		return nil, StrafeHistoryOutput{}, err
	}

	if args.ID != "" {
		run, err := s.store.GetRun(ctx, args.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, StrafeHistoryOutput{}, fmt.Errorf("run not found: %s", args.ID)
			}
			return nil, StrafeHistoryOutput{}, fmt.Errorf("failed to get run: %w", err)
		}
		hr := historyRunFromStore(*run)
		return nil, StrafeHistoryOutput{Run: &hr, Count: 1}, nil
	}

	limit := args.Limit
	if limit <= 0 {
		limit = constants.DefaultHistoryLimit
	}
	runs, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, StrafeHistoryOutput{}, fmt.Errorf("failed to list runs: %w", err)
	}

	items := make([]HistoryRun, 0, len(runs))
	for _, r := range runs {
		items = append(items, historyRunFromStore(r))
	}
	return nil, StrafeHistoryOutput{Runs: items, Count: len(items)}, nil
}

// params merges per-call overrides into the configured physics.
func (s *Server) params(accel, frameTime *float64) (movement.Params, error) {
	p := s.settings.Physics.Params()
	if accel != nil {
		p.Accel = *accel
	}
	if frameTime != nil {
		p.FrameTime = *frameTime
	}
	if err := checkFinite(p.Accel, p.FrameTime); err != nil {
		return movement.Params{}, err
	}
	if p.Accel < 0 {
		return movement.Params{}, fmt.Errorf("accel must be >= 0, got %g", p.Accel)
	}
	if p.FrameTime <= 0 {
		return movement.Params{}, fmt.Errorf("frame_time must be > 0, got %g", p.FrameTime)
	}
	return p, nil
}

// tickCap picks the tick limit for a tool call. Tool calls are never
// unbounded: the result is always in [1, MCPMaxTicks].
func (s *Server) tickCap(requested int) int {
	limit := requested
	if limit <= 0 {
		limit = s.settings.Physics.MaxTicks
	}
	if limit <= 0 || limit > constants.MCPMaxTicks {
		limit = constants.MCPMaxTicks
	}
	return limit
}

// runScenario runs sc, optionally records it, and builds the tool output.
func (s *Server) runScenario(ctx context.Context, tool string, sc simulation.Scenario, maxTicks int, record, includeTicks bool) (StrafeRunOutput, error) {
	rec := &simulation.Recorder{}
	opts := simulation.Options{
		Observer: simulation.MultiObserver{rec, logging.NewObserver(s.logger, s.trace, tool)},
		MaxTicks: s.tickCap(maxTicks),
	}

	res, err := simulation.Run(ctx, sc, opts)
	if err != nil {
		return StrafeRunOutput{}, fmt.Errorf("failed to run %s: %w", sc.Kind, err)
	}

	out := StrafeRunOutput{
		Kind:         sc.Kind.String(),
		Ticks:        res.Ticks,
		Converged:    res.Converged,
		Stopped:      res.Stopped,
		FinalX:       res.Final.Velocity[0],
		FinalY:       res.Final.Velocity[1],
		Speed:        res.Speed,
		InitialSpeed: res.InitialSpeed,
		TargetSpeed:  res.TargetSpeed,
		ReportSpeed:  res.ReportSpeed,
	}

	run := store.RunFromResult(res, rec.Ticks, opts.MaxTicks)
	if includeTicks {
		out.Samples = run.Samples
		if len(out.Samples) > constants.MCPMaxSamples {
			out.Samples = out.Samples[:constants.MCPMaxSamples]
		}
	}

	if record || s.settings.History.Record {
		id, err := s.store.RecordRun(ctx, run)
		if err != nil {
			return StrafeRunOutput{}, fmt.Errorf("failed to record run: %w", err)
		}
		out.RunID = id
	}

	out.Message = resultMessage(res)
	s.logger.Info("run complete",
		"tool", tool,
		"ticks", res.Ticks,
		"speed", res.Speed,
		"converged", res.Converged,
		"run_id", out.RunID,
	)

	return out, nil
}

func resultMessage(res simulation.Result) string {
	msg := fmt.Sprintf("%s: %d ticks, final velocity (%g, %g), speed %g",
		res.Scenario.Kind, res.Ticks, res.Final.Velocity[0], res.Final.Velocity[1], res.Speed)
	if res.Stopped != "" {
		msg += fmt.Sprintf(" (stopped: %s)", res.Stopped)
	}
	return msg
}

func checkFinite(vals ...float64) error {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite input %v", v)
		}
	}
	return nil
}
