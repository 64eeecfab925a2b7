package mcp

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/strafe/internal/config"
	"github.com/nvandessel/strafe/internal/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func setupTestServer(t *testing.T, settings *config.StrafeConfig) *Server {
	t.Helper()
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	server, err := NewServer(&Config{
		Name:        "test-server",
		Version:     "v1.0.0",
		Settings:    settings,
		HistoryPath: filepath.Join(tmpDir, "history.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { server.Close() })
	return server
}

func float64Ptr(v float64) *float64 { return &v }

func TestHandleStrafeAccelerate_ConvergesToCap(t *testing.T) {
	server := setupTestServer(t, nil)

	_, out, err := server.handleStrafeAccelerate(context.Background(), &sdk.CallToolRequest{}, StrafeAccelerateInput{
		WishX: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, "accelerate", out.Kind)
	assert.Equal(t, 4, out.Ticks)
	assert.True(t, out.Converged)
	assert.Empty(t, out.Stopped)
	assert.InDelta(t, 30.0, out.FinalX, 1e-9)
	assert.InDelta(t, 0.0, out.FinalY, 1e-12)
	assert.InDelta(t, 30.0, out.Speed, 1e-9)
	assert.Empty(t, out.RunID, "run should not be recorded by default")
	assert.Empty(t, out.Samples)
	assert.Contains(t, out.Message, "4 ticks")
}

func TestHandleStrafeAccelerate_IncludeTicks(t *testing.T) {
	server := setupTestServer(t, nil)

	_, out, err := server.handleStrafeAccelerate(context.Background(), nil, StrafeAccelerateInput{
		WishX:        100,
		IncludeTicks: true,
	})
	require.NoError(t, err)
	require.Len(t, out.Samples, 4)

	assert.InDelta(t, 12.0, out.Samples[0].VX, 1e-9)
	assert.InDelta(t, 12.0, out.Samples[0].AccelSpeed, 1e-9)
	assert.True(t, out.Samples[0].Applied)
	assert.False(t, out.Samples[3].Applied, "last tick is a no-op at the cap")
}

func TestHandleStrafeAccelerate_Overrides(t *testing.T) {
	server := setupTestServer(t, nil)

	// accel 20 doubles the per-tick gain: 24, then capped at 30.
	_, out, err := server.handleStrafeAccelerate(context.Background(), nil, StrafeAccelerateInput{
		WishX:        100,
		Accel:        float64Ptr(20),
		IncludeTicks: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.Samples)
	assert.InDelta(t, 24.0, out.Samples[0].VX, 1e-9)
	assert.InDelta(t, 30.0, out.Speed, 1e-9)
}

func TestHandleStrafeAccelerate_InvalidParams(t *testing.T) {
	server := setupTestServer(t, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		input StrafeAccelerateInput
		want  string
	}{
		{"zero frame time", StrafeAccelerateInput{WishX: 1, FrameTime: float64Ptr(0)}, "frame_time"},
		{"negative accel", StrafeAccelerateInput{WishX: 1, Accel: float64Ptr(-1)}, "accel"},
		{"nan start", StrafeAccelerateInput{StartX: math.NaN(), WishX: 1}, "non-finite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := server.handleStrafeAccelerate(ctx, nil, tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestHandleStrafeTurn(t *testing.T) {
	server := setupTestServer(t, nil)

	_, out, err := server.handleStrafeTurn(context.Background(), nil, StrafeTurnInput{StartX: 320})
	require.NoError(t, err)

	assert.Equal(t, "turn", out.Kind)
	assert.Equal(t, 23, out.Ticks)
	assert.True(t, out.Converged)
	assert.InDelta(t, 320.0, out.InitialSpeed, 1e-9)
	assert.InDelta(t, 350.72, out.TargetSpeed, 1e-9)
	assert.InDelta(t, 416.0, out.ReportSpeed, 1e-9)
	assert.GreaterOrEqual(t, out.Speed, out.TargetSpeed)
}

func TestHandleStrafeTurn_AtRest(t *testing.T) {
	server := setupTestServer(t, nil)

	_, out, err := server.handleStrafeTurn(context.Background(), nil, StrafeTurnInput{})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Ticks)
	assert.Equal(t, 0.0, out.Speed)
	assert.True(t, out.Converged)
}

func TestHandleStrafeTurn_AlwaysCapped(t *testing.T) {
	server := setupTestServer(t, nil)

	// accel 0 never gains speed; the call must still return.
	_, out, err := server.handleStrafeTurn(context.Background(), nil, StrafeTurnInput{
		StartX:   320,
		Accel:    float64Ptr(0),
		MaxTicks: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, 50, out.Ticks)
	assert.False(t, out.Converged)
	assert.Equal(t, "max_ticks", out.Stopped)
}

func TestTickCap(t *testing.T) {
	settings := config.Default()
	server := setupTestServer(t, settings)

	tests := []struct {
		name       string
		configured int
		requested  int
		want       int
	}{
		{"default is bounded", 0, 0, constants.MCPMaxTicks},
		{"request wins", 0, 10, 10},
		{"config used when no request", 500, 0, 500},
		{"request over bound", 0, constants.MCPMaxTicks + 1, constants.MCPMaxTicks},
		{"config over bound", constants.MCPMaxTicks * 2, 0, constants.MCPMaxTicks},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings.Physics.MaxTicks = tt.configured
			assert.Equal(t, tt.want, server.tickCap(tt.requested))
		})
	}
}

func TestHandleStrafe_RecordAndHistory(t *testing.T) {
	server := setupTestServer(t, nil)
	ctx := context.Background()

	_, accelOut, err := server.handleStrafeAccelerate(ctx, nil, StrafeAccelerateInput{WishX: 100, Record: true})
	require.NoError(t, err)
	require.NotEmpty(t, accelOut.RunID)

	_, turnOut, err := server.handleStrafeTurn(ctx, nil, StrafeTurnInput{StartX: 320, Record: true})
	require.NoError(t, err)
	require.NotEmpty(t, turnOut.RunID)

	_, list, err := server.handleStrafeHistory(ctx, nil, StrafeHistoryInput{})
	require.NoError(t, err)
	require.Equal(t, 2, list.Count)
	assert.Equal(t, turnOut.RunID, list.Runs[0].ID, "most recent first")
	assert.Equal(t, accelOut.RunID, list.Runs[1].ID)
	assert.Empty(t, list.Runs[0].Samples, "list omits samples")

	_, one, err := server.handleStrafeHistory(ctx, nil, StrafeHistoryInput{ID: accelOut.RunID})
	require.NoError(t, err)
	require.NotNil(t, one.Run)
	assert.Equal(t, "accelerate", one.Run.Kind)
	assert.Equal(t, 4, one.Run.Ticks)
	assert.Len(t, one.Run.Samples, 4)
	assert.InDelta(t, 30.0, one.Run.FinalSpeed, 1e-9)

	_, limited, err := server.handleStrafeHistory(ctx, nil, StrafeHistoryInput{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, limited.Count)
}

func TestHandleStrafe_RecordFromConfig(t *testing.T) {
	settings := config.Default()
	settings.History.Record = true
	server := setupTestServer(t, settings)

	_, out, err := server.handleStrafeTurn(context.Background(), nil, StrafeTurnInput{StartX: 100})
	require.NoError(t, err)
	assert.NotEmpty(t, out.RunID)
}

func TestHandleStrafeHistory_NotFound(t *testing.T) {
	server := setupTestServer(t, nil)

	_, _, err := server.handleStrafeHistory(context.Background(), nil, StrafeHistoryInput{ID: "run-missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestHandleStrafe_RateLimited(t *testing.T) {
	server := setupTestServer(t, nil)
	ctx := context.Background()

	var lastErr error
	for i := 0; i < 50 && lastErr == nil; i++ {
		_, _, lastErr = server.handleStrafeHistory(ctx, nil, StrafeHistoryInput{})
	}
	require.Error(t, lastErr)
	assert.True(t, strings.Contains(lastErr.Error(), "rate limit exceeded"), "got %v", lastErr)
}

func TestHandleConfigResource(t *testing.T) {
	settings := config.Default()
	settings.Physics.Accel = 15
	server := setupTestServer(t, settings)

	res, err := server.handleConfigResource(context.Background(), &sdk.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, configResourceURI, res.Contents[0].URI)

	var got config.StrafeConfig
	require.NoError(t, yaml.Unmarshal([]byte(res.Contents[0].Text), &got))
	assert.Equal(t, 15.0, got.Physics.Accel)
	assert.Equal(t, constants.DefaultFrameTime, got.Physics.FrameTime)
}

func TestHandleHistoryResource(t *testing.T) {
	server := setupTestServer(t, nil)
	ctx := context.Background()

	res, err := server.handleHistoryResource(ctx, &sdk.ReadResourceRequest{})
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, "No runs recorded yet")

	_, out, err := server.handleStrafeTurn(ctx, nil, StrafeTurnInput{StartX: 320, Record: true})
	require.NoError(t, err)

	res, err = server.handleHistoryResource(ctx, &sdk.ReadResourceRequest{})
	require.NoError(t, err)
	text := res.Contents[0].Text
	assert.Contains(t, text, out.RunID)
	assert.Contains(t, text, "| turn |")
}
