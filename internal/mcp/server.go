// Package mcp provides an MCP (Model Context Protocol) server for strafe.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/strafe/internal/config"
	"github.com/nvandessel/strafe/internal/logging"
	"github.com/nvandessel/strafe/internal/ratelimit"
	"github.com/nvandessel/strafe/internal/store"
)

// Server wraps the MCP SDK server and exposes the simulator as tools.
type Server struct {
	server       *sdk.Server
	store        store.HistoryStore
	settings     *config.StrafeConfig
	logger       *slog.Logger
	trace        *logging.TraceLogger
	auditLogger  *AuditLogger
	toolLimiters ratelimit.ToolLimiters
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "strafe")
	Version string // Server version

	// Settings supplies physics defaults and history options. Nil uses
	// config.Default().
	Settings *config.StrafeConfig

	// Logger receives operational logs. Nil discards them.
	Logger *slog.Logger

	// HistoryPath overrides the history database location.
	HistoryPath string

	// AuditDir, when set, receives audit.jsonl with one entry per tool call.
	AuditDir string
}

// NewServer creates a new MCP server with strafe tools.
func NewServer(cfg *Config) (*Server, error) {
	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	historyPath := cfg.HistoryPath
	if historyPath == "" {
		p, err := store.ResolveHistoryPath(settings.History.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve history path: %w", err)
		}
		historyPath = p
	}

	historyStore, err := store.NewSQLiteHistoryStore(historyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			logger.Debug("mcp client initialized")
		},
	})

	s := &Server{
		server:       mcpServer,
		store:        historyStore,
		settings:     settings,
		logger:       logger,
		toolLimiters: ratelimit.NewToolLimiters(),
	}
	if s.trace, err = logging.NewTraceLogger(settings.Logging.TraceFile); err != nil {
		logger.Warn("tracing disabled", "path", settings.Logging.TraceFile, "error", err)
	}
	if cfg.AuditDir != "" {
		s.auditLogger = NewAuditLogger(cfg.AuditDir)
	}

	if err := s.registerTools(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	if err := s.registerResources(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to register resources: %w", err)
	}

	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)

	go func() {
		select {
		case <-sigChan:
			s.logger.Info("received signal, shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	s.logger.Info("mcp server listening on stdio", "history", s.historyPath())
	err := s.server.Run(ctx, &sdk.StdioTransport{})

	s.Close()

	return err
}

// Close closes the server and releases resources.
func (s *Server) Close() error {
	s.trace.Close()
	if err := s.auditLogger.Close(); err != nil {
		s.logger.Warn("failed to close audit log", "error", err)
	}
	return s.store.Close()
}

func (s *Server) historyPath() string {
	if p, ok := s.store.(interface{ Path() string }); ok {
		return p.Path()
	}
	return ""
}
