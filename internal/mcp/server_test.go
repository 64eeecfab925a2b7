package mcp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nvandessel/strafe/internal/config"
)

// isolateHome sets HOME to a temp directory to avoid touching real ~/.strafe/
func isolateHome(t *testing.T, tmpDir string) {
	t.Helper()
	tmpHome := filepath.Join(tmpDir, "home")
	if err := os.MkdirAll(tmpHome, 0755); err != nil {
		t.Fatalf("Failed to create temp home: %v", err)
	}
	t.Setenv("HOME", tmpHome)
	t.Setenv("USERPROFILE", tmpHome)
}

func TestNewServer(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	cfg := &Config{
		Name:        "test-server",
		Version:     "v1.0.0",
		HistoryPath: filepath.Join(tmpDir, "history.db"),
	}

	server, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	if server.server == nil {
		t.Error("Server.server is nil")
	}
	if server.store == nil {
		t.Error("Server.store is nil")
	}
	if server.settings == nil {
		t.Error("Server.settings is nil, want defaults")
	}
	if len(server.toolLimiters) == 0 {
		t.Error("Server.toolLimiters is empty")
	}
	if got := server.historyPath(); got != cfg.HistoryPath {
		t.Errorf("historyPath() = %q, want %q", got, cfg.HistoryPath)
	}
}

func TestNewServer_DefaultHistoryPath(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	server, err := NewServer(&Config{Name: "test-server", Version: "v1.0.0"})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	want := filepath.Join(tmpDir, "home", ".strafe", "history.db")
	if got := server.historyPath(); got != want {
		t.Errorf("historyPath() = %q, want %q", got, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("history database not created: %v", err)
	}
}

func TestNewServer_ConfiguredHistoryPath(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	settings := config.Default()
	settings.History.Path = filepath.Join(tmpDir, "custom", "runs.db")

	server, err := NewServer(&Config{Name: "test-server", Version: "v1.0.0", Settings: settings})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	if got := server.historyPath(); got != settings.History.Path {
		t.Errorf("historyPath() = %q, want %q", got, settings.History.Path)
	}
}

func TestNewServer_AuditDir(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	auditDir := filepath.Join(tmpDir, "audit")
	server, err := NewServer(&Config{
		Name:        "test-server",
		Version:     "v1.0.0",
		HistoryPath: filepath.Join(tmpDir, "history.db"),
		AuditDir:    auditDir,
	})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	if server.auditLogger == nil {
		t.Fatal("expected audit logger")
	}
	if _, err := os.Stat(filepath.Join(auditDir, AuditFileName)); err != nil {
		t.Errorf("audit log not created: %v", err)
	}
}

func TestServer_CloseTwice(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	server, err := NewServer(&Config{
		Name:        "test-server",
		Version:     "v1.0.0",
		HistoryPath: filepath.Join(tmpDir, "history.db"),
		AuditDir:    tmpDir,
	})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	if err := server.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := server.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
