// Package logging builds the stderr logger and the JSONL tick trace used by
// simulation runs.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelTrace sits below Debug. Tick records at this level carry the
// convergence diff and the raw velocity.
const LevelTrace = slog.LevelDebug - 4

var levelNames = map[string]slog.Level{
	"info":  slog.LevelInfo,
	"debug": slog.LevelDebug,
	"trace": LevelTrace,
}

// ParseLevel maps "info", "debug" or "trace" (any case) to a slog.Level.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	if lvl, ok := levelNames[strings.ToLower(s)]; ok {
		return lvl
	}
	return slog.LevelInfo
}

// NewLogger returns a text logger writing to w at the named level.
func NewLogger(level string, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       ParseLevel(level),
		ReplaceAttr: nameTraceLevel,
	}))
}

// nameTraceLevel prints LevelTrace as TRACE instead of DEBUG-4.
func nameTraceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
		a.Value = slog.StringValue("TRACE")
	}
	return a
}

// TraceEvent is one line of a tick trace.
type TraceEvent struct {
	Time  string `json:"time"`
	Event string `json:"event"` // "snapshot" or "tick"
	Run   string `json:"run"`
	Label string `json:"label,omitempty"`
	Tick  int    `json:"tick,omitempty"`

	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	Speed float64 `json:"speed"`
	Diff  float64 `json:"diff,omitempty"`

	Applied      bool    `json:"applied,omitempty"`
	CurrentSpeed float64 `json:"current_speed,omitempty"`
	AddSpeed     float64 `json:"add_speed,omitempty"`
	AccelSpeed   float64 `json:"accel_speed,omitempty"`
}

// TraceLogger appends TraceEvents to a file, one JSON object per line.
// A nil *TraceLogger accepts every call and writes nothing.
type TraceLogger struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
	now func() time.Time
}

// NewTraceLogger opens path for appending, creating parent directories.
// An empty path means tracing is off and returns nil, nil.
func NewTraceLogger(path string) (*TraceLogger, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating trace directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening trace file: %w", err)
	}
	return &TraceLogger{f: f, enc: json.NewEncoder(f), now: time.Now}, nil
}

// Write appends ev, stamping Time when it is empty. Encoding errors are
// ignored.
func (tl *TraceLogger) Write(ev TraceEvent) {
	if tl == nil {
		return
	}

	tl.mu.Lock()
	defer tl.mu.Unlock()

	if tl.f == nil {
		return
	}
	if ev.Time == "" {
		ev.Time = tl.now().UTC().Format(time.RFC3339Nano)
	}
	_ = tl.enc.Encode(ev)
}

// Close closes the file. Later Writes are ignored.
func (tl *TraceLogger) Close() error {
	if tl == nil {
		return nil
	}

	tl.mu.Lock()
	defer tl.mu.Unlock()

	if tl.f == nil {
		return nil
	}
	err := tl.f.Close()
	tl.f = nil
	return err
}
