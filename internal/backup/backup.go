// Package backup writes and restores compressed archives of the run history.
package backup

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/nvandessel/strafe/internal/config"
	"github.com/nvandessel/strafe/internal/store"
)

// filePrefix and fileSuffix name the archives GeneratePath creates.
const (
	filePrefix = "strafe-history-"
	fileSuffix = ".json.gz"
)

// DefaultDir returns the default archive directory (~/.strafe/backups).
func DefaultDir() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "backups"), nil
}

// GeneratePath creates a timestamped archive filename in dir.
func GeneratePath(dir string, now time.Time) string {
	return filepath.Join(dir, filePrefix+now.Format("20060102-150405.000000000")+fileSuffix)
}

// Backup reads every run with its samples and writes them to path.
func Backup(ctx context.Context, hs store.HistoryStore, path string) (*Archive, error) {
	runs, err := hs.ListRuns(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	a := &Archive{
		Version:   FormatVersion,
		CreatedAt: time.Now().UTC(),
		Runs:      make([]store.Run, 0, len(runs)),
	}
	for _, r := range runs {
		full, err := hs.GetRun(ctx, r.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get run %s: %w", r.ID, err)
		}
		a.Runs = append(a.Runs, *full)
	}

	if err := Write(path, a); err != nil {
		return nil, fmt.Errorf("failed to write archive: %w", err)
	}
	return a, nil
}

// RestoreMode controls how restore handles runs already in the store.
type RestoreMode string

const (
	// RestoreMerge skips runs whose ID already exists (default).
	RestoreMerge RestoreMode = "merge"
	// RestoreReplace clears the store before restoring.
	RestoreReplace RestoreMode = "replace"
)

// RestoreResult counts what a restore did.
type RestoreResult struct {
	RunsRestored int `json:"runs_restored"`
	RunsSkipped  int `json:"runs_skipped"`
	RunsCleared  int `json:"runs_cleared,omitempty"`
}

// Restore loads the archive at path into hs. Run IDs and timestamps are kept.
func Restore(ctx context.Context, hs store.HistoryStore, path string, mode RestoreMode) (*RestoreResult, error) {
	a, err := Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}

	result := &RestoreResult{}
	switch mode {
	case RestoreReplace:
		n, err := hs.Clear(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to clear history: %w", err)
		}
		result.RunsCleared = n
	case RestoreMerge, "":
	default:
		return nil, fmt.Errorf("unknown restore mode: %q", mode)
	}

	for _, r := range a.Runs {
		if mode != RestoreReplace {
			_, err := hs.GetRun(ctx, r.ID)
			if err == nil {
				result.RunsSkipped++
				continue
			}
			if !errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("failed to check existing run %s: %w", r.ID, err)
			}
		}

		if _, err := hs.RecordRun(ctx, r); err != nil {
			return nil, fmt.Errorf("failed to restore run %s: %w", r.ID, err)
		}
		result.RunsRestored++
	}

	return result, nil
}
