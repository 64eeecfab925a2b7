package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// HistoryFileName is the database file name inside the strafe directory.
const HistoryFileName = "history.db"

// GlobalStrafePath returns the path to the global .strafe directory.
// On Unix: ~/.strafe
// On Windows: %USERPROFILE%\.strafe
func GlobalStrafePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".strafe"), nil
}

// DefaultHistoryPath returns ~/.strafe/history.db.
func DefaultHistoryPath() (string, error) {
	dir, err := GlobalStrafePath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, HistoryFileName), nil
}

// ResolveHistoryPath returns configured when set, otherwise the default path.
func ResolveHistoryPath(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	return DefaultHistoryPath()
}
