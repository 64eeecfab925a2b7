package store

import (
	"path/filepath"
	"testing"
)

func TestGlobalStrafePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	got, err := GlobalStrafePath()
	if err != nil {
		t.Fatalf("GlobalStrafePath() error = %v", err)
	}
	if want := filepath.Join(home, ".strafe"); got != want {
		t.Errorf("GlobalStrafePath() = %q, want %q", got, want)
	}
}

func TestResolveHistoryPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	tests := []struct {
		name       string
		configured string
		want       string
	}{
		{"default", "", filepath.Join(home, ".strafe", HistoryFileName)},
		{"configured", "/data/runs.db", "/data/runs.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveHistoryPath(tt.configured)
			if err != nil {
				t.Fatalf("ResolveHistoryPath() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveHistoryPath(%q) = %q, want %q", tt.configured, got, tt.want)
			}
		})
	}
}
