package backup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nvandessel/strafe/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArchive() *Archive {
	return &Archive{
		Version:   FormatVersion,
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Runs: []store.Run{
			{
				ID: "run-1", Kind: "turn", StartX: 320, Ticks: 2, Converged: true,
				Samples: []store.Sample{{Tick: 1, VX: 320, VY: 3.84}, {Tick: 2, VX: 319.9, VY: 7.68}},
			},
			{ID: "run-2", Kind: "accelerate", WishX: 1, Ticks: 10, Converged: true},
		},
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.json.gz")
	original := testArchive()

	require.NoError(t, Write(path, original))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, FormatVersion, got.Version)
	assert.True(t, got.CreatedAt.Equal(original.CreatedAt))
	require.Len(t, got.Runs, 2)
	assert.Equal(t, "run-1", got.Runs[0].ID)
	assert.Equal(t, original.Runs[0].Samples, got.Runs[0].Samples)
	assert.Equal(t, 10, got.Runs[1].Ticks)

	info, err := os.Stat(path)
	require.NoError(t, err)
	if info.Mode().Perm() != 0600 {
		t.Errorf("file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestReadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json.gz")
	require.NoError(t, Write(path, testArchive()))

	h, err := ReadHeader(path)
	require.NoError(t, err)
	assert.Equal(t, FormatVersion, h.Version)
	assert.Equal(t, 2, h.RunCount)
	assert.Equal(t, 2, h.SampleCount)
	assert.True(t, h.Compressed)
	assert.True(t, strings.HasPrefix(h.Checksum, "sha256:"))
}

func TestVerifyChecksum_DetectsCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json.gz")
	require.NoError(t, Write(path, testArchive()))
	require.NoError(t, VerifyChecksum(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0600))

	err = VerifyChecksum(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")

	_, err = Read(path)
	require.Error(t, err)
}

func TestRead_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"empty", "", "reading header line"},
		{"not json", "hello\n", "parsing header"},
		{"wrong version", `{"version":7}` + "\n", "unsupported archive version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json.gz")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			_, err := Read(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := Read(filepath.Join(dir, "missing.json.gz"))
	require.Error(t, err)
}
