// Package config provides unified configuration loading for strafe.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nvandessel/strafe/internal/constants"
	"github.com/nvandessel/strafe/internal/movement"
	"gopkg.in/yaml.v3"
)

// StrafeConfig contains all strafe configuration settings.
type StrafeConfig struct {
	// Physics contains the tuning of the acceleration rule.
	Physics PhysicsConfig `json:"physics" yaml:"physics"`

	// Logging contains settings for operational logging and tick traces.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// History contains settings for the run history database.
	History HistoryConfig `json:"history" yaml:"history"`
}

// PhysicsConfig configures the acceleration rule and loop bounds.
type PhysicsConfig struct {
	// Accel is the acceleration coefficient (sv_accel).
	Accel float64 `json:"accel" yaml:"accel"`

	// FrameTime is the tick length in seconds. Turn runs always use it;
	// positional straight runs take the frame time from their arguments.
	FrameTime float64 `json:"frame_time" yaml:"frame_time"`

	// MaxTicks stops a run after this many ticks. 0 (default) is unbounded.
	MaxTicks int `json:"max_ticks" yaml:"max_ticks"`
}

// Params returns the movement parameters described by the config.
func (p PhysicsConfig) Params() movement.Params {
	return movement.Params{Accel: p.Accel, FrameTime: p.FrameTime}
}

// LoggingConfig configures strafe's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" logs the rule's speeds for every tick.
	// "trace" additionally logs velocity and convergence diff per tick.
	Level string `json:"level" yaml:"level"`

	// TraceFile, when set, receives every tick as a JSONL event.
	TraceFile string `json:"trace_file,omitempty" yaml:"trace_file,omitempty"`
}

// HistoryConfig configures the run history database.
type HistoryConfig struct {
	// Record stores every run in the history database.
	Record bool `json:"record" yaml:"record"`

	// Path is the SQLite database path. Empty means ~/.strafe/history.db.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Default returns a StrafeConfig with the stock tuning (accel 10, 12ms frames).
func Default() *StrafeConfig {
	return &StrafeConfig{
		Physics: PhysicsConfig{
			Accel:     constants.DefaultAccel,
			FrameTime: constants.DefaultFrameTime,
			MaxTicks:  0,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		History: HistoryConfig{
			Record: false,
		},
	}
}

// Dir returns the strafe configuration directory (~/.strafe).
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".strafe"), nil
}

// Path returns the default config file path (~/.strafe/config.yaml).
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.strafe/config.yaml -> environment variables
func Load() (*StrafeConfig, error) {
	config := Default()

	// Try to load from default config file
	configPath, err := Path()
	if err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*StrafeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.History.Path = expandEnvVars(config.History.Path)
	config.Logging.TraceFile = expandEnvVars(config.Logging.TraceFile)

	return config, nil
}

// Save writes the configuration as YAML to path, creating its directory.
func (c *StrafeConfig) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration is valid.
func (c *StrafeConfig) Validate() error {
	if c.Physics.Accel < 0 {
		return fmt.Errorf("accel must be non-negative, got %f", c.Physics.Accel)
	}

	if c.Physics.FrameTime <= 0 {
		return fmt.Errorf("frame_time must be positive, got %f", c.Physics.FrameTime)
	}

	if c.Physics.MaxTicks < 0 {
		return fmt.Errorf("max_ticks must be non-negative, got %d", c.Physics.MaxTicks)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *StrafeConfig) {
	if v := os.Getenv("STRAFE_ACCEL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Physics.Accel = f
		}
	}

	if v := os.Getenv("STRAFE_FRAME_TIME"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Physics.FrameTime = f
		}
	}

	if v := os.Getenv("STRAFE_MAX_TICKS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Physics.MaxTicks = n
		}
	}

	if v := os.Getenv("STRAFE_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("STRAFE_TRACE_FILE"); v != "" {
		config.Logging.TraceFile = v
	}

	if v := os.Getenv("STRAFE_RECORD"); v != "" {
		config.History.Record = v == "true" || v == "1"
	}

	if v := os.Getenv("STRAFE_HISTORY_PATH"); v != "" {
		config.History.Path = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
