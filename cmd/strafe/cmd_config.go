package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/nvandessel/strafe/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage strafe configuration",
		Long: `View and modify strafe configuration settings.

Configuration is stored in ~/.strafe/config.yaml. Environment variables
(STRAFE_ACCEL, STRAFE_FRAME_TIME, STRAFE_MAX_TICKS, STRAFE_LOG_LEVEL,
STRAFE_TRACE_FILE, STRAFE_RECORD, STRAFE_HISTORY_PATH) override the file.

Examples:
  strafe config list                        # Show all settings
  strafe config get physics.frame_time      # Get a specific setting
  strafe config set physics.accel 15        # Set a setting
  strafe config set history.record true`,
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
	)

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(out).Encode(cfg)
			}

			fmt.Fprintln(out, "Configuration (~/.strafe/config.yaml):")
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Physics Settings:")
			fmt.Fprintf(out, "  physics.accel:       %g\n", cfg.Physics.Accel)
			fmt.Fprintf(out, "  physics.frame_time:  %g\n", cfg.Physics.FrameTime)
			fmt.Fprintf(out, "  physics.max_ticks:   %s\n", maxTicksString(cfg.Physics.MaxTicks))
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Logging Settings:")
			fmt.Fprintf(out, "  logging.level:       %s\n", valueOrDefault(cfg.Logging.Level, "info"))
			fmt.Fprintf(out, "  logging.trace_file:  %s\n", valueOrDefault(cfg.Logging.TraceFile, "(not set)"))
			fmt.Fprintln(out)
			fmt.Fprintln(out, "History Settings:")
			fmt.Fprintf(out, "  history.record:      %v\n", cfg.History.Record)
			fmt.Fprintf(out, "  history.path:        %s\n", valueOrDefault(cfg.History.Path, "(default)"))

			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()
			key := args[0]

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			value, found := getConfigValue(cfg, key)
			if !found {
				if jsonOut {
					return json.NewEncoder(out).Encode(map[string]interface{}{
						"error": "key not found",
						"key":   key,
					})
				}
				fmt.Fprintf(out, "Unknown configuration key: %s\n", key)
				return nil
			}

			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"key":   key,
					"value": value,
				})
			}
			fmt.Fprintf(out, "%s = %v\n", key, value)

			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()
			key := args[0]
			value := args[1]

			// Edit the file contents only, so environment overrides are
			// not persisted.
			path, err := config.Path()
			if err != nil {
				return err
			}
			cfg, err := loadConfigFile(path)
			if err != nil {
				return err
			}

			if err := setConfigValue(cfg, key, value); err != nil {
				if jsonOut {
					return json.NewEncoder(out).Encode(map[string]interface{}{
						"error": err.Error(),
						"key":   key,
					})
				}
				fmt.Fprintf(out, "Error: %v\n", err)
				return nil
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid value for %s: %w", key, err)
			}

			if err := cfg.Save(path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"status": "updated",
					"key":    key,
					"value":  value,
				})
			}
			fmt.Fprintf(out, "Set %s = %s\n", key, value)

			return nil
		},
	}
}

// loadConfigFile reads path, or returns defaults when it does not exist yet.
func loadConfigFile(path string) (*config.StrafeConfig, error) {
	cfg, err := config.LoadFromFile(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return nil, fmt.Errorf("failed to load config: %w", err)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.StrafeConfig, key string) (interface{}, bool) {
	switch key {
	case "physics.accel":
		return cfg.Physics.Accel, true
	case "physics.frame_time":
		return cfg.Physics.FrameTime, true
	case "physics.max_ticks":
		return cfg.Physics.MaxTicks, true
	case "logging.level":
		return cfg.Logging.Level, true
	case "logging.trace_file":
		return cfg.Logging.TraceFile, true
	case "history.record":
		return cfg.History.Record, true
	case "history.path":
		return cfg.History.Path, true
	default:
		return nil, false
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.StrafeConfig, key, value string) error {
	switch key {
	case "physics.accel":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid accel: %s (must be a number)", value)
		}
		cfg.Physics.Accel = f
	case "physics.frame_time":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid frame_time: %s (must be a number of seconds)", value)
		}
		cfg.Physics.FrameTime = f
	case "physics.max_ticks":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid max_ticks: %s (must be an integer, 0 for no limit)", value)
		}
		cfg.Physics.MaxTicks = n
	case "logging.level":
		validLevels := map[string]bool{"": true, "info": true, "debug": true, "trace": true}
		if !validLevels[value] {
			return fmt.Errorf("invalid level: %s (valid: info, debug, trace)", value)
		}
		cfg.Logging.Level = value
	case "logging.trace_file":
		cfg.Logging.TraceFile = value
	case "history.record":
		cfg.History.Record = value == "true" || value == "1"
	case "history.path":
		cfg.History.Path = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

func maxTicksString(n int) string {
	if n <= 0 {
		return "0 (no limit)"
	}
	return strconv.Itoa(n)
}

// valueOrDefault returns the value if non-empty, otherwise the default.
func valueOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
