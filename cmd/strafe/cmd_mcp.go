package main

import (
	"fmt"

	"github.com/nvandessel/strafe/internal/config"
	"github.com/nvandessel/strafe/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Run strafe as an MCP server over stdio",
		Long: `Serve the simulator to MCP clients over stdin/stdout.

Tools: strafe_accelerate, strafe_turn, strafe_history.
Resources: strafe://config, strafe://history/recent.

Tool runs are always bounded by max_ticks (at most 100000). Logs go to
stderr so they never mix with the protocol stream.

Example client configuration:
  {"command": "strafe", "args": ["mcp-server"]}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadRunEnv(cmd)
			if err != nil {
				return err
			}
			// The server owns its own trace logger.
			env.Close()

			audit, _ := cmd.Flags().GetBool("audit")
			var auditDir string
			if audit {
				auditDir, err = config.Dir()
				if err != nil {
					return err
				}
			}

			server, err := mcp.NewServer(&mcp.Config{
				Name:     "strafe",
				Version:  version,
				Settings: env.cfg,
				Logger:   env.logger,
				AuditDir: auditDir,
			})
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}

			return server.Run(cmd.Context())
		},
	}

	cmd.Flags().Bool("audit", false, "Append every tool call to ~/.strafe/audit.jsonl")
	return cmd
}
