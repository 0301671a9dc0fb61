package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flemzord/careerai/internal/mcpserver"
	"github.com/flemzord/careerai/internal/security"
)

func mcpCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the context engine as MCP tools over stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadPlanner(cfgPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// stdout carries the protocol; logs go to stderr.
			logger := security.NewLogger(os.Stderr, slog.LevelInfo, security.NewRedactor())
			srv := mcpserver.New(mcpserver.Options{
				Version: version,
				Planner: p,
				Logger:  logger,
			})
			return srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Apply the engine overrides of this configuration")
	return cmd
}
