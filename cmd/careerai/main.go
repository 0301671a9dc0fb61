// Package main is the entry point for the careerai CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/flemzord/careerai/internal/core"
	"github.com/flemzord/careerai/pkg/app"

	// Compiled-in modules.
	_ "github.com/flemzord/careerai/internal/gateway"
	_ "github.com/flemzord/careerai/modules/provider/openrouter"
	_ "github.com/flemzord/careerai/modules/store/sqlite"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "careerai",
		Short:         "Career guidance chat service with adaptive context and generation parameters",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(versionCmd(), startCmd(), configCmd(), planCmd(), mcpCmd(), serviceCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and compiled modules",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "careerai %s (commit: %s, built: %s)\n", version, commit, date)
			fmt.Fprintln(out, "\nCompiled modules:")
			for _, mod := range core.GetModules() {
				fmt.Fprintf(out, "  %s\n", mod.ID)
			}
		},
	}
}

func startCmd() *cobra.Command {
	var (
		cfgPath string
		dataDir string
		debug   bool
	)
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start careerai with all configured modules",
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.Run(runParams(cfgPath, dataDir, debug))
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Persistent data directory (default $XDG_DATA_HOME/careerai)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	return cmd
}

func runParams(cfgPath, dataDir string, debug bool) app.RunParams {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return app.RunParams{
		ConfigPath: cfgPath,
		DataDir:    dataDir,
		LogLevel:   level,
		Version:    version,
		Commit:     commit,
		Date:       date,
	}
}
