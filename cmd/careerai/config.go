package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flemzord/careerai/internal/config"
	"github.com/flemzord/careerai/internal/core"
	"github.com/flemzord/careerai/internal/security"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(configCheckCmd(), configInitCmd())
	return cmd
}

func configCheckCmd() *cobra.Command {
	var show bool
	cmd := &cobra.Command{
		Use:   "check <path>",
		Short: "Validate configuration and provision every module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			// Modules provision against a scratch data dir so a check never
			// touches the real store.
			scratch, err := os.MkdirTemp("", "careerai-check-")
			if err != nil {
				return err
			}
			defer func() { _ = os.RemoveAll(scratch) }()

			redactor := security.NewRedactor()
			logger := security.NewLogger(cmd.ErrOrStderr(), slog.LevelWarn, redactor)
			appCtx := core.NewAppContext(logger, scratch).WithModuleConfigs(cfg.Modules)
			appCtx.RegisterService("security.redactor", redactor)

			application := core.NewApp(appCtx)
			ids := config.Resolve(cfg)
			if err := application.LoadModules(ids); err != nil {
				return err
			}
			defer application.Stop()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration OK (%d modules)\n", len(ids))
			for _, id := range ids {
				fmt.Fprintf(out, "  %s\n", id)
			}
			if !show {
				return nil
			}

			dump, err := config.Redacted(cfg, redactor)
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(dump); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().BoolVar(&show, "show", false, "Print the resolved configuration with secrets redacted")
	return cmd
}

func configInitCmd() *cobra.Command {
	var (
		output string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter configuration interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				if _, err := os.Stat(output); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", output)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return err
				}
			}

			params, err := askTemplateParams()
			if err != nil {
				return err
			}
			data, err := config.Template(params)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o600); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\nExport %s before running `careerai start`.\n", output, params.APIKeyEnv)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", config.FileName, "Where to write the configuration")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

// askTemplateParams runs the interactive form behind `config init`.
func askTemplateParams() (config.TemplateParams, error) {
	p := config.TemplateParams{
		APIKeyEnv:       "OPENROUTER_API_KEY",
		Model:           "openai/gpt-4o-mini",
		Bind:            "127.0.0.1:8080",
		MessagesPerMin:  10,
		MessagesPerHour: 100,
	}
	var (
		protect   bool
		retention = "90"
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Environment variable holding the OpenRouter API key").
				Value(&p.APIKeyEnv).
				Validate(nonEmpty),
			huh.NewSelect[string]().
				Title("Model").
				Options(huh.NewOptions("openai/gpt-4o-mini", "anthropic/claude-3.5-haiku", "google/gemini-flash-1.5", "auto")...).
				Value(&p.Model),
			huh.NewInput().
				Title("Listen address").
				Value(&p.Bind).
				Validate(nonEmpty),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Require a bearer token on the API?").
				Value(&protect),
			huh.NewInput().
				Title("Delete idle conversations after how many days? (0 keeps them)").
				Value(&retention).
				Validate(nonNegativeInt),
		),
	)
	if err := form.Run(); err != nil {
		return p, err
	}

	if protect {
		p.BearerEnv = "CAREERAI_API_TOKEN"
	}
	p.RetentionDays, _ = strconv.Atoi(retention)
	return p, nil
}

func nonEmpty(s string) error {
	if s == "" {
		return errors.New("required")
	}
	return nil
}

func nonNegativeInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return errors.New("enter a whole number of days")
	}
	return nil
}
