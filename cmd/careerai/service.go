package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"

	"github.com/flemzord/careerai/pkg/app"
)

// program adapts the runtime to the service manager.
type program struct {
	params app.RunParams
	rt     *app.Runtime
}

func (p *program) Start(_ service.Service) error {
	rt, err := app.Build(context.Background(), p.params)
	if err != nil {
		return err
	}
	if err := rt.Start(); err != nil {
		_ = rt.Shutdown(context.Background())
		return err
	}
	p.rt = rt
	return nil
}

func (p *program) Stop(_ service.Service) error {
	if p.rt == nil {
		return nil
	}
	return p.rt.Shutdown(context.Background())
}

func newService(cfgPath, dataDir string) (service.Service, error) {
	args := []string{"service", "run"}
	if cfgPath != "" {
		abs, err := filepath.Abs(cfgPath)
		if err != nil {
			return nil, err
		}
		args = append(args, "--config", abs)
		cfgPath = abs
	}
	if dataDir != "" {
		args = append(args, "--data-dir", dataDir)
	}
	prg := &program{params: runParams(cfgPath, dataDir, false)}
	return service.New(prg, &service.Config{
		Name:        "careerai",
		DisplayName: "CareerAI",
		Description: "Career guidance chat service.",
		Arguments:   args,
	})
}

func serviceCmd() *cobra.Command {
	var cfgPath, dataDir string
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage careerai as a system service",
	}
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to configuration file")
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Persistent data directory")

	for _, action := range []string{"install", "uninstall", "start", "stop"} {
		cmd.AddCommand(&cobra.Command{
			Use:   action,
			Short: fmt.Sprintf("%s the system service", action),
			RunE: func(cmd *cobra.Command, _ []string) error {
				s, err := newService(cfgPath, dataDir)
				if err != nil {
					return err
				}
				if err := service.Control(s, action); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "service %s: ok\n", action)
				return nil
			},
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:    "run",
		Short:  "Run under the service manager",
		Hidden: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			s, err := newService(cfgPath, dataDir)
			if err != nil {
				return err
			}
			return s.Run()
		},
	})
	return cmd
}
