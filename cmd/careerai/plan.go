package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flemzord/careerai/internal/config"
	"github.com/flemzord/careerai/internal/intent"
	"github.com/flemzord/careerai/internal/phase"
	"github.com/flemzord/careerai/internal/planner"
)

func planCmd() *cobra.Command {
	var (
		count      int
		intentName string
		confidence string
		cfgPath    string
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the phase and generation parameters for a conversation length",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadPlanner(cfgPath)
			if err != nil {
				return err
			}

			var in *intent.Result
			if intentName != "" {
				label, ok := intent.Parse(intentName)
				if !ok {
					return fmt.Errorf("unknown intent %q (known: %v)", intentName, intent.All())
				}
				in = &intent.Result{Intent: label, Confidence: intent.Confidence(confidence)}
			}

			ph := phase.Classify(count)
			out := struct {
				Phase      phase.Phase        `json:"phase"`
				Intent     *intent.Result     `json:"intent,omitempty"`
				Parameters planner.Parameters `json:"parameters"`
			}{ph, in, p.Plan(ph, in)}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().IntVar(&count, "count", 0, "Messages already in the conversation")
	cmd.Flags().StringVar(&intentName, "intent", "", "Detected intent, e.g. interview-prep")
	cmd.Flags().StringVar(&confidence, "confidence", string(intent.High), "Intent confidence: high, medium or low")
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Apply the engine overrides of this configuration")
	return cmd
}

// loadPlanner returns the default planner, or one with the engine
// overrides of the configuration at path.
func loadPlanner(path string) (*planner.Planner, error) {
	if path == "" {
		return planner.New(planner.DefaultTables()), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Engine.Planner.Validate(); err != nil {
		return nil, err
	}
	return planner.New(cfg.Engine.Planner.Apply(planner.DefaultTables())), nil
}
