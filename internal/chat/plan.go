package chat

import (
	"fmt"

	"github.com/flemzord/careerai/internal/intent"
	"github.com/flemzord/careerai/internal/phase"
	"github.com/flemzord/careerai/internal/planner"
)

// PlanPreview is the outcome of planning without running a turn.
type PlanPreview struct {
	Phase      phase.Phase        `json:"phase"`
	Intent     intent.Intent      `json:"intent,omitempty"`
	Parameters planner.Parameters `json:"parameters"`
}

// Plan reports the phase and parameters a turn would use for a
// conversation holding count messages. An empty intentName plans without
// an intent.
func (h *Handler) Plan(count int, intentName string) (PlanPreview, error) {
	var in *intent.Result
	if intentName != "" {
		label, ok := intent.Parse(intentName)
		if !ok {
			return PlanPreview{}, fmt.Errorf("%w: unknown intent %q", ErrInvalidRequest, intentName)
		}
		in = &intent.Result{Intent: label, Confidence: intent.High}
	}
	ph := phase.Classify(count)
	p := PlanPreview{Phase: ph, Parameters: h.engine.Load().planner.Plan(ph, in)}
	if in != nil {
		p.Intent = in.Intent
	}
	return p, nil
}
