package planner

import (
	"errors"
	"fmt"

	"github.com/flemzord/careerai/internal/intent"
	"github.com/flemzord/careerai/internal/phase"
)

// Validate reports every override that names an unknown phase or intent or
// carries an out-of-range value.
func (o Overrides) Validate() error {
	var errs []error
	if r := o.BlendRatio; r != nil && (*r < 0 || *r > 1) {
		errs = append(errs, fmt.Errorf("planner: blend_ratio must be within [0,1], got %g", *r))
	}
	for name, p := range o.Base {
		if !phase.Phase(name).Valid() {
			errs = append(errs, fmt.Errorf("planner: unknown phase %q", name))
		}
		if p.MaxTokens != nil && *p.MaxTokens <= 0 {
			errs = append(errs, fmt.Errorf("planner: phases.%s.max_tokens must be positive", name))
		}
		if p.Temperature != nil && (*p.Temperature < 0 || *p.Temperature > 1) {
			errs = append(errs, fmt.Errorf("planner: phases.%s.temperature must be within [0,1]", name))
		}
		if p.TopP != nil && (*p.TopP <= 0 || *p.TopP > 1) {
			errs = append(errs, fmt.Errorf("planner: phases.%s.top_p must be within (0,1]", name))
		}
		if p.FrequencyPenalty != nil && (*p.FrequencyPenalty < -2 || *p.FrequencyPenalty > 2) {
			errs = append(errs, fmt.Errorf("planner: phases.%s.frequency_penalty must be within [-2,2]", name))
		}
		if p.PresencePenalty != nil && (*p.PresencePenalty < -2 || *p.PresencePenalty > 2) {
			errs = append(errs, fmt.Errorf("planner: phases.%s.presence_penalty must be within [-2,2]", name))
		}
	}
	for name, temp := range o.TargetTemperature {
		if _, ok := intent.Parse(name); !ok {
			errs = append(errs, fmt.Errorf("planner: unknown intent %q", name))
		}
		if temp < 0 || temp > 1 {
			errs = append(errs, fmt.Errorf("planner: intent_temperatures.%s must be within [0,1]", name))
		}
	}
	for name, floor := range o.TokenFloor {
		if _, ok := intent.Parse(name); !ok {
			errs = append(errs, fmt.Errorf("planner: unknown intent %q", name))
		}
		if floor <= 0 {
			errs = append(errs, fmt.Errorf("planner: token_floors.%s must be positive", name))
		}
	}
	return errors.Join(errs...)
}
