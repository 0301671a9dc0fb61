package planner

import (
	"github.com/flemzord/careerai/internal/intent"
	"github.com/flemzord/careerai/internal/phase"
)

// Planner computes generation parameters. Its tables are fixed at
// construction, so a Planner is safe for concurrent use.
type Planner struct {
	tables Tables
}

// New creates a Planner over a private copy of tables.
func New(tables Tables) *Planner {
	return &Planner{tables: tables.clone()}
}

var defaultPlanner = New(DefaultTables())

// Plan computes parameters with the default tables.
func Plan(ph phase.Phase, in *intent.Result) Parameters {
	return defaultPlanner.Plan(ph, in)
}

// Plan computes the parameters for one turn. in may be nil; an intent absent
// from every table is treated the same as no intent.
//
// The steps run in a fixed order and later steps override earlier ones:
//  1. phase defaults
//  2. temperature blended towards the intent target
//  3. intent token floor
//  4. opening caps
//  5. factual-intent precision caps
func (p *Planner) Plan(ph phase.Phase, in *intent.Result) Parameters {
	params, ok := p.tables.Base[ph]
	if !ok {
		params = p.tables.Base[phase.Opening]
	}

	var label intent.Intent
	if in != nil {
		label = in.Intent
	}

	if target, ok := p.tables.TargetTemperature[label]; ok {
		r := p.tables.BlendRatio
		params.Temperature = params.Temperature*(1-r) + target*r
	}

	if floor, ok := p.tables.TokenFloor[label]; ok {
		params.MaxTokens = max(params.MaxTokens, floor)
	}

	if ph == phase.Opening {
		params.Temperature = min(params.Temperature+openingTemperatureBump, openingMaxTemperature)
		params.MaxTokens = min(params.MaxTokens, openingMaxTokens)
	}

	if p.tables.Factual[label] {
		params.Temperature = min(params.Temperature, factualMaxTemperature)
		params.TopP = factualTopP
	}

	params.Temperature = clamp(params.Temperature, 0, 1)
	return params
}

// Tables returns a copy of the planner's tables.
func (p *Planner) Tables() Tables {
	return p.tables.clone()
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
