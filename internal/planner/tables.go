package planner

import (
	"maps"

	"github.com/flemzord/careerai/internal/intent"
	"github.com/flemzord/careerai/internal/phase"
)

const (
	// DefaultBlendRatio is the weight of the intent target temperature when
	// blended with the phase temperature.
	DefaultBlendRatio = 0.5

	// openingTemperatureBump is added to the opening temperature before it is
	// capped at openingMaxTemperature.
	openingTemperatureBump = 0.15
	openingMaxTemperature  = 0.8
	openingMaxTokens       = 700

	factualMaxTemperature = 0.35
	factualTopP           = 0.75
)

// Tables holds the lookup tables driving the planner.
type Tables struct {
	// Base holds the defaults for each phase.
	Base map[phase.Phase]Parameters

	// TargetTemperature is the temperature each intent pulls towards.
	TargetTemperature map[intent.Intent]float64

	// TokenFloor raises max tokens for intents that need long answers.
	TokenFloor map[intent.Intent]int

	// Factual intents get a low temperature and narrow nucleus whatever the
	// phase.
	Factual map[intent.Intent]bool

	// BlendRatio weights the intent temperature against the phase temperature.
	BlendRatio float64
}

// DefaultTables returns the built-in tables.
func DefaultTables() Tables {
	return Tables{
		Base: map[phase.Phase]Parameters{
			phase.Opening:   {MaxTokens: 600, Temperature: 0.7, TopP: 0.9, FrequencyPenalty: 0.3, PresencePenalty: 0.3},
			phase.Exploring: {MaxTokens: 2000, Temperature: 0.6, TopP: 0.9, FrequencyPenalty: 0.3, PresencePenalty: 0.2},
			phase.DeepDive:  {MaxTokens: 4000, Temperature: 0.4, TopP: 0.85, FrequencyPenalty: 0.2, PresencePenalty: 0.1},
			phase.FollowUp:  {MaxTokens: 2500, Temperature: 0.5, TopP: 0.9, FrequencyPenalty: 0.3, PresencePenalty: 0.2},
		},
		TargetTemperature: map[intent.Intent]float64{
			intent.FindJobs:             0.2,
			intent.ApplicationStatus:    0.2,
			intent.CourseProgress:       0.2,
			intent.AssessmentInsights:   0.25,
			intent.SkillGap:             0.3,
			intent.ResumeReview:         0.3,
			intent.CourseRecommendation: 0.35,
			intent.InterviewPrep:        0.4,
			intent.LearningPath:         0.4,
			intent.CareerGuidance:       0.5,
			intent.General:              0.6,
		},
		TokenFloor: map[intent.Intent]int{
			intent.LearningPath:   4000,
			intent.SkillGap:       3000,
			intent.CareerGuidance: 3000,
			intent.InterviewPrep:  2500,
		},
		Factual: map[intent.Intent]bool{
			intent.FindJobs:           true,
			intent.ApplicationStatus:  true,
			intent.CourseProgress:     true,
			intent.AssessmentInsights: true,
		},
		BlendRatio: DefaultBlendRatio,
	}
}

// clone returns a deep copy so a Planner never shares maps with its caller.
func (t Tables) clone() Tables {
	return Tables{
		Base:              maps.Clone(t.Base),
		TargetTemperature: maps.Clone(t.TargetTemperature),
		TokenFloor:        maps.Clone(t.TokenFloor),
		Factual:           maps.Clone(t.Factual),
		BlendRatio:        t.BlendRatio,
	}
}

// Overrides adjusts the default tables, typically from configuration.
// Nil fields leave the default untouched; an explicit zero is applied.
type Overrides struct {
	BlendRatio        *float64                 `yaml:"blend_ratio"`
	Base              map[string]PhaseOverride `yaml:"phases"`
	TargetTemperature map[string]float64       `yaml:"intent_temperatures"`
	TokenFloor        map[string]int           `yaml:"token_floors"`
}

// PhaseOverride replaces individual parameters of one phase.
type PhaseOverride struct {
	MaxTokens        *int     `yaml:"max_tokens"`
	Temperature      *float64 `yaml:"temperature"`
	TopP             *float64 `yaml:"top_p"`
	FrequencyPenalty *float64 `yaml:"frequency_penalty"`
	PresencePenalty  *float64 `yaml:"presence_penalty"`
}

// Apply returns a copy of t with o applied. Unknown phase or intent names
// are reported by Validate and skipped here.
func (o Overrides) Apply(t Tables) Tables {
	t = t.clone()
	if o.BlendRatio != nil {
		t.BlendRatio = *o.BlendRatio
	}
	for name, po := range o.Base {
		ph := phase.Phase(name)
		if !ph.Valid() {
			continue
		}
		t.Base[ph] = po.merge(t.Base[ph])
	}
	for name, temp := range o.TargetTemperature {
		if in, ok := intent.Parse(name); ok {
			t.TargetTemperature[in] = temp
		}
	}
	for name, floor := range o.TokenFloor {
		if in, ok := intent.Parse(name); ok {
			t.TokenFloor[in] = floor
		}
	}
	return t
}

func (po PhaseOverride) merge(base Parameters) Parameters {
	set(&base.MaxTokens, po.MaxTokens)
	set(&base.Temperature, po.Temperature)
	set(&base.TopP, po.TopP)
	set(&base.FrequencyPenalty, po.FrequencyPenalty)
	set(&base.PresencePenalty, po.PresencePenalty)
	return base
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
