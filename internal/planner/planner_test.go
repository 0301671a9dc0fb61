package planner

import (
	"testing"

	"github.com/flemzord/careerai/internal/intent"
	"github.com/flemzord/careerai/internal/phase"
)

func ptr[T any](v T) *T { return &v }

func result(in intent.Intent) *intent.Result {
	return &intent.Result{Intent: in, Confidence: intent.High}
}

func TestPlan_BaseOnly(t *testing.T) {
	t.Parallel()

	got := Plan(phase.DeepDive, nil)
	want := DefaultTables().Base[phase.DeepDive]
	if got != want {
		t.Errorf("Plan(deep_dive, nil) = %+v, want %+v", got, want)
	}
}

func TestPlan_UnknownIntentIsIgnored(t *testing.T) {
	t.Parallel()

	got := Plan(phase.Exploring, result("order-pizza"))
	want := Plan(phase.Exploring, nil)
	if got != want {
		t.Errorf("unknown intent changed parameters: %+v != %+v", got, want)
	}
}

func TestPlan_BlendsTemperature(t *testing.T) {
	t.Parallel()

	got := Plan(phase.Exploring, result(intent.CareerGuidance))
	// (0.6 + 0.5) / 2
	if diff := got.Temperature - 0.55; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Temperature = %v, want 0.55", got.Temperature)
	}
}

func TestPlan_OpeningClamp(t *testing.T) {
	t.Parallel()

	intents := append(intent.All(), "")
	for _, in := range intents {
		got := Plan(phase.Opening, result(in))
		if got.Temperature > 0.8 {
			t.Errorf("intent %q: Temperature = %v, want <= 0.8", in, got.Temperature)
		}
		if got.MaxTokens > 700 {
			t.Errorf("intent %q: MaxTokens = %d, want <= 700", in, got.MaxTokens)
		}
	}

	if got := Plan(phase.Opening, nil); got.Temperature != 0.8 {
		t.Errorf("Plan(opening, nil).Temperature = %v, want 0.8", got.Temperature)
	}
}

func TestPlan_FactualClamp(t *testing.T) {
	t.Parallel()

	factual := []intent.Intent{
		intent.FindJobs,
		intent.ApplicationStatus,
		intent.CourseProgress,
		intent.AssessmentInsights,
	}
	for _, ph := range phase.All() {
		for _, in := range factual {
			got := Plan(ph, result(in))
			if got.Temperature > 0.35 {
				t.Errorf("%s/%s: Temperature = %v, want <= 0.35", ph, in, got.Temperature)
			}
			if got.TopP != 0.75 {
				t.Errorf("%s/%s: TopP = %v, want 0.75", ph, in, got.TopP)
			}
		}
	}
}

func TestPlan_TokenFloor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ph   phase.Phase
		in   intent.Intent
		want int
	}{
		{"floor raises exploring", phase.Exploring, intent.LearningPath, 4000},
		{"floor never lowers", phase.DeepDive, intent.InterviewPrep, 4000},
		{"opening cap wins over floor", phase.Opening, intent.LearningPath, 700},
		{"no floor", phase.Exploring, intent.General, 2000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Plan(tt.ph, result(tt.in)).MaxTokens; got != tt.want {
				t.Errorf("MaxTokens = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPlan_Deterministic(t *testing.T) {
	t.Parallel()

	for _, ph := range phase.All() {
		for _, in := range intent.All() {
			a := Plan(ph, result(in))
			b := Plan(ph, result(in))
			if a != b {
				t.Fatalf("%s/%s not deterministic: %+v vs %+v", ph, in, a, b)
			}
			if a.MaxTokens <= 0 || a.Temperature < 0 || a.Temperature > 1 || a.TopP <= 0 || a.TopP > 1 {
				t.Errorf("%s/%s out of range: %+v", ph, in, a)
			}
		}
	}
}

func TestNew_BlendRatioOverride(t *testing.T) {
	t.Parallel()

	tables := Overrides{BlendRatio: ptr(1.0)}.Apply(DefaultTables())
	p := New(tables)

	got := p.Plan(phase.Exploring, result(intent.General))
	if got.Temperature != 0.6 {
		t.Errorf("Temperature = %v, want intent target 0.6", got.Temperature)
	}
}

func TestNew_CopiesTables(t *testing.T) {
	t.Parallel()

	tables := DefaultTables()
	p := New(tables)
	tables.Base[phase.Exploring] = Parameters{MaxTokens: 1}

	if got := p.Plan(phase.Exploring, nil).MaxTokens; got != 2000 {
		t.Errorf("planner observed caller mutation: MaxTokens = %d", got)
	}
}

func TestOverrides_Apply(t *testing.T) {
	t.Parallel()

	o := Overrides{
		Base:              map[string]PhaseOverride{"exploring": {MaxTokens: ptr(1500)}, "bogus": {MaxTokens: ptr(1)}},
		TargetTemperature: map[string]float64{"general": 0.2},
		TokenFloor:        map[string]int{"resume-review": 3500},
	}
	tables := o.Apply(DefaultTables())

	if got := tables.Base[phase.Exploring]; got.MaxTokens != 1500 || got.Temperature != 0.6 {
		t.Errorf("exploring = %+v, want max_tokens 1500 with default temperature", got)
	}
	if _, ok := tables.Base["bogus"]; ok {
		t.Error("unknown phase should be skipped")
	}
	if tables.TargetTemperature[intent.General] != 0.2 {
		t.Errorf("general target = %v", tables.TargetTemperature[intent.General])
	}
	if tables.TokenFloor[intent.ResumeReview] != 3500 {
		t.Errorf("resume-review floor = %d", tables.TokenFloor[intent.ResumeReview])
	}
	if DefaultTables().TargetTemperature[intent.General] != 0.6 {
		t.Error("Apply mutated the defaults")
	}
}

func TestOverrides_ApplyExplicitZero(t *testing.T) {
	t.Parallel()

	o := Overrides{
		BlendRatio: ptr(0.0),
		Base: map[string]PhaseOverride{
			"exploring": {Temperature: ptr(0.0), FrequencyPenalty: ptr(0.0)},
		},
	}
	if err := o.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	tables := o.Apply(DefaultTables())

	if tables.BlendRatio != 0 {
		t.Errorf("BlendRatio = %v, want 0", tables.BlendRatio)
	}
	got := tables.Base[phase.Exploring]
	if got.Temperature != 0 || got.FrequencyPenalty != 0 {
		t.Errorf("exploring = %+v, want zero temperature and frequency penalty", got)
	}
	if got.MaxTokens != 2000 || got.TopP != 0.9 {
		t.Errorf("exploring = %+v, unset fields should keep defaults", got)
	}

	if temp := New(tables).Plan(phase.Exploring, result(intent.General)).Temperature; temp != 0 {
		t.Errorf("Plan temperature = %v, want 0", temp)
	}
}

func TestOverrides_Validate(t *testing.T) {
	t.Parallel()

	if err := (Overrides{}).Validate(); err != nil {
		t.Fatalf("empty overrides: %v", err)
	}

	tests := []struct {
		name string
		o    Overrides
	}{
		{"blend ratio", Overrides{BlendRatio: ptr(1.5)}},
		{"unknown phase", Overrides{Base: map[string]PhaseOverride{"closing": {}}}},
		{"zero max tokens", Overrides{Base: map[string]PhaseOverride{"opening": {MaxTokens: ptr(0)}}}},
		{"zero top_p", Overrides{Base: map[string]PhaseOverride{"opening": {TopP: ptr(0.0)}}}},
		{"penalty", Overrides{Base: map[string]PhaseOverride{"opening": {PresencePenalty: ptr(2.5)}}}},
		{"intent temperature", Overrides{TargetTemperature: map[string]float64{"find-jobs": 2}}},
		{"unknown intent", Overrides{TokenFloor: map[string]int{"nope": 10}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := tt.o.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
