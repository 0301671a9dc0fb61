package intent

import (
	"testing"

	"github.com/flemzord/careerai/pkg/message"
)

func TestKeywordClassifier_Classify(t *testing.T) {
	t.Parallel()

	c := NewKeywordClassifier(nil)

	tests := []struct {
		name       string
		text       string
		chips      []string
		want       Intent
		wantConf   Confidence
		wantSecond Intent
	}{
		{
			name:     "job search",
			text:     "Can you find job openings for me? Who is hiring?",
			want:     FindJobs,
			wantConf: High,
		},
		{
			name:     "learning path",
			text:     "Give me a roadmap and study plan for data science",
			want:     LearningPath,
			wantConf: Medium,
		},
		{
			name:     "nothing matches",
			text:     "hello there",
			want:     General,
			wantConf: Low,
		},
		{
			name:     "chip outweighs text",
			text:     "help me",
			chips:    []string{"Resume feedback"},
			want:     ResumeReview,
			wantConf: Medium,
		},
		{
			name:       "secondary intent reported",
			text:       "Which skills should i learn before the interview?",
			want:       SkillGap,
			wantConf:   Low,
			wantSecond: InterviewPrep,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := c.Classify(tt.text, tt.chips, nil)
			if got.Intent != tt.want {
				t.Errorf("Intent = %q, want %q", got.Intent, tt.want)
			}
			if got.Confidence != tt.wantConf {
				t.Errorf("Confidence = %q, want %q", got.Confidence, tt.wantConf)
			}
			if tt.wantSecond != "" && got.Secondary != tt.wantSecond {
				t.Errorf("Secondary = %q, want %q", got.Secondary, tt.wantSecond)
			}
		})
	}
}

func TestKeywordClassifier_CarriesOverFromHistory(t *testing.T) {
	t.Parallel()

	c := NewKeywordClassifier(nil)
	history := []message.Message{
		message.NewUser("How do I improve my resume?"),
		message.NewAssistant("Start with a clear summary."),
	}

	got := c.Classify("tell me more", nil, history)
	if got.Intent != ResumeReview {
		t.Errorf("Intent = %q, want %q", got.Intent, ResumeReview)
	}
	if got.Confidence != Low {
		t.Errorf("Confidence = %q, want %q", got.Confidence, Low)
	}
}

func TestKeywordClassifier_CustomCatalog(t *testing.T) {
	t.Parallel()

	c := NewKeywordClassifier(Catalog{CourseProgress: {"streak"}})
	if got := c.Classify("what is my streak", nil, nil); got.Intent != CourseProgress {
		t.Errorf("Intent = %q, want %q", got.Intent, CourseProgress)
	}
	if got := c.Classify("find job openings", nil, nil); got.Intent != General {
		t.Errorf("Intent = %q, want %q (catalog replaced)", got.Intent, General)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	for _, in := range All() {
		got, ok := Parse(string(in))
		if !ok || got != in {
			t.Errorf("Parse(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := Parse("order-pizza"); ok {
		t.Error("Parse accepted an unknown intent")
	}
}
