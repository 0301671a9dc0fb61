// Package intent classifies the purpose of a user's message. The classifier
// is a replaceable capability: the engine only consumes its Result.
package intent

import "github.com/flemzord/careerai/pkg/message"

// Intent is the classified purpose of a user message.
type Intent string

// Known intents.
const (
	FindJobs             Intent = "find-jobs"
	SkillGap             Intent = "skill-gap"
	InterviewPrep        Intent = "interview-prep"
	ResumeReview         Intent = "resume-review"
	LearningPath         Intent = "learning-path"
	CareerGuidance       Intent = "career-guidance"
	ApplicationStatus    Intent = "application-status"
	CourseProgress       Intent = "course-progress"
	CourseRecommendation Intent = "course-recommendation"
	AssessmentInsights   Intent = "assessment-insights"
	General              Intent = "general"
)

// All returns every known intent. The order breaks scoring ties.
func All() []Intent {
	return []Intent{
		FindJobs,
		ApplicationStatus,
		CourseProgress,
		AssessmentInsights,
		SkillGap,
		InterviewPrep,
		ResumeReview,
		LearningPath,
		CourseRecommendation,
		CareerGuidance,
		General,
	}
}

// Parse returns the Intent named by s, or false if s is not a known intent.
func Parse(s string) (Intent, bool) {
	for _, in := range All() {
		if string(in) == s {
			return in, true
		}
	}
	return "", false
}

// Confidence is a coarse confidence tier.
type Confidence string

// Confidence tiers.
const (
	High   Confidence = "high"
	Medium Confidence = "medium"
	Low    Confidence = "low"
)

// Result is the output of a classification.
type Result struct {
	Intent     Intent     `json:"intent"`
	Confidence Confidence `json:"confidence"`

	// Secondary is the runner-up intent, empty when none scored.
	Secondary Intent `json:"secondary,omitempty"`
}

// Classifier classifies a user message. history is the conversation so far,
// excluding text.
type Classifier interface {
	Classify(text string, chips []string, history []message.Message) Result
}
