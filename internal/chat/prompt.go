package chat

import (
	"strings"
	"unicode/utf8"

	"github.com/flemzord/careerai/internal/intent"
	"github.com/flemzord/careerai/internal/phase"
)

const basePrompt = `You are a career guidance assistant for students and early-career professionals.
Help with job search, skill gaps, interview preparation, resumes, courses and learning paths.
Be encouraging and honest. Never promise job offers, salaries or admissions.
Do not ask for or repeat personal contact details.
If a question is outside careers and learning, steer the conversation back politely.`

var intentFocus = map[intent.Intent]string{
	intent.FindJobs:             "The student is looking for openings. Suggest concrete roles and how to search for them.",
	intent.SkillGap:             "The student wants to know what skills they are missing. Compare their current skills to the target role.",
	intent.InterviewPrep:        "The student is preparing for an interview. Give practice questions and structured answer tips.",
	intent.ResumeReview:         "The student wants resume feedback. Be specific about wording, structure and impact.",
	intent.LearningPath:         "The student wants a learning plan. Give ordered steps with realistic timelines.",
	intent.CareerGuidance:       "The student is weighing career directions. Lay out options and trade-offs.",
	intent.ApplicationStatus:    "The student is asking about an application. Explain typical timelines and next steps.",
	intent.CourseProgress:       "The student is asking about course progress. Encourage them and suggest what to do next.",
	intent.CourseRecommendation: "The student wants course suggestions. Recommend courses tied to their goal.",
	intent.AssessmentInsights:   "The student is asking about assessment results. Interpret them and suggest improvements.",
}

// systemParts returns the pieces of the system prompt for a turn.
func systemParts(base string, ph phase.Phase, in intent.Intent) []string {
	if base == "" {
		base = basePrompt
	}
	parts := []string{base}
	if s := ph.Instructions(); s != "" {
		parts = append(parts, "Conversation stage: "+s)
	}
	if s, ok := intentFocus[in]; ok {
		parts = append(parts, s)
	}
	return parts
}

// Title derives a conversation title from the first user message: the
// first 50 runes, cut back to the last word boundary when truncated.
func Title(first string) string {
	s := strings.Join(strings.Fields(first), " ")
	if utf8.RuneCountInString(s) <= titleMaxRunes {
		return s
	}
	runes := []rune(s)[:titleMaxRunes]
	cut := string(runes)
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:-") + "..."
}
