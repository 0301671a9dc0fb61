package intent

import (
	"strings"

	"github.com/flemzord/careerai/pkg/message"
)

// chipWeight is the score a matching quick-reply chip contributes. Chips are
// explicit user choices, so they outweigh a single keyword hit.
const chipWeight = 2

// Catalog maps each intent to the lower-case substrings that signal it.
type Catalog map[Intent][]string

// DefaultCatalog returns the built-in keyword table.
func DefaultCatalog() Catalog {
	return Catalog{
		FindJobs: {
			"find job", "job opening", "job opportunit", "vacanc", "hiring",
			"openings", "recommend job", "jobs for me", "looking for a job",
			"internship", "placement", "apply for",
		},
		ApplicationStatus: {
			"application status", "my application", "applied to", "status of my",
			"shortlisted", "interview call", "heard back",
		},
		CourseProgress: {
			"my progress", "course progress", "completed course", "how far",
			"my courses", "modules left", "lessons left",
		},
		AssessmentInsights: {
			"assessment", "test result", "my score", "aptitude", "personality",
			"my report", "riasec",
		},
		SkillGap: {
			"skill gap", "missing skill", "what skills", "should i learn",
			"need to learn", "upskill", "reskill", "lack",
		},
		InterviewPrep: {
			"interview", "mock", "hr round", "technical round", "behavioral question",
		},
		ResumeReview: {
			"resume", "cv", "cover letter", "portfolio",
		},
		LearningPath: {
			"learning path", "roadmap", "how to learn", "study plan",
			"where to start", "step by step",
		},
		CourseRecommendation: {
			"recommend course", "which course", "course for", "certification",
			"suggest a course", "best course",
		},
		CareerGuidance: {
			"career", "which field", "future", "switch", "path for me",
			"what should i do", "guidance",
		},
	}
}

// KeywordClassifier scores each intent by counting catalog substrings in the
// message and selected chips.
type KeywordClassifier struct {
	catalog Catalog
}

// Compile-time interface check.
var _ Classifier = (*KeywordClassifier)(nil)

// NewKeywordClassifier creates a classifier over catalog. A nil catalog
// selects DefaultCatalog.
func NewKeywordClassifier(catalog Catalog) *KeywordClassifier {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &KeywordClassifier{catalog: catalog}
}

// Classify implements Classifier.
//
// When nothing in text scores, the intent of the latest user message in
// history is carried over at Low confidence, so short follow-ups like
// "tell me more" keep the topic.
func (c *KeywordClassifier) Classify(text string, chips []string, history []message.Message) Result {
	first, second := c.rank(text, chips)
	if first.score == 0 {
		for i := len(history) - 1; i >= 0; i-- {
			if !history[i].IsUser() {
				continue
			}
			prev, _ := c.rank(history[i].Content, nil)
			if prev.score > 0 {
				return Result{Intent: prev.intent, Confidence: Low}
			}
			break
		}
		return Result{Intent: General, Confidence: Low}
	}

	res := Result{Intent: first.intent, Confidence: tier(first.score, second.score)}
	if second.score > 0 {
		res.Secondary = second.intent
	}
	return res
}

type scored struct {
	intent Intent
	score  int
}

// rank returns the two best-scoring intents. Ties keep All() order.
func (c *KeywordClassifier) rank(text string, chips []string) (first, second scored) {
	lower := strings.ToLower(text)
	lowerChips := make([]string, len(chips))
	for i, chip := range chips {
		lowerChips[i] = strings.ToLower(chip)
	}

	for _, in := range All() {
		score := 0
		for _, kw := range c.catalog[in] {
			if strings.Contains(lower, kw) {
				score++
			}
			for _, chip := range lowerChips {
				if strings.Contains(chip, kw) {
					score += chipWeight
				}
			}
		}
		cur := scored{intent: in, score: score}
		switch {
		case score > first.score:
			second = first
			first = cur
		case score > second.score:
			second = cur
		}
	}
	return first, second
}

// tier maps the winning score and the runner-up score to a confidence tier.
// A tie with the runner-up drops one tier.
func tier(top, runnerUp int) Confidence {
	var c Confidence
	switch {
	case top >= 3:
		c = High
	case top == 2:
		c = Medium
	default:
		c = Low
	}
	if runnerUp == top {
		switch c {
		case High:
			c = Medium
		case Medium:
			c = Low
		}
	}
	return c
}
