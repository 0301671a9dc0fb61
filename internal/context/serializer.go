package ctxengine

import (
	"encoding/json"
	"strings"
)

// SerializeMemory renders the memory block appended to the system prompt.
// It returns "" when the summary and every entity set are empty. Inner
// tags are emitted in a fixed order and only when non-empty.
func SerializeMemory(cc CompressedContext) string {
	ents := cc.RelevantEntities
	if cc.MemorySummary == "" && ents.IsEmpty() {
		return ""
	}

	var b strings.Builder
	b.WriteString("<conversation_memory>\n")
	writeTag(&b, "summary", cc.MemorySummary)
	writeTag(&b, "discussed_jobs", strings.Join(ents.Jobs, ", "))
	writeTag(&b, "discussed_skills", strings.Join(ents.Skills, ", "))
	writeTag(&b, "discussed_companies", strings.Join(ents.Companies, ", "))
	writeTag(&b, "discussed_courses", strings.Join(ents.Courses, ", "))
	if len(ents.Preferences) > 0 {
		// Map keys are marshaled in sorted order.
		if data, err := json.Marshal(ents.Preferences); err == nil {
			writeTag(&b, "user_preferences", string(data))
		}
	}
	b.WriteString("</conversation_memory>")
	return b.String()
}

func writeTag(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	b.WriteString("<")
	b.WriteString(name)
	b.WriteString(">")
	b.WriteString(value)
	b.WriteString("</")
	b.WriteString(name)
	b.WriteString(">\n")
}

// MemoryTokens estimates the prompt cost of a serialized memory block.
// A nil estimator selects a CharEstimator with the default ratio.
func MemoryTokens(estimator TokenEstimator, block string) int {
	if estimator == nil {
		estimator = NewCharEstimator(0)
	}
	return estimator.Estimate(block)
}
