// Package phase maps the length of a conversation to a coarse stage used to
// scale reply length and creativity.
package phase

// Phase is the stage a conversation has reached.
type Phase string

// Conversation phases, in the order a conversation moves through them.
const (
	Opening   Phase = "opening"
	Exploring Phase = "exploring"
	DeepDive  Phase = "deep_dive"
	FollowUp  Phase = "follow_up"
)

// Upper bounds (inclusive) of the message count for each non-terminal phase.
const (
	openingMaxCount   = 0
	exploringMaxCount = 4
	deepDiveMaxCount  = 10
)

// Classify returns the phase for a conversation holding count messages
// before the current user message is added. Negative counts are treated
// as zero.
func Classify(count int) Phase {
	switch {
	case count <= openingMaxCount:
		return Opening
	case count <= exploringMaxCount:
		return Exploring
	case count <= deepDiveMaxCount:
		return DeepDive
	default:
		return FollowUp
	}
}

// All returns every phase in progression order.
func All() []Phase {
	return []Phase{Opening, Exploring, DeepDive, FollowUp}
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	_, ok := descriptions[p]
	return ok
}

// String implements fmt.Stringer.
func (p Phase) String() string {
	return string(p)
}

// Description returns a short human-readable description of the phase.
func (p Phase) Description() string {
	return descriptions[p]
}

// Instructions returns the reply-style guidance spliced into the system
// prompt for the phase.
func (p Phase) Instructions() string {
	return instructions[p]
}

var descriptions = map[Phase]string{
	Opening:   "First contact: greet, understand the goal, keep it short.",
	Exploring: "Early conversation: clarify needs and introduce specifics.",
	DeepDive:  "Focused discussion: detailed, structured, actionable guidance.",
	FollowUp:  "Long-running conversation: build on what was already covered.",
}

var instructions = map[Phase]string{
	Opening: `## FIRST MESSAGE
This is the first message of the conversation. Keep the reply short and conversational.
- At most 150 words
- No bullet points or numbered lists
- Acknowledge warmly, give a brief answer, ask ONE follow-up question`,
	Exploring: `## EARLY CONVERSATION
- Moderate depth (200-400 words)
- Build on previous context naturally
- Start introducing specific jobs, skills, and courses
- End with a question or an offer to go deeper`,
	DeepDive: `## DEEP CONVERSATION
- Comprehensive, structured explanations
- Reference the student's profile, skills, and opportunities explicitly
- Use headings and lists when they help
- Give concrete next steps`,
	FollowUp: `## ONGOING CONVERSATION
- Do not repeat advice already given; refer back to it briefly
- Use the conversation memory to stay consistent
- Be direct and concise unless the student asks for depth`,
}
