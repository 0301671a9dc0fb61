package security

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// Flag names a guardrail finding on a student message or a model reply.
type Flag string

// Input flags. Blocking flags stop the turn before any model call.
const (
	FlagPromptInjection Flag = "prompt_injection"
	FlagSelfHarm        Flag = "self_harm"
	FlagFraud           Flag = "credential_fraud"
	FlagTooLong         Flag = "input_too_long"
	FlagCustomBlock     Flag = "blocked_pattern"
	// FlagContactInfo is informational: contact details are masked in
	// the sanitized input and the turn proceeds.
	FlagContactInfo Flag = "contact_info"
)

// Response flags reported by ValidateResponse. They are logged, never blocking.
const (
	FlagEmptyResponse Flag = "empty_response"
	FlagPromptLeak    Flag = "prompt_leak"
	FlagGuarantee     Flag = "unrealistic_guarantee"
)

const defaultMaxInputChars = 2000

// GuardrailConfig configures input guardrails.
type GuardrailConfig struct {
	// MaxInputChars caps a single message, counted in runes. Default 2000.
	MaxInputChars int `yaml:"max_input_chars"`

	// BlockPatterns are extra case-insensitive regular expressions that
	// block a message with FlagCustomBlock.
	BlockPatterns []string `yaml:"block_patterns"`

	// MaskContactInfo replaces emails and phone numbers in the message
	// before it reaches the model. Default true.
	MaskContactInfo *bool `yaml:"mask_contact_info"`
}

// GuardrailResult is the outcome of checking a student message.
type GuardrailResult struct {
	Passed bool
	Flags  []Flag
	// SanitizedInput is the message to forward when Passed is true.
	SanitizedInput string
}

// Blocked reports the first blocking flag, if any.
func (r GuardrailResult) Blocked() (Flag, bool) {
	for _, f := range r.Flags {
		if f != FlagContactInfo {
			return f, true
		}
	}
	return "", false
}

type flagPattern struct {
	flag Flag
	re   *regexp.Regexp
}

var inputPatterns = []flagPattern{
	{FlagPromptInjection, regexp.MustCompile(`(?i)\b(ignore|forget|disregard|override)\s+(all\s+|any\s+)?(of\s+)?(your|the|my|previous|prior|above|earlier)\s+(\w+\s+)?(instructions|prompts?|rules|guidelines|directions)`)},
	{FlagPromptInjection, regexp.MustCompile(`(?i)\b(reveal|show|print|repeat|leak|output)\s+(me\s+)?(your|the)\s+(\w+\s+)?(system\s+prompt|instructions|prompt)`)},
	{FlagPromptInjection, regexp.MustCompile(`(?i)\b(jailbreak|developer\s+mode|dan\s+mode|do\s+anything\s+now)\b`)},
	{FlagPromptInjection, regexp.MustCompile(`(?i)\byou\s+are\s+(now\s+)?(no\s+longer|not)\s+(a\s+)?career`)},
	{FlagPromptInjection, regexp.MustCompile(`(?i)<\s*/?\s*(system|conversation_memory|assistant)\s*>`)},
	{FlagSelfHarm, regexp.MustCompile(`(?i)\b(kill|hurt|harm)\s+myself\b|\bsuicid(e|al)\b|\bend\s+my\s+life\b`)},
	{FlagFraud, regexp.MustCompile(`(?i)\b(fake|forge|forged|fabricate|falsify)\s+(a\s+|an\s+|my\s+)?(degree|diploma|certificate|transcript|reference|experience|work\s+history|offer\s+letter)`)},
}

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+\d{1,3}[\s.\-]?)?\(?\b\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}\b`)
)

var responsePatterns = []flagPattern{
	{FlagPromptLeak, regexp.MustCompile(`(?i)<\s*/?\s*conversation_memory\s*>|\bmy\s+system\s+prompt\b`)},
	{FlagGuarantee, regexp.MustCompile(`(?i)\b(guarantee[sd]?|100%\s+(sure|certain))\b.{0,40}\b(job|offer|placement|hired|interview)`)},
}

var blockedResponses = map[Flag]string{
	FlagPromptInjection: "I'm here to help with your career journey. I can't change how I work, but I'd be glad to help you explore jobs, build skills, or prepare for interviews.",
	FlagSelfHarm:        "It sounds like you're going through something really difficult. You don't have to face it alone. Please reach out to someone you trust or a local crisis line right now. I'm here for career support whenever you're ready.",
	FlagFraud:           "I can't help with misrepresenting credentials or experience. I can help you present your real strengths in the best possible way, or find courses that close the gap.",
	FlagTooLong:         "That message is a bit long for me to handle at once. Could you break it into a shorter question?",
	FlagCustomBlock:     "I can't help with that request, but I'm happy to help with your career questions.",
}

const defaultBlockedResponse = "I can only help with career-related questions. What would you like to explore about your career?"

// BlockedResponse returns the canned reply sent instead of a model answer
// when a message is blocked with flag.
func BlockedResponse(flag Flag) string {
	if msg, ok := blockedResponses[flag]; ok {
		return msg
	}
	return defaultBlockedResponse
}

// Guardrails checks student messages before they reach the model and
// model replies before they are stored. Safe for concurrent use.
type Guardrails struct {
	maxChars    int
	maskContact bool
	custom      []*regexp.Regexp
}

// NewGuardrails compiles cfg into a Guardrails.
func NewGuardrails(cfg GuardrailConfig) (*Guardrails, error) {
	g := &Guardrails{
		maxChars:    cfg.MaxInputChars,
		maskContact: cfg.MaskContactInfo == nil || *cfg.MaskContactInfo,
	}
	if g.maxChars <= 0 {
		g.maxChars = defaultMaxInputChars
	}
	for _, p := range cfg.BlockPatterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("security: invalid block pattern %q: %w", p, err)
		}
		g.custom = append(g.custom, re)
	}
	return g, nil
}

// Check runs the input guardrails over an already sanitized message.
func (g *Guardrails) Check(input string) GuardrailResult {
	var flags []Flag
	add := func(f Flag) {
		if !slices.Contains(flags, f) {
			flags = append(flags, f)
		}
	}

	if utf8.RuneCountInString(input) > g.maxChars {
		add(FlagTooLong)
	}
	for _, p := range inputPatterns {
		if p.re.MatchString(input) {
			add(p.flag)
		}
	}
	for _, re := range g.custom {
		if re.MatchString(input) {
			add(FlagCustomBlock)
		}
	}

	sanitized := input
	if g.maskContact {
		masked := emailPattern.ReplaceAllString(sanitized, "[email]")
		masked = phonePattern.ReplaceAllString(masked, "[phone]")
		if masked != sanitized {
			add(FlagContactInfo)
			sanitized = masked
		}
	}

	res := GuardrailResult{Flags: flags, SanitizedInput: sanitized}
	_, blocked := res.Blocked()
	res.Passed = !blocked
	return res
}

// ValidateResponse inspects a complete model reply and returns any
// findings. An empty slice means the reply looks fine.
func ValidateResponse(reply string) []Flag {
	var flags []Flag
	if strings.TrimSpace(reply) == "" {
		return []Flag{FlagEmptyResponse}
	}
	for _, p := range responsePatterns {
		if p.re.MatchString(reply) && !slices.Contains(flags, p.flag) {
			flags = append(flags, p.flag)
		}
	}
	return flags
}
