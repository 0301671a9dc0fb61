package ctxengine

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/flemzord/careerai/pkg/message"
)

// Topic is a summary label and the substrings that tag a query with it.
// Keywords of two runes or fewer must match a whole word.
type Topic struct {
	Label    string
	Keywords []string
}

var defaultTopics = []Topic{
	{Label: "job search", Keywords: []string{"job", "hiring", "vacanc", "opening", "position", "apply"}},
	{Label: "skills", Keywords: []string{"skill", "learn", "technolog", "programming"}},
	{Label: "interview prep", Keywords: []string{"interview"}},
	{Label: "resume", Keywords: []string{"resume", "résumé", "cv", "portfolio"}},
	{Label: "career guidance", Keywords: []string{"career", "path", "future", "switch"}},
	{Label: "courses", Keywords: []string{"course", "certification", "training", "bootcamp"}},
}

const noTopicLabel = "general career questions"

// DefaultTopics returns a copy of the vocabulary used to tag user queries.
func DefaultTopics() []Topic {
	return slices.Clone(defaultTopics)
}

// Summarizer produces a deterministic, extractive summary of older messages.
type Summarizer struct {
	topics []Topic
	cfg    Config
}

// NewSummarizer creates a summarizer. A nil topics slice selects DefaultTopics.
func NewSummarizer(topics []Topic, cfg Config) *Summarizer {
	if topics == nil {
		topics = defaultTopics
	}
	return &Summarizer{topics: topics, cfg: cfg.withDefaults()}
}

var defaultSummarizer = NewSummarizer(nil, Config{})

// Summarize runs the default summarizer.
func Summarize(msgs []message.Message) string {
	return defaultSummarizer.Summarize(msgs)
}

// Summarize returns "" when msgs is shorter than MinSummaryMessages.
// Otherwise only user messages are considered: each is truncated to
// QueryPreviewChars runes, tagged with topics, and the last RecentQueries
// are quoted.
func (s *Summarizer) Summarize(msgs []message.Message) string {
	if len(msgs) < s.cfg.MinSummaryMessages {
		return ""
	}

	var (
		queries []string
		topics  []string
		seen    = make(map[string]bool)
	)
	for _, m := range msgs {
		if !m.IsUser() {
			continue
		}
		q := strings.TrimSpace(truncateRunes(m.Content, s.cfg.QueryPreviewChars))
		if q == "" {
			continue
		}
		queries = append(queries, q)

		lower := strings.ToLower(q)
		for _, t := range s.topics {
			if seen[t.Label] || !containsAny(lower, t.Keywords) {
				continue
			}
			seen[t.Label] = true
			topics = append(topics, t.Label)
		}
	}
	if len(queries) == 0 {
		return ""
	}

	if len(queries) > s.cfg.RecentQueries {
		queries = queries[len(queries)-s.cfg.RecentQueries:]
	}
	covered := noTopicLabel
	if len(topics) > 0 {
		covered = strings.Join(topics, ", ")
	}

	var b strings.Builder
	b.WriteString("Previous discussion covered: ")
	b.WriteString(covered)
	b.WriteString(". User asked about: ")
	b.WriteString(strings.Join(queries, "; "))
	return b.String()
}

func containsAny(s string, subs []string) bool {
	var words []string
	for _, sub := range subs {
		if utf8.RuneCountInString(sub) > shortKeywordRunes {
			if strings.Contains(s, sub) {
				return true
			}
			continue
		}
		if words == nil {
			words = strings.FieldsFunc(s, func(r rune) bool {
				return !unicode.IsLetter(r) && !unicode.IsDigit(r)
			})
		}
		if slices.Contains(words, sub) {
			return true
		}
	}
	return false
}

const shortKeywordRunes = 2

// truncateRunes returns at most n runes of s.
func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
