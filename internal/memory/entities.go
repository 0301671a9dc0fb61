package memory

import (
	"maps"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/flemzord/careerai/pkg/message"
)

// EntityMemory is the set of career entities mentioned in a conversation.
// Sets are lower-cased, deduplicated and sorted.
type EntityMemory struct {
	Jobs        []string          `json:"mentioned_jobs,omitempty"`
	Skills      []string          `json:"mentioned_skills,omitempty"`
	Companies   []string          `json:"mentioned_companies,omitempty"`
	Courses     []string          `json:"mentioned_courses,omitempty"`
	Preferences map[string]string `json:"user_preferences,omitempty"`
}

// IsEmpty reports whether no entity or preference was found.
func (e EntityMemory) IsEmpty() bool {
	return len(e.Jobs) == 0 && len(e.Skills) == 0 && len(e.Companies) == 0 &&
		len(e.Courses) == 0 && len(e.Preferences) == 0
}

// Equal reports whether two memories hold the same entities.
func (e EntityMemory) Equal(o EntityMemory) bool {
	return slices.Equal(e.Jobs, o.Jobs) &&
		slices.Equal(e.Skills, o.Skills) &&
		slices.Equal(e.Companies, o.Companies) &&
		slices.Equal(e.Courses, o.Courses) &&
		maps.Equal(e.Preferences, o.Preferences)
}

// EntityExtractor folds a message history into an EntityMemory.
// It is stateless and safe for concurrent use.
type EntityExtractor struct {
	catalog Catalog
}

// NewEntityExtractor creates an extractor over the given catalog.
// A nil catalog selects DefaultCatalog.
func NewEntityExtractor(c *Catalog) *EntityExtractor {
	if c == nil {
		return &EntityExtractor{catalog: DefaultCatalog()}
	}
	return &EntityExtractor{catalog: *c}
}

var defaultExtractor = NewEntityExtractor(nil)

// Extract runs the default extractor over msgs.
func Extract(msgs []message.Message) EntityMemory {
	return defaultExtractor.Extract(msgs)
}

// Extract scans every message, user and assistant alike. Set membership
// does not depend on message order; a preference takes the value from
// the latest message that mentions it.
func (x *EntityExtractor) Extract(msgs []message.Message) EntityMemory {
	// A Caser carries state and must not be shared between goroutines.
	lower := cases.Lower(language.Und)

	jobs := make(map[string]struct{})
	skills := make(map[string]struct{})
	companies := make(map[string]struct{})
	courses := make(map[string]struct{})
	prefs := make(map[string]string)

	for _, m := range msgs {
		if m.Content == "" {
			continue
		}
		text := lower.String(m.Content)

		collect(jobs, x.catalog.Jobs, text)
		collect(skills, x.catalog.Skills, text)
		collect(companies, x.catalog.Companies, text)
		collect(courses, x.catalog.Courses, text)

		for _, p := range x.catalog.Preferences {
			matches := p.Pattern.FindAllStringSubmatch(text, -1)
			if len(matches) == 0 {
				continue
			}
			if v := matchValue(matches[len(matches)-1]); v != "" {
				prefs[p.Key] = v
			}
		}
	}

	mem := EntityMemory{
		Jobs:      sortedKeys(jobs),
		Skills:    sortedKeys(skills),
		Companies: sortedKeys(companies),
		Courses:   sortedKeys(courses),
	}
	if len(prefs) > 0 {
		mem.Preferences = prefs
	}
	return mem
}

func collect(set map[string]struct{}, patterns []*regexp.Regexp, text string) {
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if v := matchValue(m); v != "" {
				set[v] = struct{}{}
			}
		}
	}
}

// matchValue picks the first capture group when present and normalizes
// internal whitespace.
func matchValue(m []string) string {
	v := m[0]
	if len(m) > 1 && m[1] != "" {
		v = m[1]
	}
	return strings.Join(strings.Fields(v), " ")
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	return slices.Sorted(maps.Keys(set))
}
