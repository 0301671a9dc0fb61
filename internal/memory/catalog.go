package memory

import (
	"regexp"
	"slices"
)

// Preference keys recognized by the default catalog.
const (
	PrefWorkMode = "workMode"
	PrefLocation = "location"
	PrefJobType  = "jobType"
	PrefIndustry = "industry"
)

// PreferencePattern binds a preference key to a pattern. The first capture
// group, or the whole match when the pattern has none, is the value.
type PreferencePattern struct {
	Key     string
	Pattern *regexp.Regexp
}

// Catalog is the set of patterns an EntityExtractor matches against.
// Patterns run on lower-cased text. A pattern with a capture group
// contributes its first group; otherwise the whole match.
type Catalog struct {
	Jobs        []*regexp.Regexp
	Skills      []*regexp.Regexp
	Companies   []*regexp.Regexp
	Courses     []*regexp.Regexp
	Preferences []PreferencePattern
}

var defaultCatalog = Catalog{
	Jobs: []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b((?:senior |junior |lead )?(?:software|data|web|frontend|front-end|backend|back-end|full[- ]stack|mobile|cloud|devops|security|machine learning|ml|qa|product|ux|ui) (?:engineer|developer|scientist|analyst|designer|manager|architect))s?\b`),
		regexp.MustCompile(`(?i)\b(product manager|project manager|business analyst|data analyst|scrum master|consultant|intern)s?\b`),
	},
	Skills: []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(python|java|javascript|typescript|golang|rust|kotlin|swift|react|angular|vue|node\.?js|django|spring|sql|nosql|mongodb|postgresql|aws|azure|gcp|docker|kubernetes|terraform|git|linux|excel|tableau|power bi|figma)\b`),
		regexp.MustCompile(`(?i)\b(machine learning|deep learning|data analysis|data visualization|statistics|system design|communication|leadership|public speaking|problem solving)\b`),
	},
	Companies: []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(google|microsoft|amazon|meta|apple|netflix|ibm|oracle|salesforce|adobe|infosys|tcs|wipro|accenture|deloitte|capgemini|cognizant|flipkart|swiggy|zomato|uber|airbnb|stripe)\b`),
	},
	Courses: []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:course|courses|certification|certificate|bootcamp|class) (?:on|in|about|for) ([a-z0-9+#.]+(?: (?:learning|science|development|design|analytics|engineering|security|computing|management))?)`),
		regexp.MustCompile(`(?i)\b(cs50|aws certified [a-z]+|google [a-z]+ certificate|pmp)\b`),
	},
	Preferences: []PreferencePattern{
		{Key: PrefWorkMode, Pattern: regexp.MustCompile(`(?i)\b(remote|hybrid|on-?site|in-office)\b`)},
		{Key: PrefLocation, Pattern: regexp.MustCompile(`(?i)\b(?:relocate to|based in|located in|live in|living in|move to|moving to) ([a-z]+(?: (?:york|delhi|francisco|zealand|kingdom|states))?)\b`)},
		{Key: PrefJobType, Pattern: regexp.MustCompile(`(?i)\b(full[- ]time|part[- ]time|internship|contract|freelance)\b`)},
		{Key: PrefIndustry, Pattern: regexp.MustCompile(`(?i)\b(?:interested in|work in|working in) (?:the )?([a-z]+) (?:industry|sector|domain|space)\b`)},
	},
}

// DefaultCatalog returns a copy of the built-in career catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		Jobs:        slices.Clone(defaultCatalog.Jobs),
		Skills:      slices.Clone(defaultCatalog.Skills),
		Companies:   slices.Clone(defaultCatalog.Companies),
		Courses:     slices.Clone(defaultCatalog.Courses),
		Preferences: slices.Clone(defaultCatalog.Preferences),
	}
}
