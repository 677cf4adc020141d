package model

// RuleType distinguishes what a rule contributes to an article.
type RuleType string

const (
	RuleCountry    RuleType = "country"
	RuleSector     RuleType = "sector"
	RuleImportance RuleType = "importance"
)

// MatchField selects the text a rule's keywords are matched against.
type MatchField string

const (
	MatchTitle MatchField = "title"
	MatchBody  MatchField = "body"
	MatchBoth  MatchField = "both"
)

// RawRule is a flat rule row as loaded from the rules database or a static
// YAML file, before keyword parsing.
type RawRule struct {
	RuleType         string  `yaml:"rule_type" json:"rule_type"`
	TagName          string  `yaml:"tag_name" json:"tag_name"`
	Keywords         string  `yaml:"keywords" json:"keywords"`
	NegativeKeywords string  `yaml:"negative_keywords" json:"negative_keywords"`
	MatchField       string  `yaml:"match_field" json:"match_field"`
	Weight           float64 `yaml:"weight" json:"weight"`
	Priority         float64 `yaml:"priority" json:"priority"`
	Notes            string  `yaml:"notes,omitempty" json:"notes,omitempty"`

	// External marks rules loaded from the external rules store rather
	// than static configuration. An external importance rule replaces the
	// static scorer for the run.
	External bool `yaml:"-" json:"-"`
}

// Rule is an immutable, parsed scoring/tagging rule. Keywords are trimmed
// and lower-cased; matching is case-insensitive substring containment.
type Rule struct {
	RuleType         RuleType
	TagName          string
	Keywords         []string
	NegativeKeywords []string
	MatchField       MatchField
	Weight           float64 // importance rules only
	Priority         float64 // country rules only, primary-country tie-break
	External         bool
}
