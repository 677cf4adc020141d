package rules

import (
	"fmt"
	"strings"

	"github.com/steelwatch/newsbrief/internal/model"
)

// SourceTrust weights a source by substring match against the article's
// source name or URL.
type SourceTrust struct {
	Match  string  `yaml:"match"`
	Weight float64 `yaml:"weight"`
}

// ScoringConfig holds the static fallback scoring tables: flat weights,
// impact keyword lists, and the source-trust table.
type ScoringConfig struct {
	Weights     map[string]float64  `yaml:"weights"`
	Keywords    map[string][]string `yaml:"keywords"`
	SourceTrust []SourceTrust       `yaml:"source_trust"`
}

// StaticScorer scores articles from static configuration. It is the
// fallback used whenever the run's external rules supply no importance
// rule.
type StaticScorer struct {
	cfg ScoringConfig
}

// NewStaticScorer builds a scorer over the given tables.
func NewStaticScorer(cfg ScoringConfig) *StaticScorer {
	return &StaticScorer{cfg: cfg}
}

// Score computes the article's importance score and its breakdown. The
// reasons always start with the base weight and the type weight, in that
// order, before any conditional bonuses, so score breakdowns stay
// reproducible across runs.
func (s *StaticScorer) Score(a *model.Article) (float64, []string) {
	text := strings.ToLower(a.Title) + " " + strings.ToLower(a.BodyPreview)

	score := s.weight("base")
	reasons := []string{fmt.Sprintf("base(%+g)", s.weight("base"))}

	typeKey := strings.ToLower(string(a.Type))
	typeWeight, ok := s.cfg.Weights[typeKey]
	if !ok {
		typeWeight = s.weight("other")
	}
	score += typeWeight
	reasons = append(reasons, fmt.Sprintf("type:%s(%+g)", typeKey, typeWeight))

	if s.matchesAny(text, "high_impact") {
		w := s.weight("high_impact_keyword")
		score += w
		reasons = append(reasons, fmt.Sprintf("high_impact(%+g)", w))
	}
	if s.matchesAny(text, "low_impact") {
		w := s.weight("low_impact_keyword")
		score += w
		reasons = append(reasons, fmt.Sprintf("low_impact(%+g)", w))
	}

	sourceText := strings.ToLower(a.Source) + " " + strings.ToLower(a.SourceURL)
	for _, trust := range s.cfg.SourceTrust {
		match := strings.ToLower(trust.Match)
		if match != "" && strings.Contains(sourceText, match) {
			score += trust.Weight
			reasons = append(reasons, fmt.Sprintf("source:%s(%+g)", trust.Match, trust.Weight))
		}
	}

	return score, reasons
}

func (s *StaticScorer) weight(key string) float64 {
	return s.cfg.Weights[key]
}

func (s *StaticScorer) matchesAny(text, listKey string) bool {
	for _, kw := range s.cfg.Keywords[listKey] {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
