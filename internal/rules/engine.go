// Package rules implements the declarative scoring and tagging engine:
// weighted keyword rules evaluated over article text, article-type
// classification, and the static fallback scorer.
package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/steelwatch/newsbrief/internal/model"
)

// Thresholds map an importance score to its High/Medium/Low band.
type Thresholds struct {
	High   float64
	Medium float64
}

// DefaultThresholds are the deployment defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{High: 4.0, Medium: 2.5}
}

// Evaluation is the result of running the rule set against one article.
// Tag sets are sorted for determinism; reasons keep evaluation order.
type Evaluation struct {
	CountryTags       []string
	SectorTags        []string
	PrimaryCountry    string
	ImportanceScore   float64
	ImportanceReasons []string
}

// Build parses flat rule rows into immutable rules. Keyword lists are
// comma-separated, trimmed, and lower-cased; match_field defaults to both.
func Build(raw []model.RawRule) []model.Rule {
	rules := make([]model.Rule, 0, len(raw))
	for _, r := range raw {
		field := model.MatchField(strings.ToLower(r.MatchField))
		if field != model.MatchTitle && field != model.MatchBody {
			field = model.MatchBoth
		}
		rules = append(rules, model.Rule{
			RuleType:         model.RuleType(strings.ToLower(r.RuleType)),
			TagName:          strings.TrimSpace(r.TagName),
			Keywords:         splitKeywords(r.Keywords),
			NegativeKeywords: splitKeywords(r.NegativeKeywords),
			MatchField:       field,
			Weight:           r.Weight,
			Priority:         r.Priority,
			External:         r.External,
		})
	}
	return rules
}

func splitKeywords(s string) []string {
	var out []string
	for _, kw := range strings.Split(s, ",") {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// HasExternalImportance reports whether the rule set contains an
// importance rule supplied by the external rules store. When it does, the
// rule engine owns scoring for the run and the static scorer is unused.
func HasExternalImportance(rules []model.Rule) bool {
	for _, r := range rules {
		if r.External && r.RuleType == model.RuleImportance {
			return true
		}
	}
	return false
}

// Evaluate runs every rule against the article text and accumulates tags,
// the primary country, and the importance score with its breakdown. It is
// a pure function: the same inputs always produce the same outputs, with
// identical tag ordering and reason ordering.
func Evaluate(title, body string, rules []model.Rule) Evaluation {
	titleText := strings.ToLower(title)
	bodyText := strings.ToLower(body)

	countrySet := map[string]struct{}{}
	sectorSet := map[string]struct{}{}
	var eval Evaluation
	primaryPriority := 0.0
	primarySet := false

	for _, rule := range rules {
		if rule.TagName == "" || !matches(rule, titleText, bodyText) {
			continue
		}
		switch rule.RuleType {
		case model.RuleCountry:
			countrySet[rule.TagName] = struct{}{}
			// Priority greater-or-equal keeps the latest match, so on
			// ties the last rule evaluated wins.
			if !primarySet || rule.Priority >= primaryPriority {
				primaryPriority = rule.Priority
				eval.PrimaryCountry = rule.TagName
				primarySet = true
			}
		case model.RuleSector:
			sectorSet[rule.TagName] = struct{}{}
		case model.RuleImportance:
			eval.ImportanceScore += rule.Weight
			eval.ImportanceReasons = append(eval.ImportanceReasons, fmt.Sprintf("%s(%+g)", rule.TagName, rule.Weight))
		}
	}

	eval.CountryTags = sortedKeys(countrySet)
	eval.SectorTags = sortedKeys(sectorSet)
	return eval
}

// matches reports whether the rule fires: at least one keyword is a
// substring of the match target and no negative keyword is.
func matches(rule model.Rule, titleText, bodyText string) bool {
	var target string
	switch rule.MatchField {
	case model.MatchTitle:
		target = titleText
	case model.MatchBody:
		target = bodyText
	default:
		target = titleText + " " + bodyText
	}

	if len(rule.Keywords) == 0 {
		return false
	}
	if !containsAny(target, rule.Keywords) {
		return false
	}
	if containsAny(target, rule.NegativeKeywords) {
		return false
	}
	return true
}

func containsAny(target string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(target, p) {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Label maps an importance score onto its band.
func Label(score float64, t Thresholds) model.Importance {
	switch {
	case score >= t.High:
		return model.ImportanceHigh
	case score >= t.Medium:
		return model.ImportanceMedium
	default:
		return model.ImportanceLow
	}
}
