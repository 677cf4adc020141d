// Package source loads scoring/tagging rules and fetch targets from the
// external rules store and from static YAML configuration, and merges
// them for a run.
package source

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/steelwatch/newsbrief/internal/model"
	"github.com/steelwatch/newsbrief/pkg/notion"
)

// LoadRules queries the Notion rules database for all enabled rule rows.
// Rows missing a rule type or tag name are skipped with a warning.
func LoadRules(ctx context.Context, client notion.Client, dbID string) ([]model.RawRule, error) {
	pages, err := notion.QueryEnabled(ctx, client, dbID)
	if err != nil {
		return nil, eris.Wrap(err, "source: load rules")
	}

	var rules []model.RawRule
	for _, p := range pages {
		r, err := parseRulePage(p)
		if err != nil {
			zap.L().Warn("source: skipping malformed rule page",
				zap.String("page_id", string(p.ID)),
				zap.Error(err),
			)
			continue
		}
		rules = append(rules, r)
	}

	return rules, nil
}

func parseRulePage(p notionapi.Page) (model.RawRule, error) {
	r := model.RawRule{External: true}

	if prop, ok := p.Properties["RuleType"]; ok {
		r.RuleType = notion.SelectValue(prop)
	}
	if prop, ok := p.Properties["TagName"]; ok {
		r.TagName = notion.TextValue(prop)
	}
	if prop, ok := p.Properties["Keywords"]; ok {
		r.Keywords = notion.TextValue(prop)
	}
	if prop, ok := p.Properties["NegativeKeywords"]; ok {
		r.NegativeKeywords = notion.TextValue(prop)
	}
	if prop, ok := p.Properties["MatchField"]; ok {
		r.MatchField = notion.SelectValue(prop)
	}
	if prop, ok := p.Properties["Weight"]; ok {
		if n, valid := notion.NumberValue(prop); valid {
			r.Weight = n
		}
	}
	if prop, ok := p.Properties["Priority"]; ok {
		if n, valid := notion.NumberValue(prop); valid {
			r.Priority = n
		}
	}
	if prop, ok := p.Properties["Notes"]; ok {
		r.Notes = notion.TextValue(prop)
	}

	if r.RuleType == "" {
		return r, eris.New("missing RuleType property")
	}
	if r.TagName == "" {
		return r, eris.New("missing TagName property")
	}

	return r, nil
}

// Merge combines static rules with externally stored ones. External rules
// are appended after static rules so that on primary-country priority ties
// the external store wins.
func Merge(static, external []model.RawRule) []model.RawRule {
	merged := make([]model.RawRule, 0, len(static)+len(external))
	merged = append(merged, static...)
	merged = append(merged, external...)
	return merged
}
