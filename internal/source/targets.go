package source

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/steelwatch/newsbrief/internal/model"
	"github.com/steelwatch/newsbrief/pkg/notion"
)

// LoadTargets queries the Notion targets database for all enabled labels.
// Rows without a label are skipped with a warning.
func LoadTargets(ctx context.Context, client notion.Client, dbID string) ([]model.Target, error) {
	pages, err := notion.QueryEnabled(ctx, client, dbID)
	if err != nil {
		return nil, eris.Wrap(err, "source: load targets")
	}

	var targets []model.Target
	for _, p := range pages {
		t, err := parseTargetPage(p)
		if err != nil {
			zap.L().Warn("source: skipping malformed target page",
				zap.String("page_id", string(p.ID)),
				zap.Error(err),
			)
			continue
		}
		targets = append(targets, t)
	}

	return targets, nil
}

func parseTargetPage(p notionapi.Page) (model.Target, error) {
	t := model.Target{Kind: model.KindQuery, MaxPick: -1}

	if prop, ok := p.Properties["Label"]; ok {
		t.Label = strings.TrimSpace(notion.TextValue(prop))
	}
	if t.Label == "" {
		return t, eris.New("missing Label property")
	}

	if prop, ok := p.Properties["Query"]; ok {
		if q := strings.TrimSpace(notion.TextValue(prop)); q != "" {
			t.Queries = splitList(q)
		}
	}
	if prop, ok := p.Properties["RSS"]; ok {
		if f := strings.TrimSpace(notion.TextValue(prop)); f != "" {
			t.Feeds = splitList(f)
		}
	}
	if prop, ok := p.Properties["Kind"]; ok {
		switch notion.SelectValue(prop) {
		case string(model.KindFeed):
			t.Kind = model.KindFeed
		case string(model.KindQuery):
			t.Kind = model.KindQuery
		}
	}
	if prop, ok := p.Properties["Enterprise"]; ok {
		t.Enterprise = notion.CheckboxValue(prop)
	}
	if prop, ok := p.Properties["MaxPick"]; ok {
		if n, valid := notion.NumberValue(prop); valid {
			t.MaxPick = int(n)
		}
	}

	if len(t.Queries) == 0 && len(t.Feeds) == 0 {
		// Fall back to the label itself as the search query.
		t.Queries = []string{t.Label}
	}

	return t, nil
}

// splitList splits a newline- or comma-separated cell into trimmed values.
func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == ','
	})
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// MergeTargets overlays external targets on top of static ones, keyed by
// label. An external row with the same label replaces the static row.
func MergeTargets(static, external []model.Target) []model.Target {
	seen := make(map[string]int, len(static))
	merged := make([]model.Target, 0, len(static)+len(external))
	for _, t := range static {
		seen[t.Label] = len(merged)
		merged = append(merged, t)
	}
	for _, t := range external {
		if i, ok := seen[t.Label]; ok {
			merged[i] = t
			continue
		}
		seen[t.Label] = len(merged)
		merged = append(merged, t)
	}
	return merged
}
