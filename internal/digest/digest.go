// Package digest picks the capped, diversified cross-label article set
// used for the combined daily summary.
package digest

import (
	"sort"
	"strings"

	"github.com/steelwatch/newsbrief/internal/model"
)

// Select filters scored articles down to digest candidates: excluded
// types are dropped (case-insensitive) along with anything at or below
// minImportance, and the survivors are ordered by importance descending,
// then publish time descending.
func Select(articles []*model.Article, minImportance float64, excludeTypes []string) []*model.Article {
	excluded := make(map[string]struct{}, len(excludeTypes))
	for _, t := range excludeTypes {
		excluded[strings.ToLower(t)] = struct{}{}
	}

	var candidates []*model.Article
	for _, a := range articles {
		if _, skip := excluded[strings.ToLower(string(a.Type))]; skip {
			continue
		}
		if a.ImportanceScore <= minImportance {
			continue
		}
		candidates = append(candidates, a)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].ImportanceScore != candidates[j].ImportanceScore {
			return candidates[i].ImportanceScore > candidates[j].ImportanceScore
		}
		return candidates[i].PublishedAt.After(candidates[j].PublishedAt)
	})
	return candidates
}

// ApplyDiversityLimits walks candidates in sorted order and accepts at
// most each label's cap (the target's MaxPick, else 1 for enterprise
// labels and 2 otherwise), stopping once topN articles are accepted. A
// cap of 0 excludes the label entirely. Global score order is preserved
// among accepted items, so no single prolific label can dominate the
// digest.
func ApplyDiversityLimits(candidates []*model.Article, targets map[string]model.Target, topN int) []*model.Article {
	if topN <= 0 {
		return nil
	}

	counts := make(map[string]int)
	var picked []*model.Article
	for _, a := range candidates {
		cap := labelCap(targets, a.Label)
		if cap == 0 || counts[a.Label] >= cap {
			continue
		}
		counts[a.Label]++
		picked = append(picked, a)
		if len(picked) >= topN {
			break
		}
	}
	return picked
}

func labelCap(targets map[string]model.Target, label string) int {
	if t, ok := targets[label]; ok {
		return t.DigestCap()
	}
	return model.Target{MaxPick: -1}.DigestCap()
}
