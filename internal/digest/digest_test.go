package digest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steelwatch/newsbrief/internal/model"
)

func article(label string, score float64, published time.Time) *model.Article {
	return &model.Article{Label: label, ImportanceScore: score, PublishedAt: published, Type: model.TypeBusiness}
}

func TestSelect_DropsNonPositiveImportance(t *testing.T) {
	now := time.Now().UTC()
	articles := []*model.Article{
		article("A", -5, now),
		article("B", 0, now),
		article("C", 1, now),
	}

	got := Select(articles, 0, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "C", got[0].Label)
}

func TestSelect_ExcludesTypesCaseInsensitive(t *testing.T) {
	now := time.Now().UTC()
	stock := article("A", 5, now)
	stock.Type = model.TypeStock
	business := article("B", 5, now)

	got := Select([]*model.Article{stock, business}, 0, []string{"stock"})
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].Label)
}

func TestSelect_SortsByScoreThenRecency(t *testing.T) {
	base := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	older := article("old", 3, base.Add(-2*time.Hour))
	newer := article("new", 3, base)
	top := article("top", 7, base.Add(-6*time.Hour))

	got := Select([]*model.Article{older, newer, top}, 0, nil)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"top", "new", "old"}, []string{got[0].Label, got[1].Label, got[2].Label})
}

func TestApplyDiversityLimits_EnterpriseCapOne(t *testing.T) {
	now := time.Now().UTC()
	targets := map[string]model.Target{
		"acme":        {Label: "acme", Enterprise: true, MaxPick: -1},
		"green steel": {Label: "green steel", MaxPick: -1},
	}
	candidates := []*model.Article{
		article("acme", 9, now),
		article("acme", 8, now),
		article("green steel", 7, now),
		article("green steel", 6, now),
		article("green steel", 5, now),
	}

	picked := ApplyDiversityLimits(candidates, targets, 10)
	require.Len(t, picked, 3)
	assert.Equal(t, 9.0, picked[0].ImportanceScore) // only the top acme article
	assert.Equal(t, 7.0, picked[1].ImportanceScore)
	assert.Equal(t, 6.0, picked[2].ImportanceScore) // theme cap is 2
}

func TestApplyDiversityLimits_ExplicitMaxPick(t *testing.T) {
	now := time.Now().UTC()
	targets := map[string]model.Target{
		"muted":  {Label: "muted", MaxPick: 0},
		"triple": {Label: "triple", Enterprise: true, MaxPick: 3},
	}
	candidates := []*model.Article{
		article("muted", 9, now),
		article("triple", 8, now),
		article("triple", 7, now),
		article("triple", 6, now),
		article("triple", 5, now),
	}

	picked := ApplyDiversityLimits(candidates, targets, 10)
	require.Len(t, picked, 3)
	for _, a := range picked {
		assert.Equal(t, "triple", a.Label)
	}
}

func TestApplyDiversityLimits_TopNStops(t *testing.T) {
	now := time.Now().UTC()
	var candidates []*model.Article
	for i := 0; i < 10; i++ {
		candidates = append(candidates, article("theme", float64(10-i), now))
	}
	// Unknown labels default to the theme cap of 2.
	picked := ApplyDiversityLimits(candidates, nil, 1)
	require.Len(t, picked, 1)
	assert.Equal(t, 10.0, picked[0].ImportanceScore)
}
