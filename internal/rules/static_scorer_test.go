package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/steelwatch/newsbrief/internal/model"
)

func testScoringConfig() ScoringConfig {
	return ScoringConfig{
		Weights: map[string]float64{
			"base":                1,
			"stock":               -1,
			"business":            2,
			"green":               1.5,
			"other":               0,
			"high_impact_keyword": 2,
			"low_impact_keyword":  -2,
		},
		Keywords: map[string][]string{
			"high_impact": {"acquisition", "capacity expansion"},
			"low_impact":  {"weekly roundup"},
		},
		SourceTrust: []SourceTrust{
			{Match: "nikkei", Weight: 1},
			{Match: "blogspot", Weight: -2},
		},
	}
}

func TestStaticScorer_ReasonOrderIsFixed(t *testing.T) {
	s := NewStaticScorer(testScoringConfig())

	score, reasons := s.Score(&model.Article{
		Title:       "Acquisition closes",
		BodyPreview: "capacity expansion planned",
		Type:        model.TypeBusiness,
		Source:      "Nikkei Asia",
		SourceURL:   "https://nikkei.com/a",
	})

	assert.InDelta(t, 6.0, score, 1e-9) // base 1 + business 2 + high impact 2 + nikkei 1
	assert.Equal(t, []string{"base(+1)", "type:business(+2)", "high_impact(+2)", "source:nikkei(+1)"}, reasons)
}

func TestStaticScorer_UnknownTypeFallsBackToOther(t *testing.T) {
	s := NewStaticScorer(testScoringConfig())

	score, reasons := s.Score(&model.Article{Title: "plain", Type: model.ArticleType("WEIRD")})
	assert.InDelta(t, 1.0, score, 1e-9)
	assert.Equal(t, []string{"base(+1)", "type:weird(+0)"}, reasons)
}

func TestStaticScorer_LowImpactAndDistrust(t *testing.T) {
	s := NewStaticScorer(testScoringConfig())

	score, _ := s.Score(&model.Article{
		Title:     "Weekly roundup of steel prices",
		Type:      model.TypeStock,
		SourceURL: "https://steel.blogspot.com/post",
	})
	// base 1 + stock -1 + low impact -2 + blogspot -2
	assert.InDelta(t, -4.0, score, 1e-9)
}
