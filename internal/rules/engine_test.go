package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steelwatch/newsbrief/internal/model"
)

func TestBuild_ParsesKeywordsAndDefaults(t *testing.T) {
	rules := Build([]model.RawRule{
		{RuleType: "Country", TagName: " India ", Keywords: "India, Mumbai , NEW DELHI", NegativeKeywords: "indiana"},
		{RuleType: "importance", TagName: "expansion", Keywords: "capacity", MatchField: "TITLE", Weight: 2},
	})

	require.Len(t, rules, 2)
	assert.Equal(t, model.RuleCountry, rules[0].RuleType)
	assert.Equal(t, "India", rules[0].TagName)
	assert.Equal(t, []string{"india", "mumbai", "new delhi"}, rules[0].Keywords)
	assert.Equal(t, []string{"indiana"}, rules[0].NegativeKeywords)
	assert.Equal(t, model.MatchBoth, rules[0].MatchField)
	assert.Equal(t, model.MatchTitle, rules[1].MatchField)
	assert.Equal(t, 2.0, rules[1].Weight)
}

func TestEvaluate_TagsScoreAndReasons(t *testing.T) {
	rules := Build([]model.RawRule{
		{RuleType: "country", TagName: "Japan", Keywords: "tokyo,japan", Priority: 1},
		{RuleType: "country", TagName: "India", Keywords: "india", Priority: 2},
		{RuleType: "sector", TagName: "Automotive", Keywords: "automotive"},
		{RuleType: "importance", TagName: "capacity", Keywords: "blast furnace", Weight: 2},
		{RuleType: "importance", TagName: "downtime", Keywords: "outage", Weight: -1.5},
	})

	eval := Evaluate(
		"Japan and India automotive demand lifts steel",
		"A new blast furnace offsets the outage at the Tokyo works.",
		rules,
	)

	assert.Equal(t, []string{"India", "Japan"}, eval.CountryTags)
	assert.Equal(t, []string{"Automotive"}, eval.SectorTags)
	assert.Equal(t, "India", eval.PrimaryCountry)
	assert.InDelta(t, 0.5, eval.ImportanceScore, 1e-9)
	assert.Equal(t, []string{"capacity(+2)", "downtime(-1.5)"}, eval.ImportanceReasons)
}

func TestEvaluate_NegativeKeywordBlocks(t *testing.T) {
	rules := Build([]model.RawRule{
		{RuleType: "sector", TagName: "Construction", Keywords: "construction", NegativeKeywords: "road construction"},
	})

	eval := Evaluate("Road construction delays", "", rules)
	assert.Empty(t, eval.SectorTags)

	eval = Evaluate("Construction steel demand up", "", rules)
	assert.Equal(t, []string{"Construction"}, eval.SectorTags)
}

func TestEvaluate_PrimaryCountryTieKeepsLatest(t *testing.T) {
	rules := Build([]model.RawRule{
		{RuleType: "country", TagName: "First", Keywords: "steel", Priority: 3},
		{RuleType: "country", TagName: "Second", Keywords: "steel", Priority: 3},
	})

	eval := Evaluate("steel", "", rules)
	assert.Equal(t, "Second", eval.PrimaryCountry)
}

func TestEvaluate_MatchFieldScoping(t *testing.T) {
	rules := Build([]model.RawRule{
		{RuleType: "sector", TagName: "TitleOnly", Keywords: "merger", MatchField: "title"},
		{RuleType: "sector", TagName: "BodyOnly", Keywords: "merger", MatchField: "body"},
	})

	eval := Evaluate("Merger announced", "unrelated body", rules)
	assert.Equal(t, []string{"TitleOnly"}, eval.SectorTags)

	eval = Evaluate("unrelated title", "a merger closed", rules)
	assert.Equal(t, []string{"BodyOnly"}, eval.SectorTags)
}

func TestEvaluate_EmptyKeywordsNeverMatch(t *testing.T) {
	rules := Build([]model.RawRule{
		{RuleType: "sector", TagName: "Everything"},
		{RuleType: "importance", Keywords: "steel", Weight: 5}, // no tag name
	})

	eval := Evaluate("steel news", "steel body", rules)
	assert.Empty(t, eval.SectorTags)
	assert.Zero(t, eval.ImportanceScore)
}

func TestEvaluate_Idempotent(t *testing.T) {
	rules := Build([]model.RawRule{
		{RuleType: "country", TagName: "Japan", Keywords: "japan", Priority: 1},
		{RuleType: "country", TagName: "Korea", Keywords: "korea", Priority: 1},
		{RuleType: "importance", TagName: "expansion", Keywords: "expansion", Weight: 3},
		{RuleType: "importance", TagName: "minor", Keywords: "japan", Weight: 0.5},
	})

	first := Evaluate("Japan Korea expansion", "body text", rules)
	second := Evaluate("Japan Korea expansion", "body text", rules)
	assert.Equal(t, first, second)
}

func TestHasExternalImportance(t *testing.T) {
	static := Build([]model.RawRule{{RuleType: "importance", TagName: "x", Keywords: "x", Weight: 1}})
	assert.False(t, HasExternalImportance(static))

	external := Build([]model.RawRule{{RuleType: "importance", TagName: "x", Keywords: "x", Weight: 1, External: true}})
	assert.True(t, HasExternalImportance(external))

	externalCountry := Build([]model.RawRule{{RuleType: "country", TagName: "x", Keywords: "x", External: true}})
	assert.False(t, HasExternalImportance(externalCountry))
}

func TestLabel(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, model.ImportanceHigh, Label(4.0, th))
	assert.Equal(t, model.ImportanceHigh, Label(6.2, th))
	assert.Equal(t, model.ImportanceMedium, Label(2.5, th))
	assert.Equal(t, model.ImportanceMedium, Label(3.9, th))
	assert.Equal(t, model.ImportanceLow, Label(2.49, th))
	assert.Equal(t, model.ImportanceLow, Label(-1, th))
}

func TestClassify_PriorityOrder(t *testing.T) {
	assert.Equal(t, model.TypeStock, Classify("Analyst raises target price", ""))
	assert.Equal(t, model.TypeBusiness, Classify("New plant investment", ""))
	assert.Equal(t, model.TypeGreen, Classify("Green steel via hydrogen", ""))
	assert.Equal(t, model.TypeOther, Classify("Quarterly newsletter", ""))

	// STOCK outranks BUSINESS when both keyword lists match.
	assert.Equal(t, model.TypeStock, Classify("Stock rallies on plant investment", ""))

	// Japanese keywords classify too.
	assert.Equal(t, model.TypeGreen, Classify("", "脱炭素の取り組みを発表"))
}
