package sync

import (
	"time"

	"github.com/jomei/notionapi"

	"github.com/steelwatch/newsbrief/internal/config"
	"github.com/steelwatch/newsbrief/pkg/notion"
)

// PropertySpec names one logical field's property in the external store.
type PropertySpec struct {
	Name string
	Type string
}

// Mapping resolves logical fields to store properties. Renaming a remote
// property is a configuration change, not a code change.
type Mapping map[string]PropertySpec

// defaultArticleProps is the articles-database schema.
var defaultArticleProps = Mapping{
	"name":               {Name: "Name", Type: "title"},
	"url":                {Name: "URL", Type: "url"},
	"source":             {Name: "Source", Type: "rich_text"},
	"label":              {Name: "Label", Type: "select"},
	"type":               {Name: "Type", Type: "select"},
	"country":            {Name: "Country", Type: "multi_select"},
	"sector":             {Name: "Sector", Type: "multi_select"},
	"primary_country":    {Name: "PrimaryCountry", Type: "select"},
	"importance":         {Name: "Importance", Type: "select"},
	"importance_score":   {Name: "ImportanceScore", Type: "number"},
	"importance_reasons": {Name: "ImportanceReasons", Type: "rich_text"},
	"published_at":       {Name: "PublishedAt", Type: "date"},
	"published_source":   {Name: "PublishedSource", Type: "select"},
	"article_id":         {Name: "ArticleId", Type: "rich_text"},
	"normalized_url":     {Name: "NormalizedURL", Type: "url"},
	"body_hash":          {Name: "BodyHash", Type: "rich_text"},
	"body_preview":       {Name: "BodyPreview", Type: "rich_text"},
}

// defaultDailyProps is the daily-summary-database schema.
var defaultDailyProps = Mapping{
	"name":            {Name: "Name", Type: "title"},
	"run_id":          {Name: "RunId", Type: "rich_text"},
	"run_date":        {Name: "RunDate", Type: "date"},
	"morning_summary": {Name: "MorningSummary", Type: "rich_text"},
	"articles":        {Name: "Articles", Type: "relation"},
	"run_stats":       {Name: "RunStats", Type: "rich_text"},
}

// newMapping overlays per-deployment overrides on the default schema. An
// override may rename the property, retype it, or both.
func newMapping(defaults Mapping, overrides map[string]config.PropertyOverride) Mapping {
	m := make(Mapping, len(defaults))
	for key, spec := range defaults {
		if o, ok := overrides[key]; ok {
			if o.Name != "" {
				spec.Name = o.Name
			}
			if o.Type != "" {
				spec.Type = o.Type
			}
		}
		m[key] = spec
	}
	return m
}

// PropertyName returns the store property name for a logical field.
func (m Mapping) PropertyName(key string) string {
	return m[key].Name
}

// setText assigns a string-valued logical field.
func (m Mapping) setText(props notionapi.Properties, key, value string) {
	spec, ok := m[key]
	if !ok {
		return
	}
	switch spec.Type {
	case "title":
		props[spec.Name] = notionapi.TitleProperty{Title: notion.RichTextBlock(value)}
	case "rich_text":
		rt := []notionapi.RichText{}
		if value != "" {
			rt = notion.RichTextBlock(value)
		}
		props[spec.Name] = notionapi.RichTextProperty{RichText: rt}
	case "url":
		if value != "" {
			props[spec.Name] = notionapi.URLProperty{URL: value}
		}
	case "select":
		if value != "" {
			props[spec.Name] = notionapi.SelectProperty{Select: notionapi.Option{Name: value}}
		}
	}
}

// setTags assigns a multi_select logical field.
func (m Mapping) setTags(props notionapi.Properties, key string, values []string) {
	spec, ok := m[key]
	if !ok || spec.Type != "multi_select" {
		return
	}
	options := make([]notionapi.Option, 0, len(values))
	for _, v := range values {
		options = append(options, notionapi.Option{Name: v})
	}
	props[spec.Name] = notionapi.MultiSelectProperty{MultiSelect: options}
}

// setNumber assigns a number logical field.
func (m Mapping) setNumber(props notionapi.Properties, key string, value float64) {
	spec, ok := m[key]
	if !ok || spec.Type != "number" {
		return
	}
	props[spec.Name] = notionapi.NumberProperty{Number: value}
}

// setDate assigns a date logical field; zero times are left unset.
func (m Mapping) setDate(props notionapi.Properties, key string, value time.Time) {
	spec, ok := m[key]
	if !ok || spec.Type != "date" || value.IsZero() {
		return
	}
	start := notionapi.Date(value)
	props[spec.Name] = notionapi.DateProperty{Date: &notionapi.DateObject{Start: &start}}
}

// setRelation assigns a relation logical field from page IDs.
func (m Mapping) setRelation(props notionapi.Properties, key string, pageIDs []string) {
	spec, ok := m[key]
	if !ok || spec.Type != "relation" {
		return
	}
	relations := make([]notionapi.Relation, 0, len(pageIDs))
	for _, id := range pageIDs {
		relations = append(relations, notionapi.Relation{ID: notionapi.PageID(id)})
	}
	props[spec.Name] = notionapi.RelationProperty{Relation: relations}
}
