package model

import "time"

// ArticleType classifies an article by its dominant subject.
type ArticleType string

const (
	TypeStock    ArticleType = "STOCK"
	TypeBusiness ArticleType = "BUSINESS"
	TypeGreen    ArticleType = "GREEN"
	TypeOther    ArticleType = "OTHER"
)

// Importance is the derived score band for an article.
type Importance string

const (
	ImportanceHigh   Importance = "High"
	ImportanceMedium Importance = "Medium"
	ImportanceLow    Importance = "Low"
)

// PublishedSource tags where an article's publish time came from, ordered
// by trust: structured page metadata wins over feed or search dates.
type PublishedSource string

const (
	SourceMeta    PublishedSource = "meta"
	SourceJSONLD  PublishedSource = "jsonld"
	SourceRSS     PublishedSource = "rss"
	SourceSerper  PublishedSource = "serper"
	SourceUnknown PublishedSource = "unknown"
)

// Article is the unit of work: one news item fetched for one label,
// normalized, scored, and tagged. Articles live for a single run and are
// never mutated after synchronization.
type Article struct {
	// Identity.
	SourceURL     string `json:"source_url"`
	NormalizedURL string `json:"normalized_url"`
	ArticleID     string `json:"article_id"`

	// Content.
	Title       string `json:"title"`
	BodyFull    string `json:"body_full"`
	BodyPreview string `json:"body_preview"`
	BodyHash    string `json:"body_hash"`
	Source      string `json:"source"`

	// Temporal.
	PublishedAt     time.Time       `json:"published_at"`
	PublishedSource PublishedSource `json:"published_source"`

	// Classification and scoring.
	Type              ArticleType `json:"type"`
	ImportanceScore   float64     `json:"importance_score"`
	ImportanceReasons []string    `json:"importance_reasons"`
	Importance        Importance  `json:"importance"`

	// Tagging.
	CountryTags    []string `json:"country_tags"`
	SectorTags     []string `json:"sector_tags"`
	PrimaryCountry string   `json:"primary_country,omitempty"`

	// Grouping.
	Label string `json:"label"`
}
