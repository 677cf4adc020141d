// Package sync performs idempotent synchronization of articles into the
// external document store. Articles are keyed by their content-addressed
// identifier; re-running with unchanged content updates properties but
// never re-renders body content.
package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/steelwatch/newsbrief/internal/audit"
	"github.com/steelwatch/newsbrief/internal/config"
	"github.com/steelwatch/newsbrief/internal/model"
	"github.com/steelwatch/newsbrief/internal/resilience"
	"github.com/steelwatch/newsbrief/pkg/notion"
)

// Outcome is the terminal state of one article synchronization.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeFailed  Outcome = "failed"
)

// Synchronizer upserts article records and run summaries into the store.
// Not safe for concurrent use; the run loop is strictly sequential.
type Synchronizer struct {
	client     notion.Client
	articlesDB string
	dailyDB    string
	runID      string

	autoHeading  string
	articleProps Mapping
	dailyProps   Mapping

	retry resilience.RetryConfig
	audit *audit.Logger
	stats model.RunStats
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithRetryConfig overrides the default retry policy for store calls.
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(s *Synchronizer) { s.retry = cfg }
}

// WithAuditLogger sets the audit trail for failed operations.
func WithAuditLogger(l *audit.Logger) Option {
	return func(s *Synchronizer) { s.audit = l }
}

// NewSynchronizer creates a synchronizer for one run. cfg supplies the
// database IDs, the auto-heading marker, and property overrides.
func NewSynchronizer(client notion.Client, cfg config.NotionConfig, runID string, opts ...Option) *Synchronizer {
	autoHeading := cfg.AutoHeading
	if autoHeading == "" {
		autoHeading = "[AUTO]"
	}
	s := &Synchronizer{
		client:       client,
		articlesDB:   cfg.ArticlesDB,
		dailyDB:      cfg.DailyDB,
		runID:        runID,
		autoHeading:  autoHeading,
		articleProps: newMapping(defaultArticleProps, cfg.ArticleProperties),
		dailyProps:   newMapping(defaultDailyProps, cfg.DailyProperties),
		retry:        resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stats returns the aggregate outcome counters so far.
func (s *Synchronizer) Stats() model.RunStats {
	return s.stats
}

// call runs one store operation under the retry policy. Exhausting the
// budget on a transient error surfaces as a rate-limit error.
func call[T any](ctx context.Context, s *Synchronizer, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg := s.retry
	cfg.OnRetry = resilience.RetryLogger("notion", op)
	val, err := resilience.DoVal(ctx, cfg, fn)
	if err != nil && resilience.IsTransient(err) {
		err = &resilience.RateLimitError{Operation: op, Attempts: cfg.MaxAttempts, LastErr: err}
	}
	return val, err
}

// UpsertArticle creates or updates the store record for one article and
// returns its page ID. Failures are audited and counted but never abort
// the run; the caller moves on to the next article.
func (s *Synchronizer) UpsertArticle(ctx context.Context, a *model.Article) (Outcome, string, error) {
	s.stats.Total++

	if a.ArticleID == "" {
		err := eris.New("sync: article has no identity")
		s.fail(a.SourceURL, "missing_article_id", err)
		return OutcomeFailed, "", err
	}

	page, err := s.findArticlePage(ctx, a.ArticleID)
	if err != nil {
		s.fail(a.SourceURL, "find_article_page", err)
		return OutcomeFailed, "", err
	}

	props := s.articleProperties(a)

	if page == nil {
		pageID, err := s.createArticlePage(ctx, a, props)
		if err != nil {
			s.fail(a.SourceURL, "create_page", err)
			return OutcomeFailed, "", err
		}
		s.stats.Succeeded++
		return OutcomeCreated, pageID, nil
	}

	pageID := string(page.ID)
	storedHash := s.storedBodyHash(page)

	if _, err := call(ctx, s, "update_page", func(ctx context.Context) (*notionapi.Page, error) {
		return s.client.UpdatePage(ctx, pageID, &notionapi.PageUpdateRequest{Properties: props})
	}); err != nil {
		s.fail(a.SourceURL, "update_page", err)
		return OutcomeFailed, "", err
	}

	// Body content is re-rendered only when the stored hash differs:
	// clear the marked auto section and append the new text. Human-added
	// content outside the marked section is never touched.
	if storedHash != a.BodyHash {
		if err := s.renderBody(ctx, pageID, a.BodyFull); err != nil {
			s.fail(a.SourceURL, "render_body", err)
			return OutcomeFailed, "", err
		}
	}

	s.stats.Succeeded++
	return OutcomeUpdated, pageID, nil
}

func (s *Synchronizer) createArticlePage(ctx context.Context, a *model.Article, props notionapi.Properties) (string, error) {
	page, err := call(ctx, s, "create_page", func(ctx context.Context) (*notionapi.Page, error) {
		return s.client.CreatePage(ctx, &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(s.articlesDB),
			},
			Properties: props,
		})
	})
	if err != nil {
		return "", err
	}

	pageID := string(page.ID)
	if a.BodyFull != "" {
		headingID, err := s.ensureAutoHeading(ctx, pageID)
		if err != nil {
			return "", err
		}
		if err := s.appendBodyBlocks(ctx, headingID, a.BodyFull); err != nil {
			return "", err
		}
	}
	return pageID, nil
}

// renderBody replaces the auto section's children with freshly rendered
// body text.
func (s *Synchronizer) renderBody(ctx context.Context, pageID, body string) error {
	headingID, err := s.ensureAutoHeading(ctx, pageID)
	if err != nil {
		return err
	}
	if err := s.clearAutoBlocks(ctx, headingID); err != nil {
		return err
	}
	if body == "" {
		return nil
	}
	return s.appendBodyBlocks(ctx, headingID, body)
}

func (s *Synchronizer) findArticlePage(ctx context.Context, articleID string) (*notionapi.Page, error) {
	resp, err := call(ctx, s, "find_article_page", func(ctx context.Context) (*notionapi.DatabaseQueryResponse, error) {
		return s.client.QueryDatabase(ctx, s.articlesDB, &notionapi.DatabaseQueryRequest{
			Filter: notionapi.PropertyFilter{
				Property: s.articleProps.PropertyName("article_id"),
				RichText: &notionapi.TextFilterCondition{Equals: articleID},
			},
		})
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	return &resp.Results[0], nil
}

// storedBodyHash reads the record's persisted body hash, empty when the
// property is absent or not rich text.
func (s *Synchronizer) storedBodyHash(page *notionapi.Page) string {
	prop, ok := page.Properties[s.articleProps.PropertyName("body_hash")]
	if !ok {
		return ""
	}
	return notion.TextValue(prop)
}

func (s *Synchronizer) articleProperties(a *model.Article) notionapi.Properties {
	props := notionapi.Properties{}
	m := s.articleProps
	m.setText(props, "name", a.Title)
	m.setText(props, "url", a.SourceURL)
	m.setText(props, "source", a.Source)
	m.setText(props, "label", a.Label)
	m.setText(props, "type", string(a.Type))
	m.setTags(props, "country", a.CountryTags)
	m.setTags(props, "sector", a.SectorTags)
	m.setText(props, "primary_country", a.PrimaryCountry)
	m.setText(props, "importance", string(a.Importance))
	m.setNumber(props, "importance_score", a.ImportanceScore)
	m.setText(props, "importance_reasons", strings.Join(a.ImportanceReasons, "; "))
	m.setDate(props, "published_at", a.PublishedAt)
	m.setText(props, "published_source", string(a.PublishedSource))
	m.setText(props, "article_id", a.ArticleID)
	m.setText(props, "normalized_url", a.NormalizedURL)
	m.setText(props, "body_hash", a.BodyHash)
	m.setText(props, "body_preview", a.BodyPreview)
	return props
}

// CreateRunSummary writes the cross-label daily-summary record referencing
// the run's article pages.
func (s *Synchronizer) CreateRunSummary(ctx context.Context, runDate time.Time, summary string, articlePageIDs []string) (string, error) {
	props := notionapi.Properties{}
	m := s.dailyProps
	m.setText(props, "name", fmt.Sprintf("Daily Summary %s", runDate.Format("2006-01-02")))
	m.setText(props, "run_id", s.runID)
	m.setDate(props, "run_date", runDate)
	m.setText(props, "morning_summary", summary)
	m.setRelation(props, "articles", articlePageIDs)
	m.setText(props, "run_stats", s.stats.String())

	page, err := call(ctx, s, "create_daily_summary", func(ctx context.Context) (*notionapi.Page, error) {
		return s.client.CreatePage(ctx, &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(s.dailyDB),
			},
			Properties: props,
		})
	})
	if err != nil {
		// The summary is not an article, so it stays out of the
		// per-article counters.
		s.report("", "create_daily_summary", err)
		return "", err
	}
	return string(page.ID), nil
}

// fail counts one failed article operation.
func (s *Synchronizer) fail(url, step string, err error) {
	s.stats.Failed++
	s.report(url, step, err)
}

// report logs and audits one failed operation.
func (s *Synchronizer) report(url, step string, err error) {
	zap.L().Error("sync: operation failed",
		zap.String("step", step),
		zap.String("url", url),
		zap.Error(err),
	)
	if s.audit == nil {
		return
	}
	if auditErr := s.audit.Append(audit.Record{
		RunID: s.runID,
		URL:   url,
		Step:  step,
		Error: err.Error(),
	}); auditErr != nil {
		zap.L().Warn("sync: audit append failed", zap.Error(auditErr))
	}
}
