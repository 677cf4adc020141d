// Package pipeline orchestrates one run: per-label search, scraping,
// scoring, tagging, synchronization, and digest selection. Execution is
// strictly sequential; one label completes before the next begins.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/steelwatch/newsbrief/internal/config"
	"github.com/steelwatch/newsbrief/internal/dedup"
	"github.com/steelwatch/newsbrief/internal/digest"
	"github.com/steelwatch/newsbrief/internal/model"
	"github.com/steelwatch/newsbrief/internal/pubdate"
	"github.com/steelwatch/newsbrief/internal/resilience"
	"github.com/steelwatch/newsbrief/internal/rules"
	"github.com/steelwatch/newsbrief/internal/scrape"
	"github.com/steelwatch/newsbrief/internal/sync"
	"github.com/steelwatch/newsbrief/pkg/serper"
)

// Scraper fetches article pages.
type Scraper interface {
	Fetch(ctx context.Context, url string, ref time.Time) (*scrape.Result, error)
}

// AlertFetcher supplies secondary articles from alert feeds.
type AlertFetcher interface {
	FetchArticles(ctx context.Context, label string, feeds []string, ref time.Time) ([]*model.Article, error)
}

// Upserter synchronizes articles and the run summary into the store.
type Upserter interface {
	UpsertArticle(ctx context.Context, a *model.Article) (sync.Outcome, string, error)
	CreateRunSummary(ctx context.Context, runDate time.Time, summary string, articlePageIDs []string) (string, error)
	Stats() model.RunStats
}

// Result aggregates everything one run produced.
type Result struct {
	RunID           string
	ByLabel         map[string][]*model.Article
	NoArticleLabels []string
	Digest          []*model.Article
	ArticlePageIDs  []string
	SummaryPageID   string
	Stats           model.RunStats
	Coverage        Coverage
}

// Pipeline runs the fetch-score-synchronize cycle over a target list.
type Pipeline struct {
	cfg     *config.Config
	search  serper.Client
	scraper Scraper
	alerts  AlertFetcher
	syncer  Upserter

	ruleSet   []model.Rule
	useEngine bool
	scorer    *rules.StaticScorer

	retry resilience.RetryConfig
	sleep func(time.Duration)
}

// Option customizes the pipeline.
type Option func(*Pipeline)

// WithRetryConfig overrides the default retry policy for search calls.
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(p *Pipeline) { p.retry = cfg }
}

// New creates a pipeline. syncer may be nil when store credentials are
// absent; the run then produces the digest without synchronization. The
// rule set decides the scoring mechanism for the whole run: any external
// importance rule replaces the static scorer.
func New(
	cfg *config.Config,
	search serper.Client,
	scraper Scraper,
	alerts AlertFetcher,
	syncer Upserter,
	ruleSet []model.Rule,
	scoring rules.ScoringConfig,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		search:    search,
		scraper:   scraper,
		alerts:    alerts,
		syncer:    syncer,
		ruleSet:   ruleSet,
		useEngine: rules.HasExternalImportance(ruleSet),
		scorer:    rules.NewStaticScorer(scoring),
		retry:     resilience.DefaultRetryConfig(),
		sleep:     time.Sleep,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run processes every target label in order against the reference time.
func (p *Pipeline) Run(ctx context.Context, targets []model.Target, ref time.Time) (*Result, error) {
	runID := ref.UTC().Format("20060102T150405Z")
	log := zap.L().With(zap.String("run_id", runID))
	log.Info("pipeline: starting run",
		zap.Int("targets", len(targets)),
		zap.Bool("engine_scoring", p.useEngine),
	)

	result := &Result{
		RunID:    runID,
		ByLabel:  make(map[string][]*model.Article),
		Coverage: BuildCoverage(targets),
	}

	targetsByLabel := make(map[string]model.Target, len(targets))
	var scored []*model.Article
	creditExhausted := false

	for i, target := range targets {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		targetsByLabel[target.Label] = target

		articles := p.fetchLabel(ctx, target, ref, &creditExhausted)
		p.scoreLabel(articles)

		sort.SliceStable(articles, func(a, b int) bool {
			if articles[a].ImportanceScore != articles[b].ImportanceScore {
				return articles[a].ImportanceScore > articles[b].ImportanceScore
			}
			return articles[a].PublishedAt.After(articles[b].PublishedAt)
		})

		if len(articles) == 0 {
			result.NoArticleLabels = append(result.NoArticleLabels, target.Label)
		} else {
			p.syncLabel(ctx, articles, result)
			scored = append(scored, articles...)
			result.ByLabel[target.Label] = takeTop(articles, p.cfg.Limits.MaxArticlesPerLabel)
		}

		log.Info("pipeline: label complete",
			zap.String("label", target.Label),
			zap.Int("articles", len(articles)),
		)

		if i < len(targets)-1 && p.cfg.Limits.LabelPauseSecs > 0 {
			p.sleep(time.Duration(p.cfg.Limits.LabelPauseSecs) * time.Second)
		}
	}

	candidates := digest.Select(scored, p.cfg.Limits.MinImportance, p.cfg.Limits.ExcludeTypes)
	result.Digest = digest.ApplyDiversityLimits(candidates, targetsByLabel, p.cfg.Limits.DigestTopN)

	if p.syncer != nil {
		summary := buildSummary(result.Digest, result.NoArticleLabels)
		y, m, d := ref.In(pubdate.JST).Date()
		runDate := time.Date(y, m, d, 0, 0, 0, 0, pubdate.JST)
		pageID, err := p.syncer.CreateRunSummary(ctx, runDate, summary, result.ArticlePageIDs)
		if err != nil {
			log.Error("pipeline: run summary failed", zap.Error(err))
		} else {
			result.SummaryPageID = pageID
		}
		result.Stats = p.syncer.Stats()
	}

	log.Info("pipeline: run complete",
		zap.Int("digest", len(result.Digest)),
		zap.Strings("no_article_labels", result.NoArticleLabels),
		zap.String("stats", result.Stats.String()),
	)
	return result, nil
}

// fetchLabel gathers in-window articles for one target from search
// queries, topped up from alert feeds for thin enterprise labels.
func (p *Pipeline) fetchLabel(ctx context.Context, target model.Target, ref time.Time, creditExhausted *bool) []*model.Article {
	var articles []*model.Article

	for _, query := range target.Queries {
		if *creditExhausted {
			break
		}
		items, err := p.searchNews(ctx, query)
		if err != nil {
			if errors.Is(err, serper.ErrInsufficientCredits) {
				zap.L().Warn("pipeline: search credits exhausted, no further queries this run")
				*creditExhausted = true
				break
			}
			zap.L().Warn("pipeline: search failed",
				zap.String("label", target.Label),
				zap.String("query", query),
				zap.Error(err),
			)
			continue
		}

		for _, item := range items {
			if a := p.buildArticle(ctx, target.Label, item, ref); a != nil {
				articles = append(articles, a)
			}
		}
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})

	if p.alerts != nil && target.Enterprise && len(target.Feeds) > 0 &&
		len(articles) < p.cfg.Limits.MaxArticlesPerLabel {
		need := p.cfg.Limits.MaxArticlesPerLabel - len(articles)
		alertArticles, err := p.alerts.FetchArticles(ctx, target.Label, target.Feeds, ref)
		if err != nil {
			zap.L().Warn("pipeline: alert top-up failed",
				zap.String("label", target.Label),
				zap.Error(err),
			)
		} else {
			alertArticles = dedup.FilterSecondary(articles, alertArticles)
			articles = append(articles, takeTop(alertArticles, need)...)
		}
	}

	return articles
}

// searchNews runs one search under the retry policy so throttled or
// flaky queries back off instead of being skipped outright.
func (p *Pipeline) searchNews(ctx context.Context, query string) ([]serper.NewsItem, error) {
	cfg := p.retry
	cfg.OnRetry = resilience.RetryLogger("serper", "search_news")
	return resilience.DoVal(ctx, cfg, func(ctx context.Context) ([]serper.NewsItem, error) {
		return p.search.SearchNews(ctx, query)
	})
}

// buildArticle gates one search result on its date, scrapes the page, and
// assembles the normalized article. Undated or bodyless items are dropped.
func (p *Pipeline) buildArticle(ctx context.Context, label string, item serper.NewsItem, ref time.Time) *model.Article {
	searchTime, ok := pubdate.Resolve(item.Date, ref)
	if !ok || !pubdate.IsWithin(searchTime, ref, p.cfg.Limits.Hours) {
		return nil
	}

	rawURL := dedup.ExpandRedirect(item.Link)
	if rawURL == "" {
		return nil
	}

	res, err := p.scraper.Fetch(ctx, rawURL, ref)
	if err != nil || res.BodyFull == "" {
		return nil
	}

	// Page-level provenance outranks the search-supplied date.
	publishedAt := searchTime
	provenance := model.SourceSerper
	if !res.PublishedAt.IsZero() {
		publishedAt = res.PublishedAt
		provenance = res.Provenance
	}
	if !pubdate.IsWithin(publishedAt, ref, p.cfg.Limits.Hours) {
		return nil
	}

	source := item.Source
	if source == "" {
		source = scrape.SourceFromURL(rawURL)
	}

	normalized := dedup.NormalizeURL(rawURL)
	return &model.Article{
		SourceURL:       rawURL,
		NormalizedURL:   normalized,
		ArticleID:       dedup.ArticleID(normalized),
		Title:           item.Title,
		BodyFull:        res.BodyFull,
		BodyPreview:     res.BodyPreview,
		BodyHash:        dedup.BodyHash(res.BodyFull),
		Source:          source,
		PublishedAt:     publishedAt,
		PublishedSource: provenance,
		Type:            rules.Classify(item.Title, res.BodyFull),
		Label:           label,
	}
}

// scoreLabel evaluates the rule set over each article and assigns its
// importance band.
func (p *Pipeline) scoreLabel(articles []*model.Article) {
	thresholds := rules.Thresholds{
		High:   p.cfg.Thresholds.High,
		Medium: p.cfg.Thresholds.Medium,
	}

	for _, a := range articles {
		eval := rules.Evaluate(a.Title, a.BodyFull, p.ruleSet)
		a.CountryTags = eval.CountryTags
		a.SectorTags = eval.SectorTags
		a.PrimaryCountry = eval.PrimaryCountry

		if p.useEngine {
			a.ImportanceScore = eval.ImportanceScore
			a.ImportanceReasons = eval.ImportanceReasons
		} else {
			a.ImportanceScore, a.ImportanceReasons = p.scorer.Score(a)
		}
		a.Importance = rules.Label(a.ImportanceScore, thresholds)
	}
}

// syncLabel upserts each article; failures are already audited by the
// synchronizer and never stop the loop.
func (p *Pipeline) syncLabel(ctx context.Context, articles []*model.Article, result *Result) {
	if p.syncer == nil {
		return
	}
	for _, a := range articles {
		outcome, pageID, err := p.syncer.UpsertArticle(ctx, a)
		if err != nil {
			continue
		}
		if outcome == sync.OutcomeCreated || outcome == sync.OutcomeUpdated {
			result.ArticlePageIDs = append(result.ArticlePageIDs, pageID)
		}
	}
}

// buildSummary renders the run-summary text from the digest picks and the
// labels that produced nothing.
func buildSummary(picks []*model.Article, noArticleLabels []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "本日の注目記事（%d件）\n", len(picks))
	for _, a := range picks {
		fmt.Fprintf(&b, "・[%s] %s（%s / %+.1f）\n", a.Label, a.Title, a.Importance, a.ImportanceScore)
	}
	if len(noArticleLabels) > 0 {
		fmt.Fprintf(&b, "該当記事なし：%s\n", strings.Join(noArticleLabels, "、"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func takeTop(articles []*model.Article, n int) []*model.Article {
	if n >= 0 && len(articles) > n {
		return articles[:n]
	}
	return articles
}
