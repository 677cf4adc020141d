// Package feed pulls secondary articles from Google Alert RSS feeds. It
// exists to top up enterprise labels when the primary search comes back
// thin.
package feed

import (
	"context"
	"sort"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/steelwatch/newsbrief/internal/dedup"
	"github.com/steelwatch/newsbrief/internal/model"
	"github.com/steelwatch/newsbrief/internal/pubdate"
	"github.com/steelwatch/newsbrief/internal/rules"
	"github.com/steelwatch/newsbrief/internal/scrape"
)

// Scraper fetches article pages for feed entries.
type Scraper interface {
	Fetch(ctx context.Context, url string, ref time.Time) (*scrape.Result, error)
}

// AlertSource turns Google Alert RSS feeds into scored-ready articles.
type AlertSource struct {
	parser  *gofeed.Parser
	scraper Scraper
	hours   int
}

// NewAlertSource creates a feed source. hours bounds how old an entry's
// resolved publish time may be.
func NewAlertSource(scraper Scraper, hours int) *AlertSource {
	return &AlertSource{
		parser:  gofeed.NewParser(),
		scraper: scraper,
		hours:   hours,
	}
}

// FetchArticles parses each feed URL and returns in-window articles for
// the label, newest first. Entries whose pages yield no body, or whose
// publish time cannot be resolved or falls outside the window, are
// dropped. A feed that fails to parse is logged and skipped; the other
// feeds still contribute.
func (s *AlertSource) FetchArticles(ctx context.Context, label string, feeds []string, ref time.Time) ([]*model.Article, error) {
	if ctx.Err() != nil {
		return nil, eris.Wrap(ctx.Err(), "feed: fetch alert articles")
	}

	var articles []*model.Article
	for _, feedURL := range feeds {
		parsed, err := s.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			zap.L().Warn("feed: skipping unreadable feed",
				zap.String("label", label),
				zap.String("feed_url", feedURL),
				zap.Error(err),
			)
			continue
		}

		for _, item := range parsed.Items {
			if a := s.buildArticle(ctx, label, item, ref); a != nil {
				articles = append(articles, a)
			}
		}
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
	return articles, nil
}

func (s *AlertSource) buildArticle(ctx context.Context, label string, item *gofeed.Item, ref time.Time) *model.Article {
	rawURL := dedup.ExpandRedirect(item.Link)
	if rawURL == "" {
		return nil
	}

	var feedTime time.Time
	feedTimeOK := false
	if item.PublishedParsed != nil {
		feedTime, feedTimeOK = *item.PublishedParsed, true
	} else if dt, ok := pubdate.Resolve(item.Published, ref); ok {
		feedTime, feedTimeOK = dt, true
	}

	res, err := s.scraper.Fetch(ctx, rawURL, ref)
	if err != nil || res.BodyFull == "" {
		return nil
	}

	publishedAt := res.PublishedAt
	provenance := res.Provenance
	if publishedAt.IsZero() {
		if !feedTimeOK {
			return nil
		}
		publishedAt = feedTime
		provenance = model.SourceRSS
	}
	if !pubdate.IsWithin(publishedAt, ref, s.hours) {
		return nil
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
		Source:          scrape.SourceFromURL(rawURL),
		PublishedAt:     publishedAt,
		PublishedSource: provenance,
		Type:            rules.Classify(item.Title, res.BodyFull),
		Label:           label,
	}
}
