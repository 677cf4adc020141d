// Package scrape fetches article pages and extracts body text and
// publish-time provenance.
package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/steelwatch/newsbrief/internal/model"
	"github.com/steelwatch/newsbrief/internal/pubdate"
)

const (
	minParagraphRunes = 30
	previewRunes      = 3000
	maxPageBytes      = 8 << 20
	userAgent         = "Mozilla/5.0 (compatible; newsbrief/1.0)"
)

// boilerplateMarkers flag paywall, consent, and footer paragraphs that
// carry no article content.
var boilerplateMarkers = []string{
	"会員", "登録", "利用規約", "著作権", "JavaScript", "Cookie", "広告",
}

// Result is the extracted content of one article page.
type Result struct {
	BodyFull    string
	BodyPreview string

	// PublishedAt is the page's own publish time when structured metadata
	// declares one; zero otherwise. Provenance records which layer
	// supplied it.
	PublishedAt time.Time
	Provenance  model.PublishedSource
}

// Fetcher downloads and parses article pages.
type Fetcher struct {
	client *http.Client
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient overrides the default HTTP client (20s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// NewFetcher creates a page fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{Timeout: 20 * time.Second},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the page at rawURL and extracts its body and publish
// time. ref anchors relative date expressions found in metadata.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, ref time.Time) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: build request for %s", rawURL)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: fetch %s", rawURL)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: read %s", rawURL)
	}

	if blocked, blockType := DetectBlock(resp, body); blocked {
		return nil, eris.Errorf("scrape: fetch %s: blocked (%s)", rawURL, blockType)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("scrape: fetch %s: status %d", rawURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: parse %s", rawURL)
	}

	return Extract(doc, ref), nil
}

// Extract pulls body text and publish-time provenance out of a parsed
// document. Structured metadata wins: meta tags first, then JSON-LD.
func Extract(doc *goquery.Document, ref time.Time) *Result {
	res := &Result{Provenance: model.SourceUnknown}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		t := strings.TrimSpace(s.Text())
		if utf8.RuneCountInString(t) < minParagraphRunes {
			return
		}
		for _, marker := range boilerplateMarkers {
			if strings.Contains(t, marker) {
				return
			}
		}
		paragraphs = append(paragraphs, t)
	})
	res.BodyFull = strings.Join(paragraphs, "\n")
	res.BodyPreview = truncateRunes(res.BodyFull, previewRunes)

	if dt, ok := metaPublished(doc, ref); ok {
		res.PublishedAt = dt
		res.Provenance = model.SourceMeta
		return res
	}
	if dt, ok := jsonLDPublished(doc, ref); ok {
		res.PublishedAt = dt
		res.Provenance = model.SourceJSONLD
	}
	return res
}

// metaSelectors are checked in order; the first parseable value wins.
var metaSelectors = []string{
	`meta[property="article:published_time"]`,
	`meta[name="pubdate"]`,
	`meta[name="date"]`,
	`meta[itemprop="datePublished"]`,
}

func metaPublished(doc *goquery.Document, ref time.Time) (time.Time, bool) {
	for _, sel := range metaSelectors {
		var found time.Time
		var ok bool
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			content, exists := s.Attr("content")
			if !exists {
				return true
			}
			if dt, valid := pubdate.Resolve(content, ref); valid {
				found, ok = dt, true
				return false
			}
			return true
		})
		if ok {
			return found, true
		}
	}
	return time.Time{}, false
}

func jsonLDPublished(doc *goquery.Document, ref time.Time) (time.Time, bool) {
	var found time.Time
	var ok bool
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var payload any
		if err := json.Unmarshal([]byte(s.Text()), &payload); err != nil {
			return true
		}
		raw := findDatePublished(payload)
		if raw == "" {
			return true
		}
		if dt, valid := pubdate.Resolve(raw, ref); valid {
			found, ok = dt, true
			return false
		}
		return true
	})
	return found, ok
}

// findDatePublished walks a decoded JSON-LD payload for the first
// datePublished string, covering both bare objects and @graph arrays.
func findDatePublished(v any) string {
	switch node := v.(type) {
	case map[string]any:
		if s, ok := node["datePublished"].(string); ok && s != "" {
			return s
		}
		for _, child := range node {
			if s := findDatePublished(child); s != "" {
				return s
			}
		}
	case []any:
		for _, child := range node {
			if s := findDatePublished(child); s != "" {
				return s
			}
		}
	}
	return ""
}

// SourceFromURL derives a display source name from the article URL host,
// with any "www." prefix stripped.
func SourceFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "Unknown"
	}
	return strings.TrimPrefix(u.Host, "www.")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
