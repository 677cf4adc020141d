// Package dedup canonicalizes article URLs into stable content-addressed
// identifiers and suppresses near-duplicate items across sources.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"github.com/steelwatch/newsbrief/internal/model"
)

// trackingParams are dropped during URL canonicalization so that two links
// to the same story differing only in campaign noise normalize identically.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"gclid":        {},
	"fbclid":       {},
	"yclid":        {},
	"mc_cid":       {},
	"mc_eid":       {},
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// ExpandRedirect unwraps known redirect-wrapper URLs (Google Alert and
// search redirects) to their embedded target. Non-wrapper URLs pass through.
func ExpandRedirect(raw string) string {
	if raw == "" || !strings.Contains(raw, "google.com/url") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if target := q.Get("url"); target != "" {
		return target
	}
	if target := q.Get("q"); target != "" {
		return target
	}
	return raw
}

// NormalizeURL canonicalizes raw: redirect wrappers expanded, scheme and
// host lower-cased, leading "www." stripped, tracking parameters and the
// fragment dropped, and the surviving query pairs re-encoded in their
// original relative order. Empty or unparseable input yields "".
func NormalizeURL(raw string) string {
	raw = ExpandRedirect(strings.TrimSpace(raw))
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")
	u.Host = host
	u.Fragment = ""
	u.RawQuery = filterQuery(u.RawQuery)

	return u.String()
}

// filterQuery drops tracking parameters while preserving the relative
// order of the remaining pairs. url.Values.Encode sorts keys, so the
// pairs are re-assembled by hand.
func filterQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	var kept []string
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key := pair
		if i := strings.Index(pair, "="); i >= 0 {
			key = pair[:i]
		}
		decoded, err := url.QueryUnescape(key)
		if err != nil {
			decoded = key
		}
		if _, tracked := trackingParams[strings.ToLower(decoded)]; tracked {
			continue
		}
		kept = append(kept, pair)
	}
	return strings.Join(kept, "&")
}

// ArticleID derives the content-addressed identifier for a normalized URL.
// An empty normalized URL has no identity and yields "".
func ArticleID(normalizedURL string) string {
	if normalizedURL == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(normalizedURL))
	return hex.EncodeToString(sum[:])
}

// BodyHash hashes the trimmed article body for change detection.
func BodyHash(body string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(body)))
	return hex.EncodeToString(sum[:])
}

// TitleFingerprint reduces a title to a cheap near-duplicate key: case-
// folded, non-word runes removed, first 50 runes.
func TitleFingerprint(title string) string {
	// cases.Caser carries transform state, so a fresh one per call.
	folded := cases.Fold().String(title)
	stripped := nonWord.ReplaceAllString(folded, "")
	runes := []rune(stripped)
	if len(runes) > 50 {
		runes = runes[:50]
	}
	return string(runes)
}

// FilterSecondary drops secondary (feed-sourced) articles whose title
// fingerprint collides with any primary (search-sourced) article. Feed
// items often link through different redirect chains than search results
// for the same story, so URL equality is not enough.
func FilterSecondary(primary, secondary []*model.Article) []*model.Article {
	seen := make(map[string]struct{}, len(primary))
	for _, a := range primary {
		seen[TitleFingerprint(a.Title)] = struct{}{}
	}

	var out []*model.Article
	for _, a := range secondary {
		if _, dup := seen[TitleFingerprint(a.Title)]; dup {
			continue
		}
		out = append(out, a)
	}
	return out
}
