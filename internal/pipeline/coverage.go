package pipeline

import "github.com/steelwatch/newsbrief/internal/model"

// Coverage counts how the run's targets source their articles, for
// run-level diagnostics.
type Coverage struct {
	Labels        int `json:"labels"`
	SearchQueries int `json:"search_queries"`
	RSSFeeds      int `json:"rss_feeds"`
	SearchOnly    int `json:"search_only"`
	RSSOnly       int `json:"rss_only"`
}

// BuildCoverage summarizes the loaded target list.
func BuildCoverage(targets []model.Target) Coverage {
	c := Coverage{Labels: len(targets)}
	for _, t := range targets {
		c.SearchQueries += len(t.Queries)
		c.RSSFeeds += len(t.Feeds)
		switch {
		case len(t.Queries) > 0 && len(t.Feeds) == 0:
			c.SearchOnly++
		case len(t.Feeds) > 0 && len(t.Queries) == 0:
			c.RSSOnly++
		}
	}
	return c
}
