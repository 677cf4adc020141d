package model

import "fmt"

// RunStats aggregates synchronization outcomes for a run summary.
type RunStats struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Total     int `json:"total"`
}

// String renders the stats for the run-summary record.
func (s RunStats) String() string {
	return fmt.Sprintf("succeeded=%d failed=%d total=%d", s.Succeeded, s.Failed, s.Total)
}

// RawItem is a single raw search result or feed entry as produced by the
// upstream collaborators, before normalization.
type RawItem struct {
	Title  string `json:"title"`
	Link   string `json:"link"`
	Date   string `json:"date,omitempty"`
	Source string `json:"source,omitempty"`
}
