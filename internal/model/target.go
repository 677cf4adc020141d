package model

// TargetKind distinguishes how articles are sourced for a label.
type TargetKind string

const (
	KindQuery TargetKind = "query"
	KindFeed  TargetKind = "feed"
)

// Target is a tracked entity or theme for which articles are independently
// fetched, scored, and digested.
type Target struct {
	Label      string     `json:"label"`
	Kind       TargetKind `json:"kind"`
	Queries    []string   `json:"queries,omitempty"`
	Feeds      []string   `json:"feeds,omitempty"`
	Enterprise bool       `json:"enterprise"`

	// MaxPick caps how many of this label's articles the cross-label
	// digest may take. Negative means unset: 1 for enterprise labels,
	// 2 otherwise. Zero excludes the label from the digest.
	MaxPick int `json:"max_pick"`
}

// DigestCap resolves the effective per-label cap for the digest.
func (t Target) DigestCap() int {
	if t.MaxPick >= 0 {
		return t.MaxPick
	}
	if t.Enterprise {
		return 1
	}
	return 2
}
