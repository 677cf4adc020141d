// Package pubdate resolves heterogeneous publish-time representations into
// canonical UTC instants and computes fetch-window membership.
package pubdate

import (
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// JST is the display timezone for run dates and formatted timestamps.
var JST = time.FixedZone("JST", 9*60*60)

// isoLayouts are tried first: strict ISO-8601 with and without an offset.
// Offset-less instants are assumed UTC, never local.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// localeLayouts cover bare dates seen in search results and page footers.
var localeLayouts = []string{
	"2006/01/02",
	"2006-01-02",
	"2006.01.02",
	"Jan 2, 2006",
}

var (
	relativeEN = regexp.MustCompile(`(?i)(\d+)\s*(hour|day|week)s?\s*ago`)
	relativeJA = regexp.MustCompile(`(\d+)\s*(時間|日|週)前`)
)

// Resolve parses raw into a UTC instant. It tries, in order: ISO-8601,
// RFC 2822, locale date formats, then relative phrases ("3 hours ago",
// "2日前") computed against ref. The second return is false when nothing
// matched; callers must drop undated items rather than substitute ref.
func Resolve(raw string, ref time.Time) (time.Time, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return time.Time{}, false
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.UTC(), true
		}
	}

	if t, err := mail.ParseDate(text); err == nil {
		return t.UTC(), true
	}

	for _, layout := range localeLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.UTC(), true
		}
	}

	if m := relativeEN.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		hours := n * unitHoursEN(m[2])
		return ref.UTC().Add(-time.Duration(hours) * time.Hour), true
	}

	if m := relativeJA.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		hours := n * unitHoursJA(m[2])
		return ref.UTC().Add(-time.Duration(hours) * time.Hour), true
	}

	return time.Time{}, false
}

func unitHoursEN(unit string) int {
	switch strings.ToLower(unit) {
	case "hour":
		return 1
	case "day":
		return 24
	default: // week
		return 168
	}
}

func unitHoursJA(unit string) int {
	switch unit {
	case "時間":
		return 1
	case "日":
		return 24
	default: // 週
		return 168
	}
}

// IsWithin reports whether t falls inside the trailing window of the given
// hours ending at ref. Both operands are normalized to UTC and the boundary
// at exactly window-hours age is inclusive. A zero t is never within.
func IsWithin(t, ref time.Time, hours int) bool {
	if t.IsZero() {
		return false
	}
	cutoff := ref.UTC().Add(-time.Duration(hours) * time.Hour)
	return !t.UTC().Before(cutoff)
}

// LookbackWindow computes the fetch window for a run at nowLocal, in
// nowLocal's location. On Monday the window spans the prior Friday 00:00
// through Sunday 23:59:59, bridging the weekend gap no daily run covers.
// On every other day it is the trailing 24 hours ending at nowLocal.
func LookbackWindow(nowLocal time.Time) (start, end time.Time) {
	if nowLocal.Weekday() == time.Monday {
		loc := nowLocal.Location()
		y, m, d := nowLocal.Date()
		monday := time.Date(y, m, d, 0, 0, 0, 0, loc)
		start = monday.AddDate(0, 0, -3)
		end = monday.Add(-time.Second)
		return start, end
	}
	return nowLocal.Add(-24 * time.Hour), nowLocal
}

// FormatJST renders an instant for report display. Zero times render as
// the Japanese "unknown" marker the reports use.
func FormatJST(t time.Time) string {
	if t.IsZero() {
		return "不明"
	}
	return t.In(JST).Format("2006-01-02 15:04") + " JST"
}
