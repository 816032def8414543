// Package schedule defines the display-oriented schedule projection and the
// pure merge and windowing helpers behind calendar reconciliation.
package schedule

import (
	"sort"
	"time"
)

// Kind distinguishes committed entries from advisor candidates.
type Kind string

const (
	// KindFixed entries come from the calendar or from local tasks.
	KindFixed Kind = "fixed"
	// KindSuggested entries are ephemeral advisor candidates.
	KindSuggested Kind = "suggested"
)

// Entry is one row of the merged schedule view. It is never persisted.
type Entry struct {
	Text  string    `json:"text"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Kind  Kind      `json:"kind"`
}

// Window computes the calendar fetch window covering every given date: the
// earliest date at 00:00:00 through the latest at 23:59:59 in loc. With no
// dates it falls back to today. Recomputing the window from the union of
// relevant dates keeps multi-day suggestion spans inside one fetch.
func Window(loc *time.Location, dates ...time.Time) (time.Time, time.Time) {
	if len(dates) == 0 {
		dates = []time.Time{time.Now().In(loc)}
	}

	lo, hi := dates[0].In(loc), dates[0].In(loc)
	for _, d := range dates[1:] {
		d = d.In(loc)
		if d.Before(lo) {
			lo = d
		}
		if d.After(hi) {
			hi = d
		}
	}

	start := time.Date(lo.Year(), lo.Month(), lo.Day(), 0, 0, 0, 0, loc)
	end := time.Date(hi.Year(), hi.Month(), hi.Day(), 23, 59, 59, 0, loc)
	return start, end
}

// Merge concatenates fixed and suggested entries into one list sorted by
// start time ascending. Entries are intentionally not deduplicated across
// sources: overlap between a fixed commitment and a suggested slot is a
// conflict the user should see.
func Merge(fixed, suggested []Entry) []Entry {
	merged := make([]Entry, 0, len(fixed)+len(suggested))
	merged = append(merged, fixed...)
	merged = append(merged, suggested...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Start.Before(merged[j].Start)
	})

	return merged
}
