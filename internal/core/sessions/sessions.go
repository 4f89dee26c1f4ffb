// Package sessions groups time-ordered history entries into browsing sessions
// split on inactivity gaps, then derives per-session rollups: dominant
// category, focus, time-of-day context, and behavioral markers
package sessions

import (
	"fmt"
	"time"

	"rabbithole/internal/core/history"
	"rabbithole/internal/core/taxonomy"
)

// DefaultGap is the inactivity threshold that separates two sessions when the
// caller does not configure one
const DefaultGap = 30 * time.Minute

// Options tunes session construction
type Options struct {
	// Gap is the inactivity threshold; a pause of Gap or longer starts a new
	// session. Zero or negative means DefaultGap
	Gap time.Duration

	// Weights maps categories to productivity buckets for enrichment; nil
	// means taxonomy.DefaultWeights
	Weights taxonomy.Weights

	// Enrich adds the derived context fields (time of day, focus score,
	// session kind, markers). Without it sessions carry only identity,
	// bounds, entries, and category tallies
	Enrich bool
}

// Session is a maximal run of entries with every internal pause shorter than
// the gap threshold. The enrichment fields are only set when built with
// Options.Enrich
type Session struct {
	ID               string                    `json:"id"`
	StartTime        time.Time                 `json:"start_time"`
	EndTime          time.Time                 `json:"end_time"`
	Duration         history.Seconds           `json:"duration_seconds"`
	Entries          []history.Entry           `json:"entries"`
	DominantCategory taxonomy.Category         `json:"dominant_category"`
	CategoryCounts   map[taxonomy.Category]int `json:"category_counts,omitempty"`

	TimeOfDay      string  `json:"time_of_day,omitempty"`
	DayOfWeek      string  `json:"day_of_week,omitempty"`
	Weekend        bool    `json:"weekend,omitempty"`
	UniqueDomains  int     `json:"unique_domains,omitempty"`
	DomainSwitches int     `json:"domain_switches,omitempty"`
	FocusScore     float64 `json:"focus_score,omitempty"`
	Kind           string  `json:"kind,omitempty"`
	RabbitHole     bool    `json:"rabbit_hole,omitempty"`
	Research       bool    `json:"research,omitempty"`
	Summary        string  `json:"summary,omitempty"`
}

// GroupByGap splits time-ordered entries into runs separated by pauses of gap
// or longer. Consecutive entries closer than gap share a run; equal
// timestamps always share one. Every entry lands in exactly one run and
// relative order is preserved. Zero or negative gap means DefaultGap
func GroupByGap(entries []history.Entry, gap time.Duration) [][]history.Entry {
	if len(entries) == 0 {
		return nil
	}
	if gap <= 0 {
		gap = DefaultGap
	}
	var groups [][]history.Entry
	start := 0
	for i := 1; i < len(entries); i++ {
		if entries[i].VisitedAt.Sub(entries[i-1].VisitedAt) >= gap {
			groups = append(groups, entries[start:i:i])
			start = i
		}
	}
	return append(groups, entries[start:])
}

// Build partitions entries into sessions and resolves each one. categorize
// assigns the per-entry category used for the dominant-category vote; nil
// sends everything to uncategorized. Entries must already be time-ordered
func Build(entries []history.Entry, categorize func(history.Entry) taxonomy.Category, opts Options) []Session {
	if categorize == nil {
		categorize = func(history.Entry) taxonomy.Category { return taxonomy.Uncategorized }
	}
	weights := opts.Weights
	if weights == nil {
		weights = taxonomy.DefaultWeights()
	}

	groups := GroupByGap(entries, opts.Gap)
	out := make([]Session, 0, len(groups))
	for _, g := range groups {
		out = append(out, build(g, categorize, weights, opts.Enrich))
	}
	return out
}

func build(g []history.Entry, categorize func(history.Entry) taxonomy.Category, weights taxonomy.Weights, enrich bool) Session {
	first, last := g[0], g[len(g)-1]
	s := Session{
		ID:             fmt.Sprintf("%s_%d", first.VisitedAt.Format(time.RFC3339), len(g)),
		StartTime:      first.VisitedAt,
		EndTime:        last.VisitedAt,
		Duration:       history.Seconds(last.VisitedAt.Sub(first.VisitedAt)),
		Entries:        g,
		CategoryCounts: make(map[taxonomy.Category]int, 4),
	}
	for _, e := range g {
		s.CategoryCounts[categorize(e)]++
	}
	s.DominantCategory = taxonomy.Majority(s.CategoryCounts)
	if enrich {
		s.enrich(weights)
	}
	return s
}
