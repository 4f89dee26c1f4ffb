// Package scoring turns sessions into a productivity ledger: time spent per
// bucket, entry tallies, and the most visited sites on each side
package scoring

import (
	"sort"

	"rabbithole/internal/core/history"
	"rabbithole/internal/core/sessions"
	"rabbithole/internal/core/taxonomy"
)

// topSites caps the per-bucket site leaderboards
const topSites = 3

// SiteCount is one domain and how many entries it contributed to a bucket
type SiteCount struct {
	Domain  string `json:"domain"`
	Entries int    `json:"entries"`
}

// Score is the productivity ledger over a set of sessions. The time buckets
// partition total session time exactly; Ratio compares productive time
// against distracting time and ignores neutral
type Score struct {
	ProductiveTime  history.Seconds `json:"productive_seconds"`
	DistractingTime history.Seconds `json:"distracting_seconds"`
	NeutralTime     history.Seconds `json:"neutral_seconds"`
	Ratio           float64         `json:"ratio"`

	ProductiveEntries  int `json:"productive_entries"`
	DistractingEntries int `json:"distracting_entries"`
	NeutralEntries     int `json:"neutral_entries"`

	TopProductive  []SiteCount `json:"top_productive,omitempty"`
	TopDistracting []SiteCount `json:"top_distracting,omitempty"`
}

// Sessions scores a set of sessions. Each session's full duration accrues to
// the bucket of its dominant category, so the three time buckets always sum
// to total session time. Entry tallies and site leaderboards aggregate
// per-entry through categorize; nil categorize sends every entry to neutral.
// nil weights means taxonomy.DefaultWeights
func Sessions(sess []sessions.Session, categorize func(history.Entry) taxonomy.Category, weights taxonomy.Weights) Score {
	if weights == nil {
		weights = taxonomy.DefaultWeights()
	}
	if categorize == nil {
		categorize = func(history.Entry) taxonomy.Category { return taxonomy.Uncategorized }
	}

	var s Score
	productiveSites := make(map[string]int)
	distractingSites := make(map[string]int)

	for _, ss := range sess {
		switch weights.BucketOf(ss.DominantCategory) {
		case taxonomy.BucketProductive:
			s.ProductiveTime += ss.Duration
		case taxonomy.BucketDistracting:
			s.DistractingTime += ss.Duration
		default:
			s.NeutralTime += ss.Duration
		}

		for _, e := range ss.Entries {
			switch weights.BucketOf(categorize(e)) {
			case taxonomy.BucketProductive:
				s.ProductiveEntries++
				if e.Domain != "" {
					productiveSites[e.Domain]++
				}
			case taxonomy.BucketDistracting:
				s.DistractingEntries++
				if e.Domain != "" {
					distractingSites[e.Domain]++
				}
			default:
				s.NeutralEntries++
			}
		}
	}

	s.TopProductive = top(productiveSites, topSites)
	s.TopDistracting = top(distractingSites, topSites)

	if denom := s.ProductiveTime + s.DistractingTime; denom > 0 {
		s.Ratio = float64(s.ProductiveTime) / float64(denom)
	}
	return s
}

// top ranks a domain tally by entry count descending, ties by domain name,
// and keeps the first n
func top(counts map[string]int, n int) []SiteCount {
	if len(counts) == 0 {
		return nil
	}
	out := make([]SiteCount, 0, len(counts))
	for d, c := range counts {
		out = append(out, SiteCount{Domain: d, Entries: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Entries != out[j].Entries {
			return out[i].Entries > out[j].Entries
		}
		return out[i].Domain < out[j].Domain
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
