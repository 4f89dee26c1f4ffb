// Package patterns mines normalized history for recurring structure:
// per-domain visit statistics and gap-segmented learning paths
package patterns

import (
	"sort"
	"time"

	"rabbithole/internal/core/history"
)

// maxStatTitles caps the example titles carried per domain stat
const maxStatTitles = 3

// DomainStat aggregates every visit to one domain
type DomainStat struct {
	Domain       string    `json:"domain"`
	VisitCount   int       `json:"visit_count"`
	PageCount    int       `json:"page_count"`
	DistinctDays int       `json:"distinct_days"`
	FirstSeen    time.Time `json:"first_seen"`
	LastSeen     time.Time `json:"last_seen"`
	SampleTitles []string  `json:"sample_titles,omitempty"`
}

// DomainStats aggregates entries per domain and ranks the result by visit
// count descending, then most recent last visit, then domain name, so equal
// inputs always rank identically. Entries without a domain are skipped.
// topN caps the result; topN <= 0 returns every domain
func DomainStats(entries []history.Entry, topN int) []DomainStat {
	type acc struct {
		stat   DomainStat
		days   map[string]struct{}
		titles map[string]struct{}
	}
	byDomain := make(map[string]*acc)

	for _, e := range entries {
		if e.Domain == "" {
			continue
		}
		a := byDomain[e.Domain]
		if a == nil {
			a = &acc{
				stat:   DomainStat{Domain: e.Domain, FirstSeen: e.VisitedAt, LastSeen: e.VisitedAt},
				days:   make(map[string]struct{}, 4),
				titles: make(map[string]struct{}, maxStatTitles),
			}
			byDomain[e.Domain] = a
		}
		a.stat.VisitCount += e.VisitCount
		a.stat.PageCount++
		if e.VisitedAt.Before(a.stat.FirstSeen) {
			a.stat.FirstSeen = e.VisitedAt
		}
		if e.VisitedAt.After(a.stat.LastSeen) {
			a.stat.LastSeen = e.VisitedAt
		}
		a.days[e.VisitedAt.UTC().Format(time.DateOnly)] = struct{}{}
		if e.Title != "" && len(a.stat.SampleTitles) < maxStatTitles {
			if _, dup := a.titles[e.Title]; !dup {
				a.titles[e.Title] = struct{}{}
				a.stat.SampleTitles = append(a.stat.SampleTitles, e.Title)
			}
		}
	}

	out := make([]DomainStat, 0, len(byDomain))
	for _, a := range byDomain {
		a.stat.DistinctDays = len(a.days)
		out = append(out, a.stat)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VisitCount != out[j].VisitCount {
			return out[i].VisitCount > out[j].VisitCount
		}
		if !out[i].LastSeen.Equal(out[j].LastSeen) {
			return out[i].LastSeen.After(out[j].LastSeen)
		}
		return out[i].Domain < out[j].Domain
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}
