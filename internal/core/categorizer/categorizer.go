// Package categorizer assigns taxonomy categories to history entries using
// the rule pack's domain table, keyword fallback over titles, and
// user-supplied overrides
package categorizer

import (
	"fmt"
	"sort"
	"strings"

	"rabbithole/internal/core/history"
	"rabbithole/internal/core/normalize"
	"rabbithole/internal/core/rulepack"
	"rabbithole/internal/core/taxonomy"
)

// sample titles kept per uncategorized domain
const maxSampleTitles = 5

// Categorizer is immutable after New and safe for concurrent use
type Categorizer struct {
	pack      *rulepack.Pack
	overrides map[string]taxonomy.Category
}

// New builds a Categorizer over a compiled pack. Override keys are
// canonicalized (lowercased, www-stripped) and win over every built-in rule
func New(pack *rulepack.Pack, overrides map[string]taxonomy.Category) (*Categorizer, error) {
	if pack == nil {
		return nil, fmt.Errorf("categorizer: nil pack")
	}
	c := &Categorizer{pack: pack}
	if len(overrides) > 0 {
		c.overrides = make(map[string]taxonomy.Category, len(overrides))
		for d, cat := range overrides {
			host := normalize.CanonicalHost(d)
			if host == "" {
				return nil, fmt.Errorf("categorizer: empty override domain %q", d)
			}
			if !taxonomy.Valid(cat) {
				return nil, fmt.Errorf("categorizer: override %q: unknown category %q", d, cat)
			}
			c.overrides[host] = cat
		}
	}
	return c, nil
}

// Categorize resolves one entry. Decision order: override table (exact, then
// parent labels), domain table, keyword fallback over the folded title when
// the domain is generic, unknown, or absent, then uncategorized.
// Same domain and title always produce the same answer
func (c *Categorizer) Categorize(e history.Entry) taxonomy.Category {
	if cat, ok := c.override(e.Domain); ok {
		return cat
	}
	if e.Domain != "" {
		if cat, lookup := c.pack.Domain(e.Domain); lookup == rulepack.LookupCategory {
			return cat
		}
	}
	if cat, ok := c.pack.KeywordCategory(normalize.Fold(e.Title)); ok {
		return cat
	}
	return taxonomy.Uncategorized
}

func (c *Categorizer) override(domain string) (taxonomy.Category, bool) {
	d := domain
	for d != "" {
		if cat, ok := c.overrides[d]; ok {
			return cat, true
		}
		i := strings.IndexByte(d, '.')
		if i < 0 {
			break
		}
		d = d[i+1:]
	}
	return "", false
}

// Uncategorized describes one domain the rules could not place, with enough
// context for the user to write an override for it
type Uncategorized struct {
	Domain       string   `json:"domain"`
	Entries      int      `json:"entries"`
	VisitCount   int      `json:"visit_count"`
	SampleTitles []string `json:"sample_titles,omitempty"`
}

// CategorizeAll resolves every entry and settles a single category per
// domain: majority of the domain's per-entry categories, ties toward the
// earliest in taxonomy order. Entries without a domain are excluded from the
// map but still categorize individually via Categorize. The second return is
// the uncategorized roster, entry count descending then domain ascending
func (c *Categorizer) CategorizeAll(entries []history.Entry) (map[string]taxonomy.Category, []Uncategorized) {
	type acc struct {
		entries int
		visits  int
		tally   map[taxonomy.Category]int
		titles  []string
		seen    map[string]struct{}
	}
	byDomain := make(map[string]*acc)

	for _, e := range entries {
		if e.Domain == "" {
			continue
		}
		a := byDomain[e.Domain]
		if a == nil {
			a = &acc{tally: make(map[taxonomy.Category]int, 4), seen: make(map[string]struct{}, 4)}
			byDomain[e.Domain] = a
		}
		a.entries++
		a.visits += e.VisitCount
		a.tally[c.Categorize(e)]++
		if e.Title != "" && len(a.titles) < maxSampleTitles {
			if _, dup := a.seen[e.Title]; !dup {
				a.seen[e.Title] = struct{}{}
				a.titles = append(a.titles, e.Title)
			}
		}
	}

	cats := make(map[string]taxonomy.Category, len(byDomain))
	var roster []Uncategorized
	for d, a := range byDomain {
		cat := taxonomy.Majority(a.tally)
		cats[d] = cat
		if cat == taxonomy.Uncategorized {
			roster = append(roster, Uncategorized{
				Domain:       d,
				Entries:      a.entries,
				VisitCount:   a.visits,
				SampleTitles: a.titles,
			})
		}
	}

	sort.Slice(roster, func(i, j int) bool {
		if roster[i].Entries != roster[j].Entries {
			return roster[i].Entries > roster[j].Entries
		}
		return roster[i].Domain < roster[j].Domain
	})
	return cats, roster
}
