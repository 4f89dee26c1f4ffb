// Package taxonomy fixes the closed category set the engine classifies
// browsing into, the declaration order used for deterministic tie-breaks,
// and the productivity bucket each category rolls up to
package taxonomy

import (
	"fmt"
	"strings"
)

// Category names one slice of the browsing taxonomy. The set is closed:
// classifiers never invent names outside this list, and anything unknown
// surfaces as Uncategorized rather than being dropped
type Category string

// Declaration order is load-bearing: every tie anywhere in the engine breaks
// toward the earliest category listed here
const (
	Work          Category = "work"
	Learning      Category = "learning"
	Entertainment Category = "entertainment"
	Social        Category = "social"
	Shopping      Category = "shopping"
	News          Category = "news"
	Finance       Category = "finance"
	Health        Category = "health"
	Reference     Category = "reference"
	Uncategorized Category = "uncategorized"
)

var order = []Category{
	Work, Learning, Entertainment, Social, Shopping,
	News, Finance, Health, Reference, Uncategorized,
}

var rank = func() map[Category]int {
	m := make(map[Category]int, len(order))
	for i, c := range order {
		m[c] = i
	}
	return m
}()

// All returns every category in declaration order
func All() []Category {
	out := make([]Category, len(order))
	copy(out, order)
	return out
}

// Index returns the declaration rank of c; unknown values sort last
func Index(c Category) int {
	if i, ok := rank[c]; ok {
		return i
	}
	return len(order)
}

// Valid reports whether c is a declared category
func Valid(c Category) bool {
	_, ok := rank[c]
	return ok
}

// Parse resolves a user-supplied category name, case-insensitively
func Parse(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !Valid(c) {
		return "", fmt.Errorf("taxonomy: unknown category %q", s)
	}
	return c, nil
}

// Earliest picks the category with the lowest declaration rank
func Earliest(cats ...Category) Category {
	if len(cats) == 0 {
		return Uncategorized
	}
	best := cats[0]
	for _, c := range cats[1:] {
		if Index(c) < Index(best) {
			best = c
		}
	}
	return best
}

// Majority picks the highest-count category from a tally; ties break toward
// the earliest declaration rank. Empty tallies yield Uncategorized
func Majority(tally map[Category]int) Category {
	best := Uncategorized
	bestN := -1
	for cat, n := range tally {
		switch {
		case n > bestN:
			best, bestN = cat, n
		case n == bestN && Index(cat) < Index(best):
			best = cat
		}
	}
	return best
}

// Bucket is the productivity rollup a category accrues to
type Bucket string

const (
	// BucketProductive counts toward the productive side of the ratio
	BucketProductive Bucket = "productive"
	// BucketDistracting counts toward the distracting side of the ratio
	BucketDistracting Bucket = "distracting"
	// BucketNeutral counts toward neither side
	BucketNeutral Bucket = "neutral"
)

// ParseBucket resolves a user-supplied bucket name, case-insensitively
func ParseBucket(s string) (Bucket, error) {
	b := Bucket(strings.ToLower(strings.TrimSpace(s)))
	switch b {
	case BucketProductive, BucketDistracting, BucketNeutral:
		return b, nil
	default:
		return "", fmt.Errorf("taxonomy: unknown bucket %q", s)
	}
}

// Weights maps categories to buckets. Categories absent from the map read as
// neutral, so a partial user table only has to name what it changes
type Weights map[Category]Bucket

// DefaultWeights returns the stock mapping
func DefaultWeights() Weights {
	return Weights{
		Work:          BucketProductive,
		Learning:      BucketProductive,
		Entertainment: BucketDistracting,
		Social:        BucketDistracting,
		Shopping:      BucketDistracting,
		News:          BucketNeutral,
		Finance:       BucketNeutral,
		Health:        BucketNeutral,
		Reference:     BucketNeutral,
		Uncategorized: BucketNeutral,
	}
}

// BucketOf returns the bucket for c, neutral when unmapped
func (w Weights) BucketOf(c Category) Bucket {
	if b, ok := w[c]; ok {
		return b
	}
	return BucketNeutral
}

// Merge returns a copy of w overlaid with o; neither input is mutated
func (w Weights) Merge(o Weights) Weights {
	out := make(Weights, len(w)+len(o))
	for c, b := range w {
		out[c] = b
	}
	for c, b := range o {
		out[c] = b
	}
	return out
}
