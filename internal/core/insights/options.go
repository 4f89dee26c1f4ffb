package insights

import (
	"strings"
	"time"

	"rabbithole/internal/core/categorizer"
	"rabbithole/internal/core/history"
	"rabbithole/internal/core/patterns"
	"rabbithole/internal/core/rulepack"
	"rabbithole/internal/core/sessions"
	"rabbithole/internal/core/taxonomy"
	perr "rabbithole/internal/platform/errors"
	"rabbithole/internal/platform/validate"
)

// Depth selects how much of the report Analyze produces. Each depth is a
// strict superset of the one before it
type Depth string

const (
	// DepthQuick reports the headline counts and the analysis window
	DepthQuick Depth = "quick_summary"

	// DepthBasic adds categories, the uncategorized roster, and domain stats
	DepthBasic Depth = "basic"

	// DepthComprehensive adds sessions, learning paths, productivity, and
	// the session rollup
	DepthComprehensive Depth = "comprehensive"
)

// ParseDepth reads a depth name; empty means comprehensive
func ParseDepth(s string) (Depth, error) {
	d := Depth(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case "":
		return DepthComprehensive, nil
	case DepthQuick, DepthBasic, DepthComprehensive:
		return d, nil
	default:
		return "", perr.Validationf("unknown depth %q", s)
	}
}

func (d Depth) rank() int {
	switch d {
	case DepthQuick:
		return 0
	case DepthBasic:
		return 1
	default:
		return 2
	}
}

// atLeast reports whether d includes everything min produces
func (d Depth) atLeast(min Depth) bool { return d.rank() >= min.rank() }

// Options tunes Analyze. The zero value is usable: comprehensive depth,
// default gaps, embedded rules, auto epoch
type Options struct {
	// SessionGap splits sessions on inactivity; zero means sessions.DefaultGap
	SessionGap time.Duration `json:"session_gap" validate:"min=0"`

	// LearningGap splits learning paths; zero means patterns.DefaultLearningGap
	LearningGap time.Duration `json:"learning_gap" validate:"min=0"`

	// Overrides pins domains and their subdomains to a category by name
	Overrides map[string]string `json:"overrides,omitempty"`

	// Weights re-buckets categories by name, merged over the defaults
	Weights map[string]string `json:"weights,omitempty"`

	// LearningCategories picks which categories count as learning activity;
	// empty means just learning
	LearningCategories []string `json:"learning_categories,omitempty"`

	// Depth gates report sections; empty means comprehensive
	Depth Depth `json:"depth" validate:"omitempty,oneof=quick_summary basic comprehensive"`

	// TopDomains caps the domain stats table; zero keeps every domain
	TopDomains int `json:"top_domains" validate:"min=0"`

	// MaxEntries caps analysis to the most recent rows after normalization;
	// zero keeps everything
	MaxEntries int `json:"max_entries" validate:"min=0"`

	// Epoch hints how numeric timestamps are encoded; empty means auto
	Epoch history.Epoch `json:"epoch,omitempty"`

	// Pack supplies categorization rules; nil means the embedded pack
	Pack *rulepack.Pack `json:"-"`
}

func (o Options) withDefaults() Options {
	if o.SessionGap == 0 {
		o.SessionGap = sessions.DefaultGap
	}
	if o.LearningGap == 0 {
		o.LearningGap = patterns.DefaultLearningGap
	}
	if o.Depth == "" {
		o.Depth = DepthComprehensive
	}
	if len(o.LearningCategories) == 0 {
		o.LearningCategories = []string{string(taxonomy.Learning)}
	}
	return o
}

// resolved is Options after validation, with every name bound to its type
type resolved struct {
	pack     *rulepack.Pack
	cat      *categorizer.Categorizer
	weights  taxonomy.Weights
	learning []taxonomy.Category
	epoch    history.Epoch
}

func (o Options) resolve() (*resolved, error) {
	if err := validate.Struct(o); err != nil {
		return nil, err
	}

	epoch, err := history.ParseEpoch(string(o.Epoch))
	if err != nil {
		return nil, perr.WithField(perr.Validationf("%v", err), "epoch")
	}

	r := &resolved{pack: o.Pack, epoch: epoch}
	if r.pack == nil {
		p, err := rulepack.Load()
		if err != nil {
			return nil, perr.Wrap(err, perr.CodeRules, "embedded rules")
		}
		r.pack = p
	}

	overrides := make(map[string]taxonomy.Category, len(o.Overrides))
	for domain, name := range o.Overrides {
		cat, err := taxonomy.Parse(name)
		if err != nil {
			return nil, perr.WithField(perr.Validationf("override %s: %v", domain, err), "overrides")
		}
		overrides[domain] = cat
	}
	c, err := categorizer.New(r.pack, overrides)
	if err != nil {
		return nil, perr.Wrap(err, perr.CodeValidation, "overrides")
	}
	r.cat = c

	r.weights = taxonomy.DefaultWeights()
	if len(o.Weights) > 0 {
		overlay := make(taxonomy.Weights, len(o.Weights))
		for name, bucket := range o.Weights {
			cat, err := taxonomy.Parse(name)
			if err != nil {
				return nil, perr.WithField(perr.Validationf("weight %s: %v", name, err), "weights")
			}
			b, err := taxonomy.ParseBucket(bucket)
			if err != nil {
				return nil, perr.WithField(perr.Validationf("weight %s: %v", name, err), "weights")
			}
			overlay[cat] = b
		}
		r.weights = r.weights.Merge(overlay)
	}

	for _, name := range o.LearningCategories {
		cat, err := taxonomy.Parse(name)
		if err != nil {
			return nil, perr.WithField(perr.Validationf("learning category: %v", err), "learning_categories")
		}
		r.learning = append(r.learning, cat)
	}

	return r, nil
}
