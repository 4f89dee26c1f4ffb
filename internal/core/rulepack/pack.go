// Package rulepack loads and compiles the categorization rules from the
// embedded rules.json: the domain table, the generic-domain set, per-category
// title keywords, and the learning topic/resource vocabularies.
// A compiled Pack is immutable and safe for concurrent use
package rulepack

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/cloudflare/ahocorasick"

	"rabbithole/internal/core/normalize"
	"rabbithole/internal/core/taxonomy"
)

//go:embed rules.json
var embedded []byte

// Raw is the on-disk shape of a rule pack. Keywords are matched as substrings
// of the folded text padded with one space on each side; authors add leading
// or trailing spaces to a keyword when they want word-exact behavior
// (" go " matches the word, "golang" matches anywhere)
type Raw struct {
	Version        int            `json:"version"`
	Meta           map[string]any `json:"meta,omitempty"`
	Categories     []RawCategory  `json:"categories"`
	GenericDomains []string       `json:"generic_domains,omitempty"`
	Learning       RawLearning    `json:"learning"`
}

// RawCategory carries the rules for one taxonomy category
type RawCategory struct {
	Name     string   `json:"name"`
	Domains  []string `json:"domains,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// RawLearning carries the vocabularies used to tag learning paths
type RawLearning struct {
	Topics        map[string][]string `json:"topics,omitempty"`
	ResourceTypes map[string][]string `json:"resource_types,omitempty"`
}

// Add appends extra domains to a category block, creating the block when the
// pack has none yet. Used to fold user extra_domains in before Compile
func (r *Raw) Add(category string, domains ...string) {
	for i := range r.Categories {
		if r.Categories[i].Name == category {
			r.Categories[i].Domains = append(r.Categories[i].Domains, domains...)
			return
		}
	}
	r.Categories = append(r.Categories, RawCategory{Name: category, Domains: domains})
}

// Lookup says how a domain routed through the pack tables
type Lookup int

const (
	// LookupMiss means no table knows the domain
	LookupMiss Lookup = iota
	// LookupCategory means the domain table decided the category
	LookupCategory
	// LookupGeneric means the domain is a search engine or redirector and
	// carries no category signal of its own
	LookupGeneric
)

// Pack is a compiled rule pack
type Pack struct {
	Version int
	Meta    map[string]any

	exact   map[string]taxonomy.Category
	generic map[string]struct{}

	kwMatcher *ahocorasick.Matcher
	kwCats    []taxonomy.Category // parallel to the matcher's patterns

	topicMatcher *ahocorasick.Matcher
	topicNames   []string

	resMatcher *ahocorasick.Matcher
	resNames   []string

	topics    []string
	resources []string
}

// Load compiles the embedded rules.json
func Load() (*Pack, error) {
	raw, err := Embedded()
	if err != nil {
		return nil, err
	}
	return raw.Compile()
}

// Embedded parses the embedded rules.json into its raw form
func Embedded() (Raw, error) {
	return parseRaw(embedded)
}

// ReadFile parses a rules.json-shaped pack from disk
func ReadFile(path string) (Raw, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Raw{}, fmt.Errorf("rulepack: read %s: %w", path, err)
	}
	return parseRaw(b)
}

func parseRaw(b []byte) (Raw, error) {
	var r Raw
	if err := json.Unmarshal(b, &r); err != nil {
		return Raw{}, fmt.Errorf("rulepack: parse rules: %w", err)
	}
	if r.Version != 1 {
		return Raw{}, fmt.Errorf("rulepack: unsupported rules version %d (want 1)", r.Version)
	}
	return r, nil
}

// Compile validates the raw pack and builds the lookup tables and matchers.
// Rule order in the file never matters: everything is sorted before the
// automatons are built, so equal packs compile to equal behavior
func (r Raw) Compile() (*Pack, error) {
	p := &Pack{
		Version: r.Version,
		Meta:    r.Meta,
		exact:   make(map[string]taxonomy.Category, 512),
		generic: make(map[string]struct{}, 16),
	}

	type kwRule struct {
		kw  string
		cat taxonomy.Category
	}
	var kws []kwRule

	for _, rc := range r.Categories {
		cat, err := taxonomy.Parse(rc.Name)
		if err != nil {
			return nil, fmt.Errorf("rulepack: %w", err)
		}
		if cat == taxonomy.Uncategorized {
			return nil, fmt.Errorf("rulepack: %q cannot carry rules; it marks the absence of a match", rc.Name)
		}
		for _, d := range rc.Domains {
			host := normalize.CanonicalHost(d)
			if host == "" {
				return nil, fmt.Errorf("rulepack: empty domain under %q", rc.Name)
			}
			if prev, dup := p.exact[host]; dup && prev != cat {
				return nil, fmt.Errorf("rulepack: domain %q mapped to both %q and %q", host, prev, cat)
			}
			p.exact[host] = cat
		}
		for _, kw := range rc.Keywords {
			folded := foldKeyword(kw)
			if folded == "" {
				return nil, fmt.Errorf("rulepack: empty keyword under %q", rc.Name)
			}
			kws = append(kws, kwRule{kw: folded, cat: cat})
		}
	}

	for _, d := range r.GenericDomains {
		host := normalize.CanonicalHost(d)
		if host == "" {
			return nil, fmt.Errorf("rulepack: empty generic domain")
		}
		if cat, dup := p.exact[host]; dup {
			return nil, fmt.Errorf("rulepack: generic domain %q already categorized as %q", host, cat)
		}
		p.generic[host] = struct{}{}
	}

	// category keyword matcher, deterministic order, duplicates rejected
	sort.Slice(kws, func(i, j int) bool {
		if kws[i].kw != kws[j].kw {
			return kws[i].kw < kws[j].kw
		}
		return taxonomy.Index(kws[i].cat) < taxonomy.Index(kws[j].cat)
	})
	pats := make([]string, 0, len(kws))
	for i, k := range kws {
		if i > 0 && kws[i-1].kw == k.kw {
			if kws[i-1].cat == k.cat {
				continue // same rule stated twice
			}
			return nil, fmt.Errorf("rulepack: keyword %q appears under both %q and %q", k.kw, kws[i-1].cat, k.cat)
		}
		pats = append(pats, k.kw)
		p.kwCats = append(p.kwCats, k.cat)
	}
	if len(pats) > 0 {
		p.kwMatcher = ahocorasick.NewStringMatcher(pats)
	}

	var err error
	p.topicMatcher, p.topicNames, p.topics, err = compileVocab("topic", r.Learning.Topics)
	if err != nil {
		return nil, err
	}
	p.resMatcher, p.resNames, p.resources, err = compileVocab("resource type", r.Learning.ResourceTypes)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// compileVocab flattens a name->keywords map into one matcher with a parallel
// name slice, sorted for deterministic automaton construction
func compileVocab(what string, vocab map[string][]string) (*ahocorasick.Matcher, []string, []string, error) {
	if len(vocab) == 0 {
		return nil, nil, nil, nil
	}
	names := make([]string, 0, len(vocab))
	for name := range vocab {
		if strings.TrimSpace(name) == "" {
			return nil, nil, nil, fmt.Errorf("rulepack: empty %s name", what)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	type pair struct{ kw, name string }
	var pairs []pair
	for _, name := range names {
		for _, kw := range vocab[name] {
			folded := foldKeyword(kw)
			if folded == "" {
				return nil, nil, nil, fmt.Errorf("rulepack: empty keyword under %s %q", what, name)
			}
			pairs = append(pairs, pair{kw: folded, name: name})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].kw != pairs[j].kw {
			return pairs[i].kw < pairs[j].kw
		}
		return pairs[i].name < pairs[j].name
	})

	pats := make([]string, 0, len(pairs))
	parallel := make([]string, 0, len(pairs))
	for i, pr := range pairs {
		if i > 0 && pairs[i-1].kw == pr.kw {
			if pairs[i-1].name == pr.name {
				continue
			}
			return nil, nil, nil, fmt.Errorf("rulepack: %s keyword %q appears under both %q and %q", what, pr.kw, pairs[i-1].name, pr.name)
		}
		pats = append(pats, pr.kw)
		parallel = append(parallel, pr.name)
	}
	return ahocorasick.NewStringMatcher(pats), parallel, names, nil
}

// foldKeyword folds a keyword while preserving any deliberate edge spaces,
// which carry word-boundary intent under padded matching
func foldKeyword(kw string) string {
	lead := strings.HasPrefix(kw, " ")
	trail := strings.HasSuffix(kw, " ")
	folded := normalize.Fold(kw)
	if folded == "" {
		return ""
	}
	if lead {
		folded = " " + folded
	}
	if trail {
		folded += " "
	}
	return folded
}

// Domain routes a canonical host through the tables: exact entry first, then
// parent labels, so "maps.google.com" beats "google.com" and a bare "edu"
// entry catches every .edu host
func (p *Pack) Domain(domain string) (taxonomy.Category, Lookup) {
	d := domain
	for d != "" {
		if c, ok := p.exact[d]; ok {
			return c, LookupCategory
		}
		if _, ok := p.generic[d]; ok {
			return taxonomy.Uncategorized, LookupGeneric
		}
		i := strings.IndexByte(d, '.')
		if i < 0 {
			break
		}
		d = d[i+1:]
	}
	return taxonomy.Uncategorized, LookupMiss
}

// KeywordCategory matches the folded text against every category keyword and
// returns the hit category earliest in taxonomy order, when any
func (p *Pack) KeywordCategory(folded string) (taxonomy.Category, bool) {
	if p.kwMatcher == nil || folded == "" {
		return taxonomy.Uncategorized, false
	}
	hits := p.kwMatcher.MatchThreadSafe(pad(folded))
	if len(hits) == 0 {
		return taxonomy.Uncategorized, false
	}
	best := p.kwCats[hits[0]]
	for _, h := range hits[1:] {
		if taxonomy.Index(p.kwCats[h]) < taxonomy.Index(best) {
			best = p.kwCats[h]
		}
	}
	return best, true
}

// Topics counts, per learning topic, how many of its keywords occur in the
// folded text. Topics with no hits are absent from the map
func (p *Pack) Topics(folded string) map[string]int {
	return p.vocabHits(p.topicMatcher, p.topicNames, folded)
}

// ResourceTypes counts, per resource type, how many of its keywords occur in
// the folded text
func (p *Pack) ResourceTypes(folded string) map[string]int {
	return p.vocabHits(p.resMatcher, p.resNames, folded)
}

// TopicNames returns the known topic names, sorted
func (p *Pack) TopicNames() []string { return append([]string(nil), p.topics...) }

func (p *Pack) vocabHits(m *ahocorasick.Matcher, names []string, folded string) map[string]int {
	if m == nil || folded == "" {
		return nil
	}
	hits := m.MatchThreadSafe(pad(folded))
	if len(hits) == 0 {
		return nil
	}
	out := make(map[string]int, len(hits))
	for _, h := range hits {
		out[names[h]]++
	}
	return out
}

// pad brackets the haystack with single spaces so space-edged keywords get
// word-exact matches at string boundaries too
func pad(folded string) []byte {
	b := make([]byte, 0, len(folded)+2)
	b = append(b, ' ')
	b = append(b, folded...)
	b = append(b, ' ')
	return b
}
