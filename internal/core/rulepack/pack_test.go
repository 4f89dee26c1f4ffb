package rulepack

import (
	"testing"

	"rabbithole/internal/core/taxonomy"
)

func TestLoadEmbedded(t *testing.T) {
	p, err := Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	if p.Version != 1 {
		t.Fatalf("version = %d, want 1", p.Version)
	}
	if len(p.TopicNames()) == 0 {
		t.Fatal("embedded pack must carry learning topics")
	}
	if c, l := p.Domain("wikipedia.org"); c != taxonomy.Learning || l != LookupCategory {
		t.Fatalf("wikipedia.org -> %s/%d", c, l)
	}
}

func TestDomainRouting(t *testing.T) {
	p, err := Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	cases := []struct {
		name   string
		domain string
		cat    taxonomy.Category
		lookup Lookup
	}{
		{"exact", "github.com", taxonomy.Work, LookupCategory},
		{"suffix walk", "en.wikipedia.org", taxonomy.Learning, LookupCategory},
		{"subdomain beats parent", "maps.google.com", taxonomy.Reference, LookupCategory},
		{"scholar beats generic parent", "scholar.google.com", taxonomy.Learning, LookupCategory},
		{"generic search engine", "google.com", taxonomy.Uncategorized, LookupGeneric},
		{"generic via subdomain walk", "mail.google.com", taxonomy.Uncategorized, LookupGeneric},
		{"tld catch-all", "cs.cmu.edu", taxonomy.Learning, LookupCategory},
		{"miss", "example.io", taxonomy.Uncategorized, LookupMiss},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cat, lookup := p.Domain(tc.domain)
			if cat != tc.cat || lookup != tc.lookup {
				t.Fatalf("Domain(%s) = %s/%d, want %s/%d", tc.domain, cat, lookup, tc.cat, tc.lookup)
			}
		})
	}
}

func TestKeywordCategory(t *testing.T) {
	p, err := Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	cases := []struct {
		name  string
		text  string
		cat   taxonomy.Category
		found bool
	}{
		{"learning keyword", "golang tutorial for beginners", taxonomy.Learning, true},
		{"entertainment keyword", "official trailer 4k", taxonomy.Entertainment, true},
		{"tie breaks to earliest category", "how to watch netflix abroad", taxonomy.Learning, true},
		{"no match", "zxqv qqq", taxonomy.Uncategorized, false},
		{"empty", "", taxonomy.Uncategorized, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cat, found := p.KeywordCategory(tc.text)
			if cat != tc.cat || found != tc.found {
				t.Fatalf("KeywordCategory(%q) = %s/%v, want %s/%v", tc.text, cat, found, tc.cat, tc.found)
			}
		})
	}
}

func TestTopicsRespectWordEdges(t *testing.T) {
	p, err := Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	hits := p.Topics("a tour of go")
	if hits["go"] == 0 {
		t.Fatalf("padded keyword must match at string edge, got %v", hits)
	}
	if hits := p.Topics("sorting algorithms compared"); hits["go"] != 0 {
		t.Fatalf("bare substring must not match inside words, got %v", hits)
	}
}

func TestResourceTypes(t *testing.T) {
	p, err := Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	hits := p.ResourceTypes("https://go.dev/docs effective go tutorial")
	if hits["documentation"] == 0 || hits["tutorial"] == 0 {
		t.Fatalf("expected documentation and tutorial hits, got %v", hits)
	}
}

func TestCompileRejectsBadPacks(t *testing.T) {
	cases := []struct {
		name string
		raw  Raw
	}{
		{"conflicting domain", Raw{Version: 1, Categories: []RawCategory{
			{Name: "work", Domains: []string{"dual.example"}},
			{Name: "news", Domains: []string{"dual.example"}},
		}}},
		{"conflicting keyword", Raw{Version: 1, Categories: []RawCategory{
			{Name: "work", Keywords: []string{"shared"}},
			{Name: "news", Keywords: []string{"shared"}},
		}}},
		{"rules for uncategorized", Raw{Version: 1, Categories: []RawCategory{
			{Name: "uncategorized", Domains: []string{"x.example"}},
		}}},
		{"unknown category", Raw{Version: 1, Categories: []RawCategory{
			{Name: "doomscrolling", Domains: []string{"x.example"}},
		}}},
		{"generic collides with table", Raw{
			Version:        1,
			Categories:     []RawCategory{{Name: "work", Domains: []string{"x.example"}}},
			GenericDomains: []string{"x.example"},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.raw.Compile(); err == nil {
				t.Fatal("expected compile error")
			}
		})
	}
}

func TestParseRawVersionGate(t *testing.T) {
	if _, err := parseRaw([]byte(`{"version": 9}`)); err == nil {
		t.Fatal("expected version error")
	}
	if _, err := parseRaw([]byte(`{not json`)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestRawAddMergesExtraDomains(t *testing.T) {
	raw, err := Embedded()
	if err != nil {
		t.Fatalf("Embedded(): %v", err)
	}
	raw.Add("work", "intranet.example")
	raw.Add("health", "clinic.example")
	p, err := raw.Compile()
	if err != nil {
		t.Fatalf("Compile(): %v", err)
	}
	if c, _ := p.Domain("intranet.example"); c != taxonomy.Work {
		t.Fatalf("added domain routed to %s", c)
	}
	if c, _ := p.Domain("clinic.example"); c != taxonomy.Health {
		t.Fatalf("added domain routed to %s", c)
	}
}

func TestDuplicateRuleWithinCategoryIsTolerated(t *testing.T) {
	raw := Raw{Version: 1, Categories: []RawCategory{
		{Name: "work", Domains: []string{"x.example", "x.example"}, Keywords: []string{"twice", "twice"}},
	}}
	p, err := raw.Compile()
	if err != nil {
		t.Fatalf("Compile(): %v", err)
	}
	if c, _ := p.Domain("x.example"); c != taxonomy.Work {
		t.Fatalf("domain routed to %s", c)
	}
	if cat, ok := p.KeywordCategory("stated twice here"); !ok || cat != taxonomy.Work {
		t.Fatalf("KeywordCategory = %s/%v", cat, ok)
	}
}
