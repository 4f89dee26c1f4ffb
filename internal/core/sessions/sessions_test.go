package sessions

import (
	"testing"
	"time"

	"rabbithole/internal/core/history"
	"rabbithole/internal/core/taxonomy"
)

var base = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC) // a Monday

func entry(at time.Time, domain string) history.Entry {
	return history.Entry{
		URL:        "https://" + domain + "/",
		Domain:     domain,
		VisitedAt:  at,
		VisitCount: 1,
	}
}

func byDomain(cats map[string]taxonomy.Category) func(history.Entry) taxonomy.Category {
	return func(e history.Entry) taxonomy.Category {
		if c, ok := cats[e.Domain]; ok {
			return c
		}
		return taxonomy.Uncategorized
	}
}

func TestGroupByGapSplitsOnThreshold(t *testing.T) {
	// pauses of 10m, 10m, 45m, 5m with a 30m threshold: the 45m pause is the
	// only split, so the first three entries share a session and the last two
	// share another
	entries := []history.Entry{
		entry(base, "a.example"),
		entry(base.Add(10*time.Minute), "b.example"),
		entry(base.Add(20*time.Minute), "c.example"),
		entry(base.Add(65*time.Minute), "d.example"),
		entry(base.Add(70*time.Minute), "e.example"),
	}

	groups := GroupByGap(entries, 30*time.Minute)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if len(groups[0]) != 3 || len(groups[1]) != 2 {
		t.Fatalf("group sizes = %d, %d; want 3, 2", len(groups[0]), len(groups[1]))
	}
	if groups[1][0].Domain != "d.example" {
		t.Fatalf("second group starts at %s, want d.example", groups[1][0].Domain)
	}
}

func TestGroupByGapInvariants(t *testing.T) {
	pauses := []time.Duration{
		0, // equal timestamps share a group
		2 * time.Minute,
		29*time.Minute + 59*time.Second, // just under the threshold
		30 * time.Minute,                // exactly the threshold splits
		31 * time.Minute,
		5 * time.Minute,
		90 * time.Minute,
		0,
		time.Minute,
	}
	entries := []history.Entry{entry(base, "d0.example")}
	at := base
	for i, p := range pauses {
		at = at.Add(p)
		entries = append(entries, entry(at, "d"+string(rune('1'+i))+".example"))
	}

	gap := 30 * time.Minute
	groups := GroupByGap(entries, gap)

	// every entry lands in exactly one group, in order
	var flat []history.Entry
	for _, g := range groups {
		if len(g) == 0 {
			t.Fatal("empty group")
		}
		flat = append(flat, g...)
	}
	if len(flat) != len(entries) {
		t.Fatalf("partition lost entries: %d != %d", len(flat), len(entries))
	}
	for i := range flat {
		if !flat[i].VisitedAt.Equal(entries[i].VisitedAt) {
			t.Fatalf("entry %d reordered", i)
		}
	}

	// pauses inside a group stay under the threshold, pauses between groups
	// reach it
	for gi, g := range groups {
		for i := 1; i < len(g); i++ {
			if g[i].VisitedAt.Sub(g[i-1].VisitedAt) >= gap {
				t.Fatalf("group %d holds a pause >= gap", gi)
			}
		}
		if gi > 0 {
			prev := groups[gi-1]
			if g[0].VisitedAt.Sub(prev[len(prev)-1].VisitedAt) < gap {
				t.Fatalf("boundary %d closer than gap", gi)
			}
		}
	}

	if len(groups) != 4 {
		t.Fatalf("expected 4 groups, got %d", len(groups))
	}
}

func TestGroupByGapEdges(t *testing.T) {
	if got := GroupByGap(nil, time.Minute); got != nil {
		t.Fatalf("nil entries must yield nil, got %v", got)
	}
	one := []history.Entry{entry(base, "a.example")}
	groups := GroupByGap(one, time.Minute)
	if len(groups) != 1 || len(groups[0]) != 1 {
		t.Fatalf("single entry must yield one group of one, got %v", groups)
	}

	// zero gap falls back to the default rather than splitting everywhere
	two := []history.Entry{entry(base, "a.example"), entry(base.Add(time.Minute), "b.example")}
	if got := GroupByGap(two, 0); len(got) != 1 {
		t.Fatalf("zero gap must use the default threshold, got %d groups", len(got))
	}
}

func TestBuildResolvesSessions(t *testing.T) {
	entries := []history.Entry{
		entry(base, "github.com"),
		entry(base.Add(10*time.Minute), "github.com"),
		entry(base.Add(20*time.Minute), "youtube.com"),
		entry(base.Add(65*time.Minute), "youtube.com"),
		entry(base.Add(70*time.Minute), "netflix.com"),
	}
	cats := map[string]taxonomy.Category{
		"github.com":  taxonomy.Work,
		"youtube.com": taxonomy.Entertainment,
		"netflix.com": taxonomy.Entertainment,
	}

	got := Build(entries, byDomain(cats), Options{Gap: 30 * time.Minute})
	if len(got) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(got))
	}

	first := got[0]
	if first.ID != base.Format(time.RFC3339)+"_3" {
		t.Fatalf("session id = %q", first.ID)
	}
	if !first.StartTime.Equal(base) || !first.EndTime.Equal(base.Add(20*time.Minute)) {
		t.Fatalf("bounds = %s .. %s", first.StartTime, first.EndTime)
	}
	if first.Duration.Duration() != 20*time.Minute {
		t.Fatalf("duration = %v", first.Duration.Duration())
	}
	if first.DominantCategory != taxonomy.Work {
		t.Fatalf("dominant = %s, want work", first.DominantCategory)
	}
	if first.CategoryCounts[taxonomy.Work] != 2 || first.CategoryCounts[taxonomy.Entertainment] != 1 {
		t.Fatalf("tallies = %v", first.CategoryCounts)
	}

	if got[1].DominantCategory != taxonomy.Entertainment {
		t.Fatalf("second dominant = %s, want entertainment", got[1].DominantCategory)
	}
}

func TestBuildTieBreaksByDeclarationOrder(t *testing.T) {
	entries := []history.Entry{
		entry(base, "netflix.com"),
		entry(base.Add(time.Minute), "github.com"),
	}
	cats := map[string]taxonomy.Category{
		"netflix.com": taxonomy.Entertainment,
		"github.com":  taxonomy.Work,
	}

	got := Build(entries, byDomain(cats), Options{})
	if len(got) != 1 {
		t.Fatalf("expected 1 session, got %d", len(got))
	}
	if got[0].DominantCategory != taxonomy.Work {
		t.Fatalf("tie must break toward work, got %s", got[0].DominantCategory)
	}
}

func TestBuildEmptyAndNilCategorize(t *testing.T) {
	if got := Build(nil, nil, Options{}); len(got) != 0 {
		t.Fatalf("no entries must yield no sessions, got %d", len(got))
	}

	got := Build([]history.Entry{entry(base, "a.example")}, nil, Options{})
	if len(got) != 1 || got[0].DominantCategory != taxonomy.Uncategorized {
		t.Fatalf("nil categorize must resolve uncategorized, got %+v", got)
	}
}

func TestBuildPartitionKeepsEveryEntry(t *testing.T) {
	var entries []history.Entry
	at := base
	for i := 0; i < 40; i++ {
		entries = append(entries, entry(at, "a.example"))
		if i%7 == 6 {
			at = at.Add(2 * time.Hour)
		} else {
			at = at.Add(3 * time.Minute)
		}
	}

	got := Build(entries, nil, Options{Gap: 30 * time.Minute})
	total := 0
	for _, s := range got {
		total += len(s.Entries)
	}
	if total != len(entries) {
		t.Fatalf("sessions cover %d entries, want %d", total, len(entries))
	}
}
