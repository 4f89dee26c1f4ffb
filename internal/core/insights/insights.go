// Package insights is the analysis engine. It takes raw browsing-history
// rows and produces a report of sessions, categories, domain patterns,
// learning paths, and productivity, composed from the core packages behind
// one pure call
package insights

import (
	"rabbithole/internal/core/history"
	"rabbithole/internal/core/normalize"
	"rabbithole/internal/core/patterns"
	"rabbithole/internal/core/scoring"
	"rabbithole/internal/core/sessions"
)

// Analyze runs the full pipeline over rows: normalize, categorize, then the
// depth-gated sections. It is pure: no I/O, no clock, no randomness, so
// identical rows and options always produce identical reports. Empty input
// is not an error; it yields a valid empty report
func Analyze(rows []history.RawRow, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	res, err := opts.resolve()
	if err != nil {
		return nil, err
	}

	entries, stats := normalize.Rows(rows, normalize.Options{Epoch: res.epoch})
	if opts.MaxEntries > 0 && len(entries) > opts.MaxEntries {
		entries = entries[len(entries)-opts.MaxEntries:]
	}

	report := &Report{
		Depth:            opts.Depth,
		EntriesAnalyzed:  len(entries),
		DegradedRowCount: stats.Degraded,
	}
	report.WindowStart, report.WindowEnd = window(entries)

	domains := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Domain != "" {
			domains[e.Domain] = struct{}{}
		}
	}
	report.UniqueDomains = len(domains)

	if !opts.Depth.atLeast(DepthBasic) {
		return report, nil
	}

	cats, roster := res.cat.CategorizeAll(entries)
	report.Categories = cats
	report.UncategorizedDomains = roster
	report.DomainStats = patterns.DomainStats(entries, opts.TopDomains)

	if !opts.Depth.atLeast(DepthComprehensive) {
		return report, nil
	}

	sess := sessions.Build(entries, res.cat.Categorize, sessions.Options{
		Gap:     opts.SessionGap,
		Weights: res.weights,
		Enrich:  true,
	})
	report.Sessions = sess
	report.LearningPaths = patterns.LearningPaths(entries, cats, res.pack, patterns.PathOptions{
		Gap:        opts.LearningGap,
		Categories: res.learning,
	})
	score := scoring.Sessions(sess, res.cat.Categorize, res.weights)
	report.Productivity = &score
	report.SessionInsights = rollup(sess)

	return report, nil
}
