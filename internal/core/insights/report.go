package insights

import (
	"time"

	"rabbithole/internal/core/categorizer"
	"rabbithole/internal/core/history"
	"rabbithole/internal/core/patterns"
	"rabbithole/internal/core/scoring"
	"rabbithole/internal/core/sessions"
	"rabbithole/internal/core/taxonomy"
	tim "rabbithole/internal/platform/time"
)

// Report is the analysis result. The headline counts are always present;
// categorization appears at basic depth and the behavioral sections at
// comprehensive. Field names are wire-stable
type Report struct {
	Depth            Depth      `json:"depth"`
	EntriesAnalyzed  int        `json:"entries_analyzed"`
	DegradedRowCount int        `json:"degraded_row_count"`
	UniqueDomains    int        `json:"unique_domains"`
	WindowStart      *time.Time `json:"window_start"`
	WindowEnd        *time.Time `json:"window_end"`

	Categories           map[string]taxonomy.Category `json:"categories,omitempty"`
	UncategorizedDomains []categorizer.Uncategorized  `json:"uncategorized_domains,omitempty"`
	DomainStats          []patterns.DomainStat        `json:"domain_stats,omitempty"`

	Sessions        []sessions.Session      `json:"sessions,omitempty"`
	LearningPaths   []patterns.LearningPath `json:"learning_paths,omitempty"`
	Productivity    *scoring.Score          `json:"productivity,omitempty"`
	SessionInsights *SessionRollup          `json:"session_insights,omitempty"`
}

// SessionRollup condenses the session list into counts a reader can scan
// without walking every session
type SessionRollup struct {
	TotalSessions     int            `json:"total_sessions"`
	AvgSessionMinutes float64        `json:"avg_session_minutes"`
	ByKind            map[string]int `json:"by_kind,omitempty"`
	ByTimeOfDay       map[string]int `json:"by_time_of_day,omitempty"`
	RabbitHoles       int            `json:"rabbit_holes"`
	ResearchSessions  int            `json:"research_sessions"`
	WeekendSessions   int            `json:"weekend_sessions"`
	WeekdaySessions   int            `json:"weekday_sessions"`
}

func rollup(sess []sessions.Session) *SessionRollup {
	r := &SessionRollup{TotalSessions: len(sess)}
	if len(sess) == 0 {
		return r
	}
	r.ByKind = make(map[string]int, 5)
	r.ByTimeOfDay = make(map[string]int, 7)
	var total time.Duration
	for _, s := range sess {
		total += s.Duration.Duration()
		r.ByKind[s.Kind]++
		r.ByTimeOfDay[s.TimeOfDay]++
		if s.RabbitHole {
			r.RabbitHoles++
		}
		if s.Research {
			r.ResearchSessions++
		}
		if s.Weekend {
			r.WeekendSessions++
		} else {
			r.WeekdaySessions++
		}
	}
	r.AvgSessionMinutes = total.Minutes() / float64(len(sess))
	return r
}

// window finds the observed time bounds, ignoring entries whose timestamp
// degraded to zero. Both bounds are nil when nothing carried a usable time
func window(entries []history.Entry) (start, end *time.Time) {
	var lo, hi time.Time
	for _, e := range entries {
		if e.VisitedAt.IsZero() {
			continue
		}
		if lo.IsZero() || e.VisitedAt.Before(lo) {
			lo = e.VisitedAt
		}
		if e.VisitedAt.After(hi) {
			hi = e.VisitedAt
		}
	}
	return tim.Ptr(lo), tim.Ptr(hi)
}
