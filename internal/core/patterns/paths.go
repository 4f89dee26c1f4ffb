package patterns

import (
	"time"

	"rabbithole/internal/core/history"
	"rabbithole/internal/core/normalize"
	"rabbithole/internal/core/rulepack"
	"rabbithole/internal/core/sessions"
	"rabbithole/internal/core/taxonomy"
)

// DefaultLearningGap splits learning paths on shorter pauses than whole
// sessions use: a quarter hour away from the material ends the thread
const DefaultLearningGap = 15 * time.Minute

// GeneralTopic labels paths whose text matches no known topic vocabulary
const GeneralTopic = "general"

// PathOptions tunes learning-path extraction
type PathOptions struct {
	// Gap splits two visits into separate paths; zero or negative means
	// DefaultLearningGap
	Gap time.Duration

	// Categories selects which domain categories count as learning activity;
	// empty means just taxonomy.Learning
	Categories []taxonomy.Category
}

// LearningPath is one contiguous run of learning-category visits with the
// topics and resource types its text matched
type LearningPath struct {
	StartTime     time.Time       `json:"start_time"`
	EndTime       time.Time       `json:"end_time"`
	Duration      history.Seconds `json:"duration_seconds"`
	Entries       []history.Entry `json:"entries"`
	Topic         string          `json:"topic"`
	Topics        map[string]int  `json:"topics,omitempty"`
	ResourceTypes map[string]int  `json:"resource_types,omitempty"`
	Domains       []string        `json:"domains"`
}

// LearningPaths extracts gap-segmented runs of learning activity. categories
// is the settled per-domain category map; entries whose domain is missing
// from it, or maps outside the selected categories, are ignored. pack
// supplies the topic and resource-type vocabularies and may be nil to skip
// tagging. Entries must be time-ordered. Single-visit paths are kept
func LearningPaths(entries []history.Entry, categories map[string]taxonomy.Category, pack *rulepack.Pack, opts PathOptions) []LearningPath {
	allowed := make(map[taxonomy.Category]struct{}, len(opts.Categories)+1)
	for _, c := range opts.Categories {
		allowed[c] = struct{}{}
	}
	if len(allowed) == 0 {
		allowed[taxonomy.Learning] = struct{}{}
	}

	var learning []history.Entry
	for _, e := range entries {
		if e.Domain == "" {
			continue
		}
		if _, ok := allowed[categories[e.Domain]]; ok {
			learning = append(learning, e)
		}
	}
	if len(learning) == 0 {
		return []LearningPath{}
	}

	gap := opts.Gap
	if gap <= 0 {
		gap = DefaultLearningGap
	}

	groups := sessions.GroupByGap(learning, gap)
	out := make([]LearningPath, 0, len(groups))
	for _, g := range groups {
		out = append(out, buildPath(g, pack))
	}
	return out
}

func buildPath(g []history.Entry, pack *rulepack.Pack) LearningPath {
	first, last := g[0], g[len(g)-1]
	p := LearningPath{
		StartTime: first.VisitedAt,
		EndTime:   last.VisitedAt,
		Duration:  history.Seconds(last.VisitedAt.Sub(first.VisitedAt)),
		Entries:   g,
		Topic:     GeneralTopic,
	}

	seen := make(map[string]struct{}, 4)
	for _, e := range g {
		if _, dup := seen[e.Domain]; !dup {
			seen[e.Domain] = struct{}{}
			p.Domains = append(p.Domains, e.Domain)
		}
		if pack == nil {
			continue
		}
		text := normalize.Fold(e.URL + " " + e.Title)
		for topic, n := range pack.Topics(text) {
			if p.Topics == nil {
				p.Topics = make(map[string]int, 4)
			}
			p.Topics[topic] += n
		}
		for res, n := range pack.ResourceTypes(text) {
			if p.ResourceTypes == nil {
				p.ResourceTypes = make(map[string]int, 4)
			}
			p.ResourceTypes[res] += n
		}
	}

	if len(p.Topics) > 0 {
		p.Topic = dominantTopic(p.Topics)
	}
	return p
}

// dominantTopic picks the highest-count topic, ties toward the
// alphabetically first name
func dominantTopic(topics map[string]int) string {
	best, bestN := "", -1
	for name, n := range topics {
		if n > bestN || (n == bestN && name < best) {
			best, bestN = name, n
		}
	}
	return best
}
