package sessions

import (
	"fmt"
	"strings"
	"time"

	"rabbithole/internal/core/taxonomy"
	tim "rabbithole/internal/platform/time"
)

// Session kinds, from the productive and distracting entry shares
const (
	KindHighlyProductive = "highly_productive"
	KindMostlyProductive = "mostly_productive"
	KindMixed            = "mixed"
	KindMostlyLeisure    = "mostly_leisure"
	KindLeisure          = "leisure"
)

// enrich fills the derived context fields from the already-set bounds,
// entries, and category tallies
func (s *Session) enrich(weights taxonomy.Weights) {
	s.TimeOfDay = tim.DayPart(s.StartTime)
	s.DayOfWeek = s.StartTime.Weekday().String()
	s.Weekend = tim.IsWeekend(s.StartTime)

	perDomain := make(map[string]int, 8)
	switches := 0
	prev := ""
	for _, e := range s.Entries {
		if e.Domain == "" {
			continue
		}
		perDomain[e.Domain]++
		if prev != "" && e.Domain != prev {
			switches++
		}
		prev = e.Domain
	}
	s.UniqueDomains = len(perDomain)
	s.DomainSwitches = switches
	s.FocusScore = focusScore(s.Duration.Duration(), switches, len(perDomain))

	productive, distracting := 0, 0
	for cat, n := range s.CategoryCounts {
		switch weights.BucketOf(cat) {
		case taxonomy.BucketProductive:
			productive += n
		case taxonomy.BucketDistracting:
			distracting += n
		}
	}
	total := float64(len(s.Entries))
	productiveShare := float64(productive) / total
	distractingShare := float64(distracting) / total
	s.Kind = kind(productiveShare, distractingShare)

	deepest := 0
	for _, n := range perDomain {
		if n > deepest {
			deepest = n
		}
	}
	s.RabbitHole = s.UniqueDomains > 0 && s.UniqueDomains <= 3 &&
		s.Duration.Duration() > 30*time.Minute && deepest > 5
	s.Research = productiveShare > 0.5 && s.UniqueDomains >= 5

	s.Summary = summarize(s)
}

// focusScore estimates how settled a session was: high when the user stayed
// put, low when they bounced between domains. Follows
// 1 - min(1, (switches/min + domains/min) / 2); zero-length sessions score 0
func focusScore(d time.Duration, switches, domains int) float64 {
	mins := d.Minutes()
	if mins <= 0 {
		return 0
	}
	rate := (float64(switches)/mins + float64(domains)/mins) / 2
	if rate > 1 {
		rate = 1
	}
	return 1 - rate
}

// kind labels the session from its productive and distracting entry shares
func kind(productive, distracting float64) string {
	switch {
	case productive > 0.7:
		return KindHighlyProductive
	case productive > 0.5:
		return KindMostlyProductive
	case distracting > 0.7:
		return KindLeisure
	case distracting > 0.5:
		return KindMostlyLeisure
	default:
		return KindMixed
	}
}

// summarize renders the one-line human description
func summarize(s *Session) string {
	return fmt.Sprintf("%s %s session during %s (%d minutes)",
		lengthWord(s.Duration.Duration()),
		strings.ReplaceAll(s.Kind, "_", " "),
		strings.ReplaceAll(s.TimeOfDay, "_", " "),
		int(s.Duration.Duration().Minutes()))
}

func lengthWord(d time.Duration) string {
	switch m := d.Minutes(); {
	case m < 5:
		return "quick"
	case m < 15:
		return "short"
	case m < 45:
		return "moderate"
	case m < 90:
		return "long"
	default:
		return "extended"
	}
}
