// Package history defines the raw and normalized browsing-history row types
// shared by every stage of the analysis pipeline
package history

import (
	"strconv"
	"time"
)

// RawRow is one history row as handed to the engine by an adapter or caller.
// Only url carries real meaning; title, timestamp, and visit_count all
// degrade to safe defaults when absent or garbled
type RawRow struct {
	URL        string    `json:"url"`
	Title      string    `json:"title,omitempty"`
	Timestamp  Timestamp `json:"timestamp"`
	VisitCount int       `json:"visit_count,omitempty"`
}

// Entry is one normalized history row: UTC instant, derived domain, defaulted
// visit count. Degraded marks rows that needed a safe-default substitution;
// they stay in the stream so entry counts remain honest
type Entry struct {
	URL        string    `json:"url"`
	Title      string    `json:"title,omitempty"`
	Domain     string    `json:"domain"`
	VisitedAt  time.Time `json:"visited_at"`
	VisitCount int       `json:"visit_count"`
	Degraded   bool      `json:"degraded,omitempty"`
}

// Less orders entries by visit time, then URL, title, and visit count so the
// order is total: any permutation of the same rows sorts identically
func (e Entry) Less(o Entry) bool {
	if !e.VisitedAt.Equal(o.VisitedAt) {
		return e.VisitedAt.Before(o.VisitedAt)
	}
	if e.URL != o.URL {
		return e.URL < o.URL
	}
	if e.Title != o.Title {
		return e.Title < o.Title
	}
	return e.VisitCount > o.VisitCount
}

// Seconds is a time.Duration that marshals as fractional seconds instead of
// nanoseconds, which is what report consumers expect to read
type Seconds time.Duration

// Duration returns the underlying time.Duration
func (s Seconds) Duration() time.Duration { return time.Duration(s) }

// MarshalJSON renders the duration as a JSON number of seconds
func (s Seconds) MarshalJSON() ([]byte, error) {
	return strconv.AppendFloat(nil, time.Duration(s).Seconds(), 'f', -1, 64), nil
}

// UnmarshalJSON reads a JSON number of seconds back into a duration
func (s *Seconds) UnmarshalJSON(b []byte) error {
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*s = Seconds(time.Duration(v * float64(time.Second)))
	return nil
}
