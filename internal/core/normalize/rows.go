package normalize

import (
	"sort"
	"strings"
	"unicode/utf8"

	"rabbithole/internal/core/history"
)

// Options tunes row normalization
type Options struct {
	// Epoch hints how numeric timestamps are encoded; auto by default
	Epoch history.Epoch
}

// Stats counts what Rows did; Degraded feeds the report's degraded_row_count
type Stats struct {
	Rows     int
	Entries  int
	Degraded int
}

// Rows converts raw rows into normalized entries ordered by visit time
// (ties broken by URL then title so ordering is total). Malformed rows are
// kept with safe defaults and counted, never dropped: entry totals must stay
// honest even over messy input
func Rows(rows []history.RawRow, opts Options) ([]history.Entry, Stats) {
	st := Stats{Rows: len(rows)}
	entries := make([]history.Entry, 0, len(rows))
	for _, r := range rows {
		e := row(r, opts.Epoch)
		if e.Degraded {
			st.Degraded++
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Less(entries[j]) })
	st.Entries = len(entries)
	return entries, st
}

// row applies the degradation policy for a single raw row:
// empty or unparsable URL -> Domain "" and degraded
// missing or unparsable timestamp -> zero time and degraded
// negative visit count -> 1 and degraded; missing (0) -> 1, not degraded
func row(r history.RawRow, epoch history.Epoch) history.Entry {
	e := history.Entry{
		URL:   strings.TrimSpace(r.URL),
		Title: cleanTitle(r.Title),
	}

	e.Domain = Domain(e.URL)
	if e.Domain == "" {
		e.Degraded = true
	}

	if r.Timestamp.IsZero() {
		e.Degraded = true
	} else if ts, err := r.Timestamp.Resolve(epoch); err != nil {
		e.Degraded = true
	} else {
		e.VisitedAt = ts
	}

	switch {
	case r.VisitCount < 0:
		e.VisitCount = 1
		e.Degraded = true
	case r.VisitCount == 0:
		// absent means the row was visited at least once
		e.VisitCount = 1
	default:
		e.VisitCount = r.VisitCount
	}

	return e
}

// cleanTitle strips control bytes and invalid UTF-8 from page titles, which
// arrive straight out of browser databases in every state imaginable.
// Fast path returns the trimmed input when nothing needs cleaning
func cleanTitle(s string) string {
	if s == "" {
		return ""
	}

	i := 0
	for i < len(s) {
		b := s[i]
		if b < 0x20 || b == 0x7F {
			break
		}
		if b < 0x80 {
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if (r == utf8.RuneError && size == 1) || (r >= 0x80 && r <= 0x9F) {
			break
		}
		i += size
	}
	if i == len(s) {
		return strings.TrimSpace(s)
	}

	var b strings.Builder
	b.Grow(len(s))
	b.WriteString(s[:i])
	for i < len(s) {
		c := s[i]
		if c < 0x20 || c == 0x7F {
			b.WriteByte(' ')
			i++
			continue
		}
		if c < 0x80 {
			b.WriteByte(c)
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			i++ // invalid byte, drop
			continue
		}
		if r >= 0x80 && r <= 0x9F {
			b.WriteByte(' ') // C1 control
			i += size
			continue
		}
		b.WriteString(s[i : i+size])
		i += size
	}
	return collapseSpaces(b.String())
}
