// Package domain defines the types and ports for the analyze service
package domain

import (
	"time"

	"rabbithole/internal/core/insights"
)

// SourceStats counts what a row source saw while reading. Malformed rows were
// skipped by the source and merge into the report's degraded_row_count so the
// caller sees one honest tally no matter where a row fell over
type SourceStats struct {
	Rows      int `json:"rows"`
	Malformed int `json:"malformed"`
}

// RunInput couples one row source with the engine options for a single run
type RunInput struct {
	Source  RowSource
	Options insights.Options
}

// RunOutput is the run envelope around a report. The envelope carries the only
// nondeterministic values of a run (id, wall clock, timing); everything inside
// Report is a pure function of the rows and options
type RunOutput struct {
	RunID       string           `json:"run_id"`
	Engine      string           `json:"engine"`
	GeneratedAt time.Time        `json:"generated_at"`
	Source      string           `json:"source"`
	SourceStats SourceStats      `json:"source_stats"`
	DurationMS  int64            `json:"duration_ms"`
	Report      *insights.Report `json:"report"`
}
