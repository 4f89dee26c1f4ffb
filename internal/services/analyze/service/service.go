// Package service runs one analysis end to end: read rows from the source,
// hand them to the engine, wrap the report in its run envelope
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rabbithole/internal/core/history"
	"rabbithole/internal/core/insights"
	"rabbithole/internal/core/version"
	perr "rabbithole/internal/platform/errors"
	"rabbithole/internal/platform/logger"
	"rabbithole/internal/services/analyze/domain"
)

// Service implements domain.RunnerPort
type Service struct {
	// now stamps the envelope; tests pin it, production leaves it nil for UTC wall clock
	now func() time.Time
}

// New constructs the analyze service
func New() *Service { return &Service{} }

// WithClock pins the envelope clock; nil restores the wall clock
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Run reads every row from the source and produces the enveloped report.
// The engine itself cannot partially fail: once rows are in hand the only
// errors left are option problems, so a run either yields a report or
// nothing at all
func (s *Service) Run(ctx context.Context, in domain.RunInput) (*domain.RunOutput, error) {
	if in.Source == nil {
		return nil, perr.InvalidArgf("analyze: nil row source")
	}

	runID := uuid.NewString()
	source := in.Source.Describe()
	ctx = logger.WithRun(ctx, runID, source)
	log := logger.C(ctx)

	began := s.clock()
	log.Info().Str("depth", string(in.Options.Depth)).Msg("analysis run starting")

	readStart := s.clock()
	rows, epoch, stats, err := in.Source.Rows(ctx)
	if err != nil {
		log.Error().Err(err).Msg("row source failed")
		return nil, perr.WithOp(err, "analyze.read")
	}
	log.Debug().
		Int("rows", stats.Rows).
		Int("malformed", stats.Malformed).
		Dur("took", s.clock().Sub(readStart)).
		Msg("rows read")

	opts := in.Options
	// the source knows its own timestamp encoding; an explicit caller hint wins
	if opts.Epoch == "" || opts.Epoch == history.EpochAuto {
		opts.Epoch = epoch
	}

	analyzeStart := s.clock()
	report, err := insights.Analyze(rows, opts)
	if err != nil {
		log.Error().Err(err).Msg("analysis failed")
		return nil, perr.WithOp(err, "analyze.run")
	}
	// rows the source had to skip count as degraded alongside the ones the
	// normalizer patched up
	report.DegradedRowCount += stats.Malformed

	finished := s.clock()
	log.Info().
		Int("entries", report.EntriesAnalyzed).
		Int("degraded", report.DegradedRowCount).
		Int("unique_domains", report.UniqueDomains).
		Dur("read", analyzeStart.Sub(readStart)).
		Dur("analyze", finished.Sub(analyzeStart)).
		Msg("analysis run complete")

	return &domain.RunOutput{
		RunID:       runID,
		Engine:      version.Info().String(),
		GeneratedAt: finished,
		Source:      source,
		SourceStats: stats,
		DurationMS:  finished.Sub(began).Milliseconds(),
		Report:      report,
	}, nil
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}
