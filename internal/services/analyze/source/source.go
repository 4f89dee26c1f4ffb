// Package source adapts the export and snapshot readers to the analyze
// service's RowSource port
package source

import (
	"context"
	"time"

	"rabbithole/internal/adapters/source/export"
	"rabbithole/internal/adapters/source/snapshot"
	"rabbithole/internal/core/history"
	"rabbithole/internal/services/analyze/domain"
)

// Export reads a JSON array or NDJSON export at path; "-" means stdin
func Export(path string, opts export.Options) domain.RowSource {
	return exportSource{path: path, opts: opts}
}

type exportSource struct {
	path string
	opts export.Options
}

func (s exportSource) Describe() string { return "export:" + s.path }

func (s exportSource) Rows(ctx context.Context) ([]history.RawRow, history.Epoch, domain.SourceStats, error) {
	rd, err := export.Open(s.path, s.opts)
	if err != nil {
		return nil, "", domain.SourceStats{}, err
	}
	defer func() { _ = rd.Close() }()

	rows, st, err := rd.ReadAll(ctx)
	stats := domain.SourceStats{Rows: st.Rows, Malformed: st.Malformed}
	// exports carry whatever the exporter wrote; let normalization sniff
	return rows, history.EpochAuto, stats, err
}

// Snapshot reads a browser history SQLite file. BrowserAuto probes the
// schema; since bounds rows to visits after it (zero keeps everything);
// limit keeps the most recent rows (zero keeps everything)
func Snapshot(path string, browser snapshot.Browser, since time.Time, limit int) domain.RowSource {
	return snapshotSource{path: path, browser: browser, since: since, limit: limit}
}

type snapshotSource struct {
	path    string
	browser snapshot.Browser
	since   time.Time
	limit   int
}

func (s snapshotSource) Describe() string {
	b := s.browser
	if b == "" {
		b = snapshot.BrowserAuto
	}
	return "snapshot:" + string(b) + ":" + s.path
}

func (s snapshotSource) Rows(ctx context.Context) ([]history.RawRow, history.Epoch, domain.SourceStats, error) {
	rows, epoch, err := snapshot.Read(ctx, s.path, s.browser, s.since, s.limit)
	return rows, epoch, domain.SourceStats{Rows: len(rows)}, err
}

// Static wraps rows already in memory, for embedding callers and tests
func Static(name string, epoch history.Epoch, rows []history.RawRow) domain.RowSource {
	return staticSource{name: name, epoch: epoch, rows: rows}
}

type staticSource struct {
	name  string
	epoch history.Epoch
	rows  []history.RawRow
}

func (s staticSource) Describe() string {
	if s.name == "" {
		return "static"
	}
	return "static:" + s.name
}

func (s staticSource) Rows(context.Context) ([]history.RawRow, history.Epoch, domain.SourceStats, error) {
	epoch := s.epoch
	if epoch == "" {
		epoch = history.EpochAuto
	}
	return s.rows, epoch, domain.SourceStats{Rows: len(s.rows)}, nil
}
