package domain

import (
	"context"

	"rabbithole/internal/core/history"
)

// RowSource supplies the raw rows for one analysis run. Implementations read
// files, snapshots, or memory; the service never touches I/O itself
type RowSource interface {
	// Describe names the source for the run envelope and log fields
	Describe() string

	// Rows reads every raw row, the epoch its numeric timestamps use
	// (EpochAuto when the source cannot say), and per-source accounting
	Rows(ctx context.Context) ([]history.RawRow, history.Epoch, SourceStats, error)
}

// RunnerPort is the public port of the analyze service
type RunnerPort interface {
	Run(ctx context.Context, in RunInput) (*RunOutput, error)
}
