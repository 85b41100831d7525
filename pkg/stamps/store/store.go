// Package store persists normalized stamps between a fetch and the
// commands that read them.
package store

import (
	"context"
	"time"

	"github.com/mnav0/major-studio-1/pkg/stamps/stamp"
)

// Store is the persistence interface for normalized stamps.
type Store interface {
	Close() error

	// UpsertStamps inserts or replaces stamps keyed by ID. New stamps are
	// appended to the stored order; replaced stamps keep their position.
	UpsertStamps(ctx context.Context, stamps []stamp.Stamp) error
	// ReplaceStamps upserts stamps like UpsertStamps and removes every
	// stored stamp whose ID is not in the batch, atomically.
	ReplaceStamps(ctx context.Context, stamps []stamp.Stamp) error
	// Stamps returns stored stamps in stored order.
	Stamps(ctx context.Context, q Query) ([]stamp.Stamp, error)
	// StampByID returns internalerr.ErrNotFound for unknown ids.
	StampByID(ctx context.Context, id string) (stamp.Stamp, error)
	Count(ctx context.Context) (int, error)
	Decades(ctx context.Context) ([]int, error)

	RecordFetch(ctx context.Context, run FetchRun) error
	// LastFetch reports false when no fetch has been recorded.
	LastFetch(ctx context.Context) (FetchRun, bool, error)
}

// Query narrows Stamps. Zero values match everything.
type Query struct {
	Decade int
	Theme  string
	Limit  int
}

// Matches reports whether s satisfies the decade and theme constraints.
func (q Query) Matches(s stamp.Stamp) bool {
	if q.Decade != 0 && s.Decade != q.Decade {
		return false
	}
	if q.Theme != "" && s.Theme != q.Theme {
		return false
	}
	return true
}

// FetchRun records one completed fetch.
type FetchRun struct {
	Generation string
	FetchedAt  time.Time
	Seen       int
	Included   int
}
