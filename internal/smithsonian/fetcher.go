package smithsonian

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mnav0/major-studio-1/pkg/stamps/internalerr"
	"github.com/mnav0/major-studio-1/pkg/stamps/record"
)

// Source runs a batch of searches.
type Source interface {
	SearchAll(ctx context.Context, queries []string) ([]record.Record, error)
}

// Result is the output of one fetch.
type Result struct {
	Generation ulid.ULID
	FetchedAt  time.Time
	Records    []record.Record
}

// Fetcher stamps each fetch with a monotonically increasing generation.
// When a fetch is started while another is in flight, the older one's
// result is discarded with internalerr.ErrStale.
type Fetcher struct {
	src     Source
	queries []string
	now     func() time.Time

	mu       sync.Mutex
	entropy  *ulid.MonotonicEntropy
	started  ulid.ULID
	finished ulid.ULID
}

// NewFetcher runs queries against src; nil queries use DefaultSearches.
func NewFetcher(src Source, queries []string) *Fetcher {
	if queries == nil {
		queries = DefaultSearches
	}
	return &Fetcher{
		src:     src,
		queries: append([]string(nil), queries...),
		now:     time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Fetch runs the searches. It returns internalerr.ErrStale when a newer
// fetch began before this one finished.
func (f *Fetcher) Fetch(ctx context.Context) (Result, error) {
	gen := f.begin()

	records, err := f.src.SearchAll(ctx, f.queries)
	if err != nil {
		return Result{Generation: gen}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen.Compare(f.started) < 0 {
		return Result{Generation: gen}, internalerr.ErrStale
	}
	f.finished = gen
	return Result{Generation: gen, FetchedAt: f.now(), Records: records}, nil
}

func (f *Fetcher) begin() ulid.ULID {
	f.mu.Lock()
	defer f.mu.Unlock()
	gen := ulid.MustNew(ulid.Timestamp(f.now()), f.entropy)
	f.started = gen
	return gen
}

// Latest returns the generation of the last fetch that completed without
// being superseded, and false before any has.
func (f *Fetcher) Latest() (ulid.ULID, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var zero ulid.ULID
	return f.finished, f.finished != zero
}
