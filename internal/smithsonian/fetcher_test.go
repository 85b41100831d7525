package smithsonian

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnav0/major-studio-1/pkg/stamps/internalerr"
	"github.com/mnav0/major-studio-1/pkg/stamps/record"
)

// gatedSource blocks each call until its release channel is fed.
type gatedSource struct {
	calls   chan []string
	release chan []record.Record
}

func (g *gatedSource) SearchAll(ctx context.Context, queries []string) ([]record.Record, error) {
	g.calls <- queries
	select {
	case recs := <-g.release:
		return recs, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type staticSource struct {
	records []record.Record
	err     error
}

func (s staticSource) SearchAll(context.Context, []string) ([]record.Record, error) {
	return s.records, s.err
}

func TestFetcherReturnsRecords(t *testing.T) {
	f := NewFetcher(staticSource{records: []record.Record{{ID: "a"}}}, nil)

	_, ok := f.Latest()
	assert.False(t, ok)

	res, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Records, 1)

	latest, ok := f.Latest()
	require.True(t, ok)
	assert.Equal(t, res.Generation, latest)
}

func TestFetcherGenerationsIncrease(t *testing.T) {
	f := NewFetcher(staticSource{}, []string{"q"})
	first, err := f.Fetch(context.Background())
	require.NoError(t, err)
	second, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, second.Generation.Compare(first.Generation))
}

func TestFetcherDiscardsStaleResult(t *testing.T) {
	src := &gatedSource{calls: make(chan []string), release: make(chan []record.Record)}
	f := NewFetcher(src, []string{"q"})

	type outcome struct {
		res Result
		err error
	}
	older := make(chan outcome, 1)
	go func() {
		res, err := f.Fetch(context.Background())
		older <- outcome{res, err}
	}()
	<-src.calls // older fetch is in flight

	newer := make(chan outcome, 1)
	go func() {
		res, err := f.Fetch(context.Background())
		newer <- outcome{res, err}
	}()
	<-src.calls // newer fetch is in flight

	src.release <- []record.Record{{ID: "old"}}
	src.release <- []record.Record{{ID: "new"}}

	o1, o2 := <-older, <-newer
	// whichever call received which release, only the newer generation wins
	winner, loser := o2, o1
	require.Equal(t, 1, winner.res.Generation.Compare(loser.res.Generation))
	assert.True(t, errors.Is(loser.err, internalerr.ErrStale))
	require.NoError(t, winner.err)
	assert.Len(t, winner.res.Records, 1)

	latest, ok := f.Latest()
	require.True(t, ok)
	assert.Equal(t, winner.res.Generation, latest)
}

func TestFetcherPropagatesSourceError(t *testing.T) {
	boom := errors.New("boom")
	f := NewFetcher(staticSource{err: boom}, nil)
	_, err := f.Fetch(context.Background())
	assert.ErrorIs(t, err, boom)
	_, ok := f.Latest()
	assert.False(t, ok)
}
