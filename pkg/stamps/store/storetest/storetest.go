// Package storetest holds behaviour checks shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnav0/major-studio-1/pkg/stamps/color"
	"github.com/mnav0/major-studio-1/pkg/stamps/internalerr"
	"github.com/mnav0/major-studio-1/pkg/stamps/stamp"
	"github.com/mnav0/major-studio-1/pkg/stamps/store"
)

// Factory returns a fresh, empty store.
type Factory func(t *testing.T) store.Store

// Run exercises the store.Store contract against stores built by open.
func Run(t *testing.T, open Factory) {
	t.Run("UpsertAndGet", func(t *testing.T) { upsertAndGet(t, open(t)) })
	t.Run("ReplaceKeepsPosition", func(t *testing.T) { replaceKeepsPosition(t, open(t)) })
	t.Run("ReplaceDropsAbsent", func(t *testing.T) { replaceDropsAbsent(t, open(t)) })
	t.Run("ReplaceWithEmpty", func(t *testing.T) { replaceWithEmpty(t, open(t)) })
	t.Run("Query", func(t *testing.T) { query(t, open(t)) })
	t.Run("NotFound", func(t *testing.T) { notFound(t, open(t)) })
	t.Run("EmptyID", func(t *testing.T) { emptyID(t, open(t)) })
	t.Run("FetchRuns", func(t *testing.T) { fetchRuns(t, open(t)) })
}

// Sample returns a fully populated stamp.
func Sample(id string, decade int, theme string) stamp.Stamp {
	return stamp.Stamp{
		ID:          id,
		Title:       "Benjamin Franklin " + id,
		Description: "Engraved portrait",
		Notes:       "Issued 1847",
		Decade:      decade,
		Theme:       theme,
		Materials:   []string{"ink", "paper"},
		Thumbnail:   "https://ids.si.edu/" + id,
		Media:       []stamp.Media{{Thumbnail: "https://ids.si.edu/" + id, Width: 300, Height: 400}},
		AspectRatio: stamp.AspectTall,
		Embedding:   []float64{0.25, -1.5},
		Detected:    []stamp.Region{{Label: "portrait", Score: 0.9, Box: [4]float64{0.1, 0.1, 0.9, 0.9}}},
		Colors: []color.Swatch{{
			Hex:        "#ff0000",
			RGB:        color.RGB{255, 0, 0},
			HSL:        [3]float64{0, 1, 0.5},
			Population: 42,
		}},
	}
}

func upsertAndGet(t *testing.T, s store.Store) {
	ctx := context.Background()
	defer s.Close()

	want := Sample("a", 1840, "Benjamin Franklin")
	require.NoError(t, s.UpsertStamps(ctx, []stamp.Stamp{want}))

	got, err := s.StampByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// mutating the caller's copy must not leak into the store
	want.Materials[0] = "changed"
	got, err = s.StampByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "ink", got.Materials[0])
}

func replaceKeepsPosition(t *testing.T, s store.Store) {
	ctx := context.Background()
	defer s.Close()

	require.NoError(t, s.UpsertStamps(ctx, []stamp.Stamp{
		Sample("a", 1840, "x"),
		Sample("b", 1850, "y"),
	}))
	updated := Sample("a", 1860, "z")
	updated.Materials = []string{"silk"}
	require.NoError(t, s.UpsertStamps(ctx, []stamp.Stamp{updated, Sample("c", 1870, "w")}))

	all, err := s.Stamps(ctx, store.Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, 1860, all[0].Decade)
	assert.Equal(t, []string{"silk"}, all[0].Materials)
}

func replaceDropsAbsent(t *testing.T, s store.Store) {
	ctx := context.Background()
	defer s.Close()

	require.NoError(t, s.UpsertStamps(ctx, []stamp.Stamp{
		Sample("a", 1840, "x"),
		Sample("b", 1840, "y"),
		Sample("c", 1850, "z"),
	}))
	updated := Sample("c", 1860, "z")
	updated.Materials = []string{"silk"}
	require.NoError(t, s.ReplaceStamps(ctx, []stamp.Stamp{updated, Sample("d", 1870, "w"), Sample("a", 1840, "x")}))

	all, err := s.Stamps(ctx, store.Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "d"}, ids(all))
	assert.Equal(t, []string{"silk"}, all[1].Materials)

	_, err = s.StampByID(ctx, "b")
	assert.ErrorIs(t, err, internalerr.ErrNotFound)

	decades, err := s.Decades(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1840, 1860, 1870}, decades)

	// a batch with an empty id changes nothing
	err = s.ReplaceStamps(ctx, []stamp.Stamp{Sample("e", 1880, "v"), Sample("", 1880, "v")})
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func replaceWithEmpty(t *testing.T, s store.Store) {
	ctx := context.Background()
	defer s.Close()

	require.NoError(t, s.UpsertStamps(ctx, []stamp.Stamp{Sample("a", 1840, "x")}))
	require.NoError(t, s.ReplaceStamps(ctx, nil))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func query(t *testing.T, s store.Store) {
	ctx := context.Background()
	defer s.Close()

	require.NoError(t, s.UpsertStamps(ctx, []stamp.Stamp{
		Sample("a", 1840, "Benjamin Franklin"),
		Sample("b", 1840, "George Washington"),
		Sample("c", 1860, "Benjamin Franklin"),
		Sample("d", 1840, "Benjamin Franklin"),
	}))

	got, err := s.Stamps(ctx, store.Query{Decade: 1840})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "d"}, ids(got))

	got, err = s.Stamps(ctx, store.Query{Decade: 1840, Theme: "Benjamin Franklin"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "d"}, ids(got))

	got, err = s.Stamps(ctx, store.Query{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(got))

	got, err = s.Stamps(ctx, store.Query{Decade: 1990})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	decades, err := s.Decades(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1840, 1860}, decades)
}

func notFound(t *testing.T, s store.Store) {
	defer s.Close()
	_, err := s.StampByID(context.Background(), "missing")
	assert.ErrorIs(t, err, internalerr.ErrNotFound)

	decades, err := s.Decades(context.Background())
	require.NoError(t, err)
	assert.Empty(t, decades)
}

func emptyID(t *testing.T, s store.Store) {
	defer s.Close()
	err := s.UpsertStamps(context.Background(), []stamp.Stamp{Sample("", 1840, "x")})
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func fetchRuns(t *testing.T, s store.Store) {
	ctx := context.Background()
	defer s.Close()

	_, ok, err := s.LastFetch(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, s.RecordFetch(ctx, store.FetchRun{Generation: "g1", FetchedAt: at, Seen: 10, Included: 4}))
	require.NoError(t, s.RecordFetch(ctx, store.FetchRun{Generation: "g2", FetchedAt: at.Add(time.Hour), Seen: 12, Included: 5}))

	run, ok, err := s.LastFetch(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "g2", run.Generation)
	assert.True(t, run.FetchedAt.Equal(at.Add(time.Hour)))
	assert.Equal(t, 12, run.Seen)
	assert.Equal(t, 5, run.Included)
}

func ids(stamps []stamp.Stamp) []string {
	out := make([]string, len(stamps))
	for i, s := range stamps {
		out[i] = s.ID
	}
	return out
}
