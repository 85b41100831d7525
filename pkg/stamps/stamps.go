// Package stamps wires the pipeline together: fetch records, normalize
// them into themed stamps, attach enrichment, persist, and derive views.
package stamps

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mnav0/major-studio-1/internal/smithsonian"
	"github.com/mnav0/major-studio-1/pkg/stamps/config"
	"github.com/mnav0/major-studio-1/pkg/stamps/enrich"
	"github.com/mnav0/major-studio-1/pkg/stamps/filter"
	"github.com/mnav0/major-studio-1/pkg/stamps/group"
	"github.com/mnav0/major-studio-1/pkg/stamps/internalerr"
	"github.com/mnav0/major-studio-1/pkg/stamps/normalize"
	"github.com/mnav0/major-studio-1/pkg/stamps/record"
	"github.com/mnav0/major-studio-1/pkg/stamps/stamp"
	"github.com/mnav0/major-studio-1/pkg/stamps/state"
	"github.com/mnav0/major-studio-1/pkg/stamps/store"
)

// Collection is the stamp pipeline facade.
type Collection struct {
	fetcher    *smithsonian.Fetcher
	normalizer *normalize.Normalizer
	store      store.Store
	datasets   enrich.Datasets
	buckets    group.BucketResolver
	threshold  float64
	logger     *zap.Logger
}

// Options configures a Collection. Normalizer, Store and Buckets are
// required; a nil Source disables Refresh.
type Options struct {
	Source     smithsonian.Source
	Searches   []string
	Normalizer *normalize.Normalizer
	Store      store.Store
	Datasets   enrich.Datasets
	Buckets    group.BucketResolver
	// ColorThreshold seeds the color filter distance of new states.
	ColorThreshold float64
	Logger         *zap.Logger
}

// New creates a Collection.
func New(opts Options) (*Collection, error) {
	if opts.Normalizer == nil || opts.Store == nil || opts.Buckets == nil {
		return nil, fmt.Errorf("collection: %w: normalizer, store and buckets are required", internalerr.ErrInvalidConfig)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	c := &Collection{
		normalizer: opts.Normalizer,
		store:      opts.Store,
		datasets:   opts.Datasets,
		buckets:    opts.Buckets,
		threshold:  opts.ColorThreshold,
		logger:     opts.Logger,
	}
	if opts.Source != nil {
		c.fetcher = smithsonian.NewFetcher(opts.Source, opts.Searches)
	}
	return c, nil
}

// FromComponents builds a Collection from loaded configuration. The
// components stay owned by the caller; close them with comp.Close rather
// than Collection.Close.
func FromComponents(comp *config.Components, threshold float64, logger *zap.Logger) (*Collection, error) {
	opts := Options{
		Searches:       comp.Searches,
		Normalizer:     comp.Normalizer,
		Store:          comp.Store,
		Datasets:       comp.Datasets,
		Buckets:        comp.Dictionary,
		ColorThreshold: threshold,
		Logger:         logger,
	}
	if comp.Client != nil {
		opts.Source = comp.Client
	}
	return New(opts)
}

// Close closes the underlying store.
func (c *Collection) Close() error {
	return c.store.Close()
}

// RefreshResult summarizes one ingest.
type RefreshResult struct {
	Generation string
	FetchedAt  time.Time
	Stats      normalize.Stats
	// Stored counts stamps written after enrichment filtering.
	Stored int
}

// Refresh fetches every search, normalizes the records and replaces the
// stored stamps with the result. A result superseded by a newer Refresh
// returns internalerr.ErrStale and stores nothing.
func (c *Collection) Refresh(ctx context.Context) (RefreshResult, error) {
	if c.fetcher == nil {
		return RefreshResult{}, fmt.Errorf("refresh: %w: no record source configured", internalerr.ErrInvalidConfig)
	}
	res, err := c.fetcher.Fetch(ctx)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("fetch records: %w", err)
	}
	return c.ingest(ctx, res.Generation.String(), res.FetchedAt, res.Records)
}

// Import ingests records obtained elsewhere, such as a JSONL dump. Like
// Refresh it replaces the stored stamps.
func (c *Collection) Import(ctx context.Context, records []record.Record) (RefreshResult, error) {
	return c.ingest(ctx, "import", time.Now(), records)
}

func (c *Collection) ingest(ctx context.Context, generation string, at time.Time, records []record.Record) (RefreshResult, error) {
	normalized, stats := c.normalizer.NormalizeAll(records)
	enriched := enrich.Apply(normalized, c.datasets)

	keep := make([]stamp.Stamp, 0, len(enriched))
	for _, s := range enriched {
		if s.ID == "" {
			c.logger.Warn("dropping stamp without id", zap.String("title", s.Title))
			continue
		}
		keep = append(keep, s)
	}

	// The stored set mirrors the latest run. A run that saw no records
	// leaves the store untouched.
	if stats.Seen == 0 {
		c.logger.Warn("no records seen, keeping stored stamps", zap.String("generation", generation))
	} else if err := c.store.ReplaceStamps(ctx, keep); err != nil {
		return RefreshResult{}, fmt.Errorf("store stamps: %w", err)
	}
	run := store.FetchRun{Generation: generation, FetchedAt: at, Seen: stats.Seen, Included: len(keep)}
	if err := c.store.RecordFetch(ctx, run); err != nil {
		return RefreshResult{}, fmt.Errorf("record fetch: %w", err)
	}

	c.logger.Info("ingested stamps",
		zap.String("generation", generation),
		zap.Int("seen", stats.Seen),
		zap.Int("included", stats.Included),
		zap.Int("stored", len(keep)),
	)
	return RefreshResult{Generation: generation, FetchedAt: at, Stats: stats, Stored: len(keep)}, nil
}

// Stamps returns stored stamps matching q.
func (c *Collection) Stamps(ctx context.Context, q store.Query) ([]stamp.Stamp, error) {
	return c.store.Stamps(ctx, q)
}

// Stamp returns one stored stamp.
func (c *Collection) Stamp(ctx context.Context, id string) (stamp.Stamp, error) {
	return c.store.StampByID(ctx, id)
}

// Decades lists the decades with stored stamps.
func (c *Collection) Decades(ctx context.Context) ([]int, error) {
	return c.store.Decades(ctx)
}

// LastFetch returns the most recent ingest.
func (c *Collection) LastFetch(ctx context.Context) (store.FetchRun, bool, error) {
	return c.store.LastFetch(ctx)
}

// State loads every stored stamp into a fresh exploration state.
func (c *Collection) State(ctx context.Context) (state.State, error) {
	all, err := c.store.Stamps(ctx, store.Query{})
	if err != nil {
		return state.State{}, err
	}
	s := state.State{Selection: filter.Selection{Threshold: c.threshold}}
	return state.Update(s, state.LoadStamps{Stamps: all}), nil
}

// View derives the view for s.
func (c *Collection) View(s state.State) state.View {
	return state.Derive(s, c.buckets)
}

// Groups returns the count-sorted theme groups of one decade after
// applying sel.
func (c *Collection) Groups(ctx context.Context, decade int, sel filter.Selection) ([]group.ThemeGroup, error) {
	stamps, err := c.store.Stamps(ctx, store.Query{Decade: decade})
	if err != nil {
		return nil, err
	}
	if sel.Threshold == 0 {
		sel.Threshold = c.threshold
	}
	return group.Summarize(filter.Apply(stamps, sel), decade, c.buckets), nil
}
