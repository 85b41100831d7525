package config

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mnav0/major-studio-1/internal/smithsonian"
	"github.com/mnav0/major-studio-1/pkg/stamps/enrich"
	"github.com/mnav0/major-studio-1/pkg/stamps/normalize"
	"github.com/mnav0/major-studio-1/pkg/stamps/store"
	"github.com/mnav0/major-studio-1/pkg/stamps/store/memstore"
	"github.com/mnav0/major-studio-1/pkg/stamps/store/sqlite"
	"github.com/mnav0/major-studio-1/pkg/stamps/themes"
)

// Loader turns a Config into ready-to-use components.
type Loader struct {
	Config Config
	Logger *zap.Logger
	// Getenv resolves the API key; nil uses os.Getenv.
	Getenv func(string) string
}

// Components holds everything built from the configuration.
type Components struct {
	Dictionary *themes.Dictionary
	Extractor  *themes.Extractor
	Normalizer *normalize.Normalizer
	Client     *smithsonian.Client
	Searches   []string
	Store      store.Store
	Datasets   enrich.Datasets
	// Cache is nil when no cache path is configured.
	Cache *smithsonian.BoltCache
}

// Close releases the store and the page cache.
func (c *Components) Close() error {
	var errs []error
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	return errors.Join(errs...)
}

// Load builds all components. On error, anything already opened is closed.
func (l *Loader) Load(ctx context.Context) (_ *Components, err error) {
	cfg := l.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	comp := &Components{Searches: cfg.API.Searches}
	defer func() {
		if err != nil {
			comp.Close()
		}
	}()

	// Dictionary
	comp.Dictionary = themes.Builtin()
	if cfg.Themes.Path != "" {
		comp.Dictionary, err = themes.LoadDictionary(cfg.Themes.Path)
		if err != nil {
			return nil, fmt.Errorf("load themes: %w", err)
		}
	}
	comp.Extractor, err = themes.NewExtractor(comp.Dictionary)
	if err != nil {
		return nil, fmt.Errorf("build extractor: %w", err)
	}

	comp.Normalizer, err = normalize.New(normalize.Options{
		Extractor:          comp.Extractor,
		Topics:             cfg.Normalize.Topics,
		Places:             cfg.Normalize.Places,
		ExcludedTitleWords: cfg.Normalize.ExcludedTitleWords,
		Cutoff:             cfg.Normalize.Cutoff,
		RequireThumbnail:   cfg.Normalize.RequireThumbnail,
		Logger:             logger.Named("normalize"),
	})
	if err != nil {
		return nil, err
	}

	// Page cache
	if cfg.Cache.Path != "" {
		comp.Cache, err = smithsonian.OpenBoltCache(cfg.Cache.Path, cfg.Cache.MaxAge)
		if err != nil {
			return nil, fmt.Errorf("open page cache: %w", err)
		}
	}
	comp.Client = l.client(cfg.API, comp.Cache, logger)

	// Store
	if cfg.Store.Path != "" {
		comp.Store, err = sqlite.OpenSQLite(ctx, cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
	} else {
		comp.Store = memstore.New()
	}

	comp.Datasets, err = enrich.Load(cfg.Enrichment, logger.Named("enrich"))
	if err != nil {
		return nil, fmt.Errorf("load enrichment: %w", err)
	}
	return comp, nil
}

func (l *Loader) client(api API, cache *smithsonian.BoltCache, logger *zap.Logger) *smithsonian.Client {
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	c := &smithsonian.Client{
		BaseURL:    api.BaseURL,
		APIKey:     getenv(api.APIKeyEnv),
		PageSize:   api.PageSize,
		HTTPClient: &http.Client{Timeout: api.Timeout},
		Logger:     logger.Named("smithsonian"),
	}
	if api.RequestsPerSecond > 0 {
		c.Limiter = rate.NewLimiter(rate.Limit(api.RequestsPerSecond), api.Burst)
	}
	// Cache stays a nil interface when caching is off.
	if cache != nil {
		c.Cache = cache
	}
	return c
}
