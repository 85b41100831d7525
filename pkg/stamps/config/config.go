package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mnav0/major-studio-1/internal/smithsonian"
	"github.com/mnav0/major-studio-1/pkg/stamps/enrich"
	"github.com/mnav0/major-studio-1/pkg/stamps/filter"
	"github.com/mnav0/major-studio-1/pkg/stamps/internalerr"
	"github.com/mnav0/major-studio-1/pkg/stamps/normalize"
)

// DefaultAPIKeyEnv names the environment variable holding the API key.
const DefaultAPIKeyEnv = "SI_API_KEY"

// Config is the application configuration file.
type Config struct {
	API        API          `yaml:"api"`
	Store      Store        `yaml:"store"`
	Cache      Cache        `yaml:"cache"`
	Themes     Themes       `yaml:"themes"`
	Normalize  Normalize    `yaml:"normalize"`
	Filter     Filter       `yaml:"filter"`
	Enrichment enrich.Paths `yaml:"enrichment"`
}

// API configures the Smithsonian search client.
type API struct {
	BaseURL           string        `yaml:"base_url"`
	APIKeyEnv         string        `yaml:"api_key_env"`
	PageSize          int           `yaml:"page_size"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	Timeout           time.Duration `yaml:"timeout"`
	Searches          []string      `yaml:"searches"`
}

// Store locates the stamp database. An empty path keeps stamps in memory.
type Store struct {
	Path string `yaml:"path"`
}

// Cache locates the raw page cache. An empty path disables it.
type Cache struct {
	Path   string        `yaml:"path"`
	MaxAge time.Duration `yaml:"max_age"`
}

// Themes points at a dictionary file. An empty path uses the builtin one.
type Themes struct {
	Path string `yaml:"path"`
}

// Normalize mirrors normalize.Options.
type Normalize struct {
	RequireThumbnail   bool     `yaml:"require_thumbnail"`
	Cutoff             int      `yaml:"cutoff"`
	Topics             []string `yaml:"topics"`
	Places             []string `yaml:"places"`
	ExcludedTitleWords []string `yaml:"excluded_title_words"`
}

type Filter struct {
	ColorThreshold float64 `yaml:"color_threshold"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		API: API{
			BaseURL:           smithsonian.DefaultBaseURL,
			APIKeyEnv:         DefaultAPIKeyEnv,
			PageSize:          smithsonian.DefaultPageSize,
			RequestsPerSecond: 5,
			Burst:             5,
			Timeout:           30 * time.Second,
			Searches:          append([]string(nil), smithsonian.DefaultSearches...),
		},
		Normalize: Normalize{Cutoff: normalize.DefaultCutoff},
		Filter:    Filter{ColorThreshold: filter.DefaultColorThreshold},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file
// keep their default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid field, wrapped in internalerr.ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url is empty"))
	}
	if c.API.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("api.page_size must be positive, got %d", c.API.PageSize))
	}
	if c.API.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("api.requests_per_second must not be negative, got %v", c.API.RequestsPerSecond))
	}
	if c.API.RequestsPerSecond > 0 && c.API.Burst <= 0 {
		errs = append(errs, fmt.Errorf("api.burst must be positive when pacing, got %d", c.API.Burst))
	}
	if len(c.API.Searches) == 0 {
		errs = append(errs, errors.New("api.searches is empty"))
	}
	if c.Normalize.Cutoff <= 0 {
		errs = append(errs, fmt.Errorf("normalize.cutoff must be positive, got %d", c.Normalize.Cutoff))
	}
	if c.Filter.ColorThreshold <= 0 {
		errs = append(errs, fmt.Errorf("filter.color_threshold must be positive, got %v", c.Filter.ColorThreshold))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", internalerr.ErrInvalidConfig, errors.Join(errs...))
}
