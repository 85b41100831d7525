package themes

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/mnav0/major-studio-1/pkg/stamps/internalerr"
)

// OtherBucket is the category for themes not listed in any bucket.
const OtherBucket = "Other"

// Dictionary is the static theme configuration:
//   - Normalization maps keyword variants to a canonical theme
//   - Priority orders canonical themes for tie-breaking (earlier wins)
//   - Buckets groups canonical themes into broad historical categories
//
// All lookups are case-insensitive.
type Dictionary struct {
	Normalization map[string]string   `yaml:"normalization"`
	Priority      []string            `yaml:"priority"`
	Buckets       map[string][]string `yaml:"buckets"`
	BucketOrder   []string            `yaml:"bucket_order"`
}

// LoadDictionary loads a theme dictionary from a YAML file.
//
// Expected format:
//
//	normalization:
//	  washington: George Washington
//	priority: [George Washington, Benjamin Franklin]
//	buckets:
//	  Founding Figures: [George Washington, Benjamin Franklin]
//	bucket_order: [Founding Figures]
func LoadDictionary(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDictionary(data)
}

// ParseDictionary decodes a YAML theme dictionary.
func ParseDictionary(data []byte) (*Dictionary, error) {
	var d Dictionary
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse theme dictionary: %w", err)
	}
	if d.Normalization == nil {
		d.Normalization = make(map[string]string)
	}
	if d.Buckets == nil {
		d.Buckets = make(map[string][]string)
	}
	return &d, nil
}

// Validate checks the dictionary for structural mistakes. A canonical theme
// may belong to at most one bucket, priority entries must be unique, no
// keyword or theme may be blank, and variants that differ only in case or
// punctuation must map to the same theme.
func (d *Dictionary) Validate() error {
	targets := make(map[string]string, len(d.Normalization))
	for _, variant := range d.variants() {
		canonical := d.Normalization[variant]
		key := fold(variant)
		if key == "" || fold(canonical) == "" {
			return fmt.Errorf("%w: blank normalization entry %q -> %q", internalerr.ErrInvalidConfig, variant, canonical)
		}
		if prev, ok := targets[key]; ok && fold(prev) != fold(canonical) {
			return fmt.Errorf("%w: keyword %q maps to both %q and %q", internalerr.ErrInvalidConfig, variant, prev, canonical)
		}
		targets[key] = canonical
	}

	seen := make(map[string]struct{}, len(d.Priority))
	for _, theme := range d.Priority {
		key := fold(theme)
		if key == "" {
			return fmt.Errorf("%w: blank priority entry", internalerr.ErrInvalidConfig)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate priority entry %q", internalerr.ErrInvalidConfig, theme)
		}
		seen[key] = struct{}{}
	}

	owner := make(map[string]string)
	for _, bucket := range d.BucketNames() {
		for _, theme := range d.Buckets[bucket] {
			key := fold(theme)
			if key == "" {
				return fmt.Errorf("%w: blank theme in bucket %q", internalerr.ErrInvalidConfig, bucket)
			}
			if prev, ok := owner[key]; ok && prev != bucket {
				return fmt.Errorf("%w: theme %q listed in buckets %q and %q", internalerr.ErrInvalidConfig, theme, prev, bucket)
			}
			owner[key] = bucket
		}
	}

	for _, bucket := range d.BucketOrder {
		if _, ok := d.Buckets[bucket]; !ok {
			return fmt.Errorf("%w: bucket_order names unknown bucket %q", internalerr.ErrInvalidConfig, bucket)
		}
	}
	return nil
}

// BucketFor returns the bucket a canonical theme belongs to, or OtherBucket.
func (d *Dictionary) BucketFor(theme string) string {
	key := fold(theme)
	for _, bucket := range d.BucketNames() {
		for _, t := range d.Buckets[bucket] {
			if fold(t) == key {
				return bucket
			}
		}
	}
	return OtherBucket
}

// BucketNames returns buckets in BucketOrder first, then any remaining
// buckets alphabetically.
func (d *Dictionary) BucketNames() []string {
	names := make([]string, 0, len(d.Buckets))
	listed := make(map[string]struct{}, len(d.BucketOrder))
	for _, b := range d.BucketOrder {
		if _, ok := d.Buckets[b]; !ok {
			continue
		}
		if _, dup := listed[b]; dup {
			continue
		}
		listed[b] = struct{}{}
		names = append(names, b)
	}

	var rest []string
	for b := range d.Buckets {
		if _, ok := listed[b]; !ok {
			rest = append(rest, b)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// Keywords returns the match vocabulary: normalization keys, normalization
// values and the priority list, deduplicated case-insensitively.
func (d *Dictionary) Keywords() []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(kw string) {
		key := fold(kw)
		if key == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, kw)
	}

	variants := d.variants()
	for _, k := range variants {
		add(k)
	}
	for _, k := range variants {
		add(d.Normalization[k])
	}
	for _, p := range d.Priority {
		add(p)
	}
	return out
}

// variants returns the normalization keys sorted.
func (d *Dictionary) variants() []string {
	out := make([]string, 0, len(d.Normalization))
	for k := range d.Normalization {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
