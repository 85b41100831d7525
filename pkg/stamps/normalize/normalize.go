// Package normalize turns raw museum search rows into Stamps. Content
// problems never fail: a record either becomes a Stamp or is dropped with
// a Reason.
package normalize

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mnav0/major-studio-1/pkg/stamps/internalerr"
	"github.com/mnav0/major-studio-1/pkg/stamps/record"
	"github.com/mnav0/major-studio-1/pkg/stamps/stamp"
	"github.com/mnav0/major-studio-1/pkg/stamps/themes"
)

// ThemeExtractor resolves a title to a canonical theme.
type ThemeExtractor interface {
	ExtractTheme(text string) (string, bool)
}

// Defaults for Options fields left empty.
var (
	DefaultTopics = []string{
		"U.S. Stamps",
		"Ernest K. Ackerman Collection of U.S. Proofs",
		"'American Expansion (1800-1860)'",
	}
	DefaultPlaces             = []string{"united states", "u.s.", "confederate states of america", "us"}
	DefaultExcludedTitleWords = []string{"cover", "envelope"}
)

const (
	// DefaultCutoff is the first decade that is no longer kept.
	DefaultCutoff = 1900
	// OverrideDecade is the last decade whose theme is assigned manually.
	OverrideDecade = 1800
)

// Options configures a Normalizer.
type Options struct {
	Extractor          ThemeExtractor
	Topics             []string
	Places             []string
	ExcludedTitleWords []string
	Cutoff             int
	RequireThumbnail   bool
	Logger             *zap.Logger
}

// Normalizer applies the inclusion rules to raw records.
type Normalizer struct {
	extractor    ThemeExtractor
	topics       map[string]struct{}
	places       []string
	excluded     []string
	cutoff       int
	requireImage bool
	logger       *zap.Logger
}

// New builds a Normalizer. An Extractor is required.
func New(opts Options) (*Normalizer, error) {
	if opts.Extractor == nil {
		return nil, fmt.Errorf("normalizer: %w: theme extractor is required", internalerr.ErrInvalidConfig)
	}
	if opts.Topics == nil {
		opts.Topics = DefaultTopics
	}
	if opts.Places == nil {
		opts.Places = DefaultPlaces
	}
	if opts.ExcludedTitleWords == nil {
		opts.ExcludedTitleWords = DefaultExcludedTitleWords
	}
	if opts.Cutoff == 0 {
		opts.Cutoff = DefaultCutoff
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	n := &Normalizer{
		extractor:    opts.Extractor,
		topics:       make(map[string]struct{}, len(opts.Topics)),
		cutoff:       opts.Cutoff,
		requireImage: opts.RequireThumbnail,
		logger:       opts.Logger,
	}
	for _, t := range opts.Topics {
		n.topics[strings.TrimSpace(t)] = struct{}{}
	}
	for _, p := range opts.Places {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			n.places = append(n.places, p)
		}
	}
	for _, w := range opts.ExcludedTitleWords {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			n.excluded = append(n.excluded, w)
		}
	}
	return n, nil
}

// Normalize converts one record. The returned Stamp is only meaningful
// when the Reason is Included.
func (n *Normalizer) Normalize(r record.Record) (stamp.Stamp, Reason) {
	year, ok := Year(r)
	if !ok {
		return stamp.Stamp{}, ExcludedNoYear
	}
	decade := Decade(year)

	if !n.american(r) {
		return stamp.Stamp{}, ExcludedNationality
	}
	if n.excludedTitle(r.Title) {
		return stamp.Stamp{}, ExcludedKeyword
	}
	if decade >= n.cutoff {
		return stamp.Stamp{}, ExcludedCutoff
	}

	theme, ok := n.theme(decade, r.Title)
	if !ok {
		return stamp.Stamp{}, ExcludedNoTheme
	}

	items := media(r)
	thumbnail := ""
	if len(items) > 0 {
		thumbnail = items[0].Thumbnail
	}
	if n.requireImage && thumbnail == "" {
		return stamp.Stamp{}, ExcludedNoThumbnail
	}

	s := stamp.Stamp{
		ID:          r.ID,
		Title:       r.Title,
		Description: description(r),
		Notes:       notes(r),
		Decade:      decade,
		Theme:       theme,
		Materials:   materials(r),
		Thumbnail:   thumbnail,
		Media:       items,
	}
	if len(items) > 0 {
		s.AspectRatio = Classify(items[0].Width, items[0].Height, decade)
	} else if decade == 1780 {
		s.AspectRatio = stamp.AspectHorizontal
	}
	return s, Included
}

// Stats summarizes a NormalizeAll run.
type Stats struct {
	Seen     int
	Included int
	Excluded map[Reason]int
}

// NormalizeAll converts records in order. The first record wins when ids
// repeat across searches.
func (n *Normalizer) NormalizeAll(records []record.Record) ([]stamp.Stamp, Stats) {
	stats := Stats{Excluded: make(map[Reason]int)}
	seen := make(map[string]struct{}, len(records))
	out := []stamp.Stamp{}

	for _, r := range records {
		stats.Seen++
		if r.ID != "" {
			if _, dup := seen[r.ID]; dup {
				stats.Excluded[ExcludedDuplicate]++
				continue
			}
			seen[r.ID] = struct{}{}
		}

		s, reason := n.Normalize(r)
		if reason.Excluded() {
			stats.Excluded[reason]++
			n.logger.Debug("record excluded", zap.String("id", r.ID), zap.Stringer("reason", reason))
			continue
		}
		stats.Included++
		out = append(out, s)
	}

	fields := []zap.Field{zap.Int("seen", stats.Seen), zap.Int("included", stats.Included)}
	for reason, count := range stats.Excluded {
		fields = append(fields, zap.Int(reason.String(), count))
	}
	n.logger.Info("normalized records", fields...)
	return out, stats
}

func (n *Normalizer) american(r record.Record) bool {
	for _, t := range r.Content.IndexedStructured.Topic {
		if _, ok := n.topics[strings.TrimSpace(t)]; ok {
			return true
		}
	}
	place := strings.ToLower(r.FirstPlace())
	if place == "" {
		return false
	}
	for _, p := range n.places {
		if strings.Contains(place, p) {
			return true
		}
	}
	return false
}

func (n *Normalizer) excludedTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, w := range n.excluded {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func (n *Normalizer) theme(decade int, title string) (string, bool) {
	if decade <= OverrideDecade {
		switch decade {
		case 1760:
			return themes.ThemeBritishCrown, true
		case 1780:
			return themes.ThemeManualPostmark, true
		default:
			return themes.ThemeEmbossedPostmark, true
		}
	}
	return n.extractor.ExtractTheme(title)
}

// descriptionIndex picks the note labelled "Description", else the first.
func descriptionIndex(notes []record.Labelled) int {
	for i, n := range notes {
		if strings.EqualFold(strings.TrimSpace(n.Label), "Description") {
			return i
		}
	}
	if len(notes) > 0 {
		return 0
	}
	return -1
}

func description(r record.Record) string {
	notes := r.Content.Freetext.Notes
	if i := descriptionIndex(notes); i >= 0 {
		return PlainText(notes[i].Content)
	}
	return ""
}

func notes(r record.Record) string {
	all := r.Content.Freetext.Notes
	skip := descriptionIndex(all)
	var parts []string
	for i, n := range all {
		if i == skip {
			continue
		}
		if text := PlainText(n.Content); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

func materials(r record.Record) []string {
	medium, _ := record.Find(r.Content.Freetext.PhysicalDescription, "Medium")
	return Materials(medium)
}
