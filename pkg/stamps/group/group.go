// Package group aggregates normalized stamps by decade and theme. It never
// re-derives decade or theme; both come from the normalizer.
package group

import (
	"sort"

	"github.com/mnav0/major-studio-1/pkg/stamps/stamp"
)

// Entry is the aggregate for one (decade, theme) pair.
type Entry struct {
	Count  int
	Stamps []stamp.Stamp

	seq int // first-seen position of the pair in the input
}

// Grouped maps decade → theme → Entry. A decade without stamps has no key.
type Grouped map[int]map[string]*Entry

// ThemeGroup is one flattened (decade, theme) row.
type ThemeGroup struct {
	Decade int           `json:"decade"`
	Theme  string        `json:"theme"`
	Bucket string        `json:"bucket,omitempty"`
	Count  int           `json:"count"`
	Stamps []stamp.Stamp `json:"stamps"`
}

// BucketResolver maps a canonical theme to its broad category.
type BucketResolver interface {
	BucketFor(theme string) string
}

// GroupByDecadeAndTheme builds the nested aggregate in one pass. Stamps
// inside each entry keep input order.
func GroupByDecadeAndTheme(stamps []stamp.Stamp) Grouped {
	g := make(Grouped)
	seq := 0
	for _, s := range stamps {
		themes, ok := g[s.Decade]
		if !ok {
			themes = make(map[string]*Entry)
			g[s.Decade] = themes
		}
		e, ok := themes[s.Theme]
		if !ok {
			e = &Entry{seq: seq}
			seq++
			themes[s.Theme] = e
		}
		e.Count++
		e.Stamps = append(e.Stamps, s)
	}
	return g
}

// Decades returns the decades present, ascending.
func Decades(g Grouped) []int {
	decades := make([]int, 0, len(g))
	for d := range g {
		decades = append(decades, d)
	}
	sort.Ints(decades)
	return decades
}

// Flatten emits one ThemeGroup per pair, ordered by ascending decade and
// then by first appearance of the theme. A nil resolver leaves Bucket empty.
func Flatten(g Grouped, buckets BucketResolver) []ThemeGroup {
	out := []ThemeGroup{}
	for _, decade := range Decades(g) {
		themes := g[decade]
		names := make([]string, 0, len(themes))
		for name := range themes {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			return themes[names[i]].seq < themes[names[j]].seq
		})

		for _, name := range names {
			e := themes[name]
			tg := ThemeGroup{
				Decade: decade,
				Theme:  name,
				Count:  e.Count,
				Stamps: e.Stamps,
			}
			if buckets != nil {
				tg.Bucket = buckets.BucketFor(name)
			}
			out = append(out, tg)
		}
	}
	return out
}

// SortByCount orders groups by count, largest first. Ties keep their
// current relative order.
func SortByCount(groups []ThemeGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})
}

// ForDecade returns the groups for one decade, preserving order.
func ForDecade(groups []ThemeGroup, decade int) []ThemeGroup {
	out := []ThemeGroup{}
	for _, g := range groups {
		if g.Decade == decade {
			out = append(out, g)
		}
	}
	return out
}

// Summarize groups, flattens and sorts stamps for a single decade.
func Summarize(stamps []stamp.Stamp, decade int, buckets BucketResolver) []ThemeGroup {
	groups := ForDecade(Flatten(GroupByDecadeAndTheme(stamps), buckets), decade)
	SortByCount(groups)
	return groups
}
