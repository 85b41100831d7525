package state

import (
	"strings"

	"github.com/mnav0/major-studio-1/pkg/stamps/color"
	"github.com/mnav0/major-studio-1/pkg/stamps/featured"
	"github.com/mnav0/major-studio-1/pkg/stamps/filter"
	"github.com/mnav0/major-studio-1/pkg/stamps/group"
	"github.com/mnav0/major-studio-1/pkg/stamps/history"
	"github.com/mnav0/major-studio-1/pkg/stamps/stamp"
)

const (
	// MaxChoices caps the material and color filter choices on offer.
	MaxChoices = 5
	// HeadingBuckets is the number of buckets named in the decade heading.
	HeadingBuckets = 2
)

// Choice is a material filter on offer.
type Choice struct {
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

// ColorChoice is a color filter on offer.
type ColorChoice struct {
	color.Swatch
	Selected bool `json:"selected"`
}

// View is everything derived from a State for one render.
type View struct {
	Decade int `json:"decade"`
	// Decades lists the decades that still have stamps after filtering.
	Decades    []int              `json:"decades"`
	Matching   int                `json:"matching"`
	Groups     []group.ThemeGroup `json:"groups"`
	TopBuckets []string           `json:"topBuckets"`
	Materials  []Choice           `json:"materials"`
	Colors     []ColorChoice      `json:"colors"`
	Words      []history.Word     `json:"words"`
	Context    history.Context    `json:"context"`
	// Featured is nil when nothing in the decade can be featured.
	Featured         *featured.Highlight `json:"featured,omitempty"`
	HasActiveFilters bool                `json:"hasActiveFilters"`
	Empty            bool                `json:"empty"`
}

// Derive computes the view of s. It never modifies s.
func Derive(s State, buckets group.BucketResolver) View {
	filtered := filter.Apply(s.Stamps, s.Selection)
	groups := group.Summarize(filtered, s.Decade, buckets)

	v := View{
		Decade:           s.Decade,
		Decades:          group.Decades(group.GroupByDecadeAndTheme(filtered)),
		Matching:         len(filtered),
		Groups:           groups,
		TopBuckets:       group.TopBuckets(groups, HeadingBuckets),
		Words:            history.ContextWords(s.Decade, filtered, s.Selection.Keywords),
		HasActiveFilters: s.Selection.Active(),
		Empty:            len(groups) == 0,
	}
	v.Context, _ = history.Lookup(s.Decade)

	var top []stamp.Stamp
	if len(groups) > 0 {
		top = groups[0].Stamps
	}
	v.Materials = materialChoices(top, s.Selection.Materials)
	v.Colors = colorChoices(top, s.Selection.Colors)

	var current *stamp.Stamp
	for i := range s.Stamps {
		if s.FeaturedID != "" && s.Stamps[i].ID == s.FeaturedID {
			current = &s.Stamps[i]
			break
		}
	}
	if pick, ok := featured.Select(groups, current, filtered, s.Decade); ok {
		h := featured.Describe(pick, s.Decade)
		v.Featured = &h
	}
	return v
}

// materialChoices offers the top materials of the leading group. Selected
// materials missing from that list take the trailing slots so they can
// still be cleared.
func materialChoices(top []stamp.Stamp, selected []string) []Choice {
	isSelected := func(name string) bool {
		for _, s := range selected {
			if strings.EqualFold(s, name) {
				return true
			}
		}
		return false
	}

	counts := group.TopMaterials(top, MaxChoices)
	offered := make(map[string]bool, len(counts))
	for _, c := range counts {
		offered[c.Material] = true
	}
	var missing []string
	for _, s := range selected {
		key := strings.ToLower(s)
		if !offered[key] {
			offered[key] = true
			missing = append(missing, key)
		}
	}

	keep := max(0, MaxChoices-len(missing))
	out := []Choice{}
	for i, c := range counts {
		if i >= keep {
			break
		}
		out = append(out, Choice{Name: c.Material, Selected: isSelected(c.Material)})
	}
	for _, m := range missing {
		out = append(out, Choice{Name: m, Selected: true})
	}
	return out
}

// colorChoices lists selected colors first (those in the leading group's
// palette summary, then the rest) and fills the remaining slots with the
// summary's unselected colors.
func colorChoices(top []stamp.Stamp, selected []color.RGB) []ColorChoice {
	palettes := make([][]color.Swatch, 0, len(top))
	for _, s := range top {
		palettes = append(palettes, s.Colors)
	}
	summary := color.TopColors(palettes, MaxChoices, color.DefaultMinDistance)

	selectedHex := make(map[string]color.RGB, len(selected))
	for _, c := range selected {
		selectedHex[c.Hex()] = c
	}

	out := []ColorChoice{}
	used := make(map[string]bool)
	for _, sw := range summary {
		if _, ok := selectedHex[sw.Hex]; ok {
			out = append(out, ColorChoice{Swatch: sw, Selected: true})
			used[sw.Hex] = true
		}
	}
	for _, c := range selected {
		hex := c.Hex()
		if used[hex] {
			continue
		}
		out = append(out, ColorChoice{Swatch: color.Swatch{Hex: hex, RGB: c}, Selected: true})
		used[hex] = true
	}
	for _, sw := range summary {
		if len(out) >= MaxChoices {
			break
		}
		if !used[sw.Hex] {
			out = append(out, ColorChoice{Swatch: sw})
			used[sw.Hex] = true
		}
	}
	return out
}
