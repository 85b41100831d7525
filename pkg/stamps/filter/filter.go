// Package filter narrows a stamp set by material, keyword and color. All
// predicates are AND-combined and the engine holds no state.
package filter

import (
	"strings"

	"github.com/mnav0/major-studio-1/pkg/stamps/color"
	"github.com/mnav0/major-studio-1/pkg/stamps/stamp"
)

// DefaultColorThreshold is the RGB distance within which a stamp color
// matches a selected color.
const DefaultColorThreshold = 20

// Selection is the set of active filters.
type Selection struct {
	Materials []string    `json:"materials,omitempty"`
	Keywords  []string    `json:"keywords,omitempty"`
	Colors    []color.RGB `json:"colors,omitempty"`
	// Threshold overrides DefaultColorThreshold when positive.
	Threshold float64 `json:"threshold,omitempty"`
}

// Active reports whether any filter is selected.
func (s Selection) Active() bool {
	return len(s.Materials) > 0 || len(s.Keywords) > 0 || len(s.Colors) > 0
}

func (s Selection) threshold() float64 {
	if s.Threshold > 0 {
		return s.Threshold
	}
	return DefaultColorThreshold
}

// Apply returns the stamps that satisfy every active filter. An inactive
// selection returns stamps itself. An empty result stays empty.
func Apply(stamps []stamp.Stamp, sel Selection) []stamp.Stamp {
	if stamps == nil {
		return []stamp.Stamp{}
	}
	if !sel.Active() {
		return stamps
	}

	m := newMatcher(sel)
	out := []stamp.Stamp{}
	for _, s := range stamps {
		if m.match(s) {
			out = append(out, s)
		}
	}
	return out
}

// Matches reports whether a single stamp satisfies sel.
func Matches(s stamp.Stamp, sel Selection) bool {
	return newMatcher(sel).match(s)
}

type matcher struct {
	materials []string
	keywords  []string
	colors    []color.RGB
	threshold float64
}

func newMatcher(sel Selection) matcher {
	m := matcher{colors: sel.Colors, threshold: sel.threshold()}
	for _, mat := range sel.Materials {
		m.materials = append(m.materials, strings.ToLower(mat))
	}
	for _, kw := range sel.Keywords {
		m.keywords = append(m.keywords, strings.ToLower(kw))
	}
	return m
}

func (m matcher) match(s stamp.Stamp) bool {
	return m.matchMaterials(s) && m.matchKeywords(s) && m.matchColors(s)
}

func (m matcher) matchMaterials(s stamp.Stamp) bool {
	for _, want := range m.materials {
		found := false
		for _, have := range s.Materials {
			if strings.ToLower(have) == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (m matcher) matchKeywords(s stamp.Stamp) bool {
	if len(m.keywords) == 0 {
		return true
	}
	title := strings.ToLower(s.Title)
	desc := strings.ToLower(s.Description)
	for _, kw := range m.keywords {
		if !strings.Contains(title, kw) && !strings.Contains(desc, kw) {
			return false
		}
	}
	return true
}

func (m matcher) matchColors(s stamp.Stamp) bool {
	for _, want := range m.colors {
		found := false
		for _, have := range s.Colors {
			if color.Similar(want, have.RGB, m.threshold) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
