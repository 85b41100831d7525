// Package state holds the exploration state as an immutable value. Every
// change goes through Update and every view is computed by Derive.
package state

import (
	"slices"
	"strings"

	"github.com/mnav0/major-studio-1/pkg/stamps/color"
	"github.com/mnav0/major-studio-1/pkg/stamps/filter"
	"github.com/mnav0/major-studio-1/pkg/stamps/stamp"
)

// State is the full exploration state. Values are never mutated in
// place; Update returns a new State sharing unchanged slices.
type State struct {
	Stamps    []stamp.Stamp
	Decade    int
	Selection filter.Selection
	// FeaturedID is the stamp featured by the previous view, if any.
	FeaturedID string
}

// Action is a single state transition.
type Action interface {
	apply(State) State
}

// LoadStamps replaces the stamp set. The decade moves to the earliest one
// when the current decade has no stamps.
type LoadStamps struct{ Stamps []stamp.Stamp }

// SelectDecade moves to another decade. Filters persist across decades.
type SelectDecade struct{ Decade int }

// ToggleMaterial adds or removes a material filter.
type ToggleMaterial struct{ Material string }

// ToggleKeyword adds or removes a keyword filter.
type ToggleKeyword struct{ Keyword string }

// ToggleColor adds or removes a color filter.
type ToggleColor struct{ Color color.RGB }

// ResetFilters clears every filter.
type ResetFilters struct{}

// Feature records the stamp currently featured.
type Feature struct{ ID string }

// Update applies a to s.
func Update(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s)
}

func (a LoadStamps) apply(s State) State {
	s.Stamps = slices.Clone(a.Stamps)
	if s.Stamps == nil {
		s.Stamps = []stamp.Stamp{}
	}
	if !hasDecade(s.Stamps, s.Decade) {
		s.Decade = earliest(s.Stamps)
	}
	if !hasStamp(s.Stamps, s.FeaturedID) {
		s.FeaturedID = ""
	}
	return s
}

func (a SelectDecade) apply(s State) State {
	if a.Decade != s.Decade {
		s.Decade = a.Decade
		s.FeaturedID = ""
	}
	return s
}

func (a ToggleMaterial) apply(s State) State {
	m := strings.TrimSpace(a.Material)
	if m == "" {
		return s
	}
	s.Selection.Materials = toggle(s.Selection.Materials, m, strings.EqualFold)
	return s
}

func (a ToggleKeyword) apply(s State) State {
	k := strings.TrimSpace(a.Keyword)
	if k == "" {
		return s
	}
	s.Selection.Keywords = toggle(s.Selection.Keywords, k, strings.EqualFold)
	return s
}

func (a ToggleColor) apply(s State) State {
	s.Selection.Colors = toggle(s.Selection.Colors, a.Color, func(x, y color.RGB) bool {
		return x.Hex() == y.Hex()
	})
	return s
}

func (ResetFilters) apply(s State) State {
	threshold := s.Selection.Threshold
	s.Selection = filter.Selection{Threshold: threshold}
	return s
}

func (a Feature) apply(s State) State {
	s.FeaturedID = a.ID
	return s
}

// toggle returns a new slice with v removed when present, appended when not.
func toggle[T any](list []T, v T, eq func(a, b T) bool) []T {
	for i, x := range list {
		if eq(x, v) {
			return slices.Delete(slices.Clone(list), i, i+1)
		}
	}
	out := make([]T, len(list), len(list)+1)
	copy(out, list)
	return append(out, v)
}

func hasDecade(stamps []stamp.Stamp, decade int) bool {
	for _, s := range stamps {
		if s.Decade == decade {
			return true
		}
	}
	return false
}

func hasStamp(stamps []stamp.Stamp, id string) bool {
	if id == "" {
		return false
	}
	for _, s := range stamps {
		if s.ID == id {
			return true
		}
	}
	return false
}

func earliest(stamps []stamp.Stamp) int {
	if len(stamps) == 0 {
		return 0
	}
	first := stamps[0].Decade
	for _, s := range stamps[1:] {
		if s.Decade < first {
			first = s.Decade
		}
	}
	return first
}
