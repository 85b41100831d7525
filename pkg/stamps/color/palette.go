package color

import "sort"

// DefaultMinDistance keeps palette summaries visually distinct.
const DefaultMinDistance = 50.0

// relaxFactor scales the minimum distance for the second selection pass.
const relaxFactor = 0.75

// TopColors merges the given palettes by hex (summing populations) and
// returns up to n colors ordered by population, skipping any color closer
// than minDistance to one already picked. When that leaves fewer than n
// colors a second pass runs with the distance relaxed to 75%.
func TopColors(palettes [][]Swatch, n int, minDistance float64) []Swatch {
	if n <= 0 {
		return []Swatch{}
	}

	merged := mergeByHex(palettes)
	selected := make([]Swatch, 0, n)
	if len(merged) == 0 {
		return selected
	}

	pick := func(dist float64) {
		for _, cand := range merged {
			if len(selected) >= n {
				return
			}
			if containsHex(selected, cand.Hex) {
				continue
			}
			if distinctFrom(selected, cand.RGB, dist) {
				selected = append(selected, cand)
			}
		}
	}

	pick(minDistance)
	if len(selected) < n {
		pick(minDistance * relaxFactor)
	}
	return selected
}

// Dominant returns the highest-population swatch of a palette.
func Dominant(palette []Swatch) (Swatch, bool) {
	if len(palette) == 0 {
		return Swatch{}, false
	}
	best := palette[0]
	for _, s := range palette[1:] {
		if s.Population > best.Population {
			best = s
		}
	}
	return best, true
}

func mergeByHex(palettes [][]Swatch) []Swatch {
	index := make(map[string]int)
	var merged []Swatch
	for _, palette := range palettes {
		for _, s := range palette {
			if s.Hex == "" {
				continue
			}
			if i, ok := index[s.Hex]; ok {
				merged[i].Population += s.Population
				continue
			}
			index[s.Hex] = len(merged)
			merged = append(merged, Swatch{Hex: s.Hex, RGB: s.RGB, Population: s.Population})
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Population > merged[j].Population
	})
	return merged
}

func containsHex(swatches []Swatch, hex string) bool {
	for _, s := range swatches {
		if s.Hex == hex {
			return true
		}
	}
	return false
}

func distinctFrom(selected []Swatch, c RGB, minDistance float64) bool {
	for _, s := range selected {
		if Distance(s.RGB, c) < minDistance {
			return false
		}
	}
	return true
}
