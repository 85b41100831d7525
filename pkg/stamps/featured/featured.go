// Package featured chooses the stamp highlighted for a decade and the
// detected region to crop it to.
package featured

import (
	"math"

	"github.com/mnav0/major-studio-1/pkg/stamps/color"
	"github.com/mnav0/major-studio-1/pkg/stamps/group"
	"github.com/mnav0/major-studio-1/pkg/stamps/stamp"
)

// Curated is a hand-picked stamp for a decade.
type Curated struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

var curated = map[int]Curated{
	1760: {"ld1-1643399842277-1643399842286-1", "1p Stamp Act of 1765 proof"},
	1780: {"ld1-1752325177484-1752325200820-1", "French consul at Boston folded letter"},
	1800: {"ld1-1678440905085-1678440910171-0", "20c Pennsylvania First Federal Issue embossed revenue stamped paper on document"},
	1840: {"ld1-1643399842277-1643399850204-1", "10c Washington original model"},
	1850: {"ld1-1643399842277-1643399851659-1", "10c Washington type III single"},
	1860: {"ld1-1643399842277-1643399851670-0", "3c Washington with Brattleboro, VT devil & pitchfork single"},
	1870: {"ld1-1643399842277-1643399851716-1", "1c Franklin Justice Department special printing single"},
	1880: {"ld1-1643399842277-1643399850848-1", "24c Washington trial color card proof"},
	1890: {"ld1-1643399842277-1643399846018-2", "3c Flagship of Columbus plate proof single"},
}

// CuratedFor returns the hand-picked stamp for decade.
func CuratedFor(decade int) (Curated, bool) {
	c, ok := curated[decade]
	return c, ok
}

// Select picks the featured stamp: the decade's curated stamp when it
// survived filtering, else the current pick when it still belongs to the
// top group, else the top group's first stamp. groups must be sorted by
// count. ok is false when nothing can be featured.
func Select(groups []group.ThemeGroup, current *stamp.Stamp, stamps []stamp.Stamp, decade int) (stamp.Stamp, bool) {
	if c, ok := curated[decade]; ok {
		if s, found := find(stamps, c.ID); found {
			return s, true
		}
	}

	if len(groups) == 0 {
		if current != nil {
			return *current, true
		}
		return stamp.Stamp{}, false
	}

	top := groups[0]
	if current != nil {
		if _, inSet := find(stamps, current.ID); inSet {
			if _, inTop := find(top.Stamps, current.ID); inTop {
				return *current, true
			}
		}
	}
	if len(top.Stamps) > 0 {
		return top.Stamps[0], true
	}
	if current != nil {
		return *current, true
	}
	return stamp.Stamp{}, false
}

func find(stamps []stamp.Stamp, id string) (stamp.Stamp, bool) {
	for _, s := range stamps {
		if s.ID == id {
			return s, true
		}
	}
	return stamp.Stamp{}, false
}

const (
	clusterScoreDiff = 0.1
	clusterMinSize   = 3
	clusterMaxDrop   = 0.3
)

// RegionsForDecade drops detections that do not suit the decade: after
// 1800 postmarks and embossing are ignored, in 1800 only embossed regions
// count. When nothing survives the full list is returned.
func RegionsForDecade(regions []stamp.Region, decade int) []stamp.Region {
	var kept []stamp.Region
	switch {
	case decade > 1800:
		for _, r := range regions {
			if r.Label != "postmark" && r.Label != "embossed" {
				kept = append(kept, r)
			}
		}
	case decade == 1800:
		for _, r := range regions {
			if r.Type == "embossed" {
				kept = append(kept, r)
			}
		}
	default:
		kept = regions
	}
	if len(kept) == 0 {
		return regions
	}
	return kept
}

// BestDetection picks the region to crop to. Regions are expected in
// descending score order. The largest run of regions scoring within 0.1
// of its first member wins when it has at least three members and its
// first score is within 0.3 of the top score; otherwise the top region.
func BestDetection(regions []stamp.Region) (stamp.Region, bool) {
	if len(regions) == 0 {
		return stamp.Region{}, false
	}
	highest := regions[0].Score

	var largest []stamp.Region
	for i := range regions {
		cluster := []stamp.Region{regions[i]}
		for j := i + 1; j < len(regions); j++ {
			if math.Abs(regions[i].Score-regions[j].Score) <= clusterScoreDiff {
				cluster = append(cluster, regions[j])
			}
		}
		if len(cluster) > len(largest) {
			largest = cluster
		}
	}

	if len(largest) >= clusterMinSize && highest-largest[0].Score <= clusterMaxDrop {
		return largest[0], true
	}
	return regions[0], true
}

// Highlight is everything needed to render the featured stamp.
type Highlight struct {
	Stamp    stamp.Stamp   `json:"stamp"`
	Curated  bool          `json:"curated"`
	Region   *stamp.Region `json:"region,omitempty"`
	Dominant string        `json:"dominant,omitempty"`
}

// Describe builds the Highlight for s shown in decade.
func Describe(s stamp.Stamp, decade int) Highlight {
	h := Highlight{Stamp: s}
	if c, ok := curated[decade]; ok && c.ID == s.ID {
		h.Curated = true
	}
	if !h.Curated {
		if r, ok := BestDetection(RegionsForDecade(s.Detected, decade)); ok {
			h.Region = &r
		}
	}
	if sw, ok := color.Dominant(s.Colors); ok {
		h.Dominant = sw.Hex
	}
	return h
}
