package group

import (
	"sort"
	"strings"

	"github.com/mnav0/major-studio-1/pkg/stamps/stamp"
)

// TopBuckets walks count-sorted groups and returns the first n distinct
// buckets.
func TopBuckets(groups []ThemeGroup, n int) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, g := range groups {
		if len(out) >= n {
			break
		}
		if _, ok := seen[g.Bucket]; ok {
			continue
		}
		seen[g.Bucket] = struct{}{}
		out = append(out, g.Bucket)
	}
	return out
}

// MaterialCount is a lowercased material and the number of stamps that
// list it.
type MaterialCount struct {
	Material string `json:"material"`
	Count    int    `json:"count"`
}

// TopMaterials counts materials case-insensitively and returns the n most
// frequent. Ties keep first-seen order.
func TopMaterials(stamps []stamp.Stamp, n int) []MaterialCount {
	index := make(map[string]int)
	counts := []MaterialCount{}
	for _, s := range stamps {
		for _, m := range s.Materials {
			key := strings.ToLower(m)
			if i, ok := index[key]; ok {
				counts[i].Count++
				continue
			}
			index[key] = len(counts)
			counts = append(counts, MaterialCount{Material: key, Count: 1})
		}
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if n >= 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// SquaredDistance sums squared differences over the dimensions of ref.
// ok is false when a is shorter than ref.
func SquaredDistance(a, ref []float64) (float64, bool) {
	if len(ref) == 0 || len(a) < len(ref) {
		return 0, false
	}
	var sum float64
	for i := range ref {
		d := a[i] - ref[i]
		sum += d * d
	}
	return sum, true
}

// SortBySimilarity returns a copy of stamps ordered by embedding distance
// to ref, nearest first. Stamps without a usable embedding go last in
// their original order.
func SortBySimilarity(stamps []stamp.Stamp, ref []float64) []stamp.Stamp {
	type ranked struct {
		s    stamp.Stamp
		dist float64
		ok   bool
	}
	rs := make([]ranked, len(stamps))
	for i, s := range stamps {
		d, ok := SquaredDistance(s.Embedding, ref)
		rs[i] = ranked{s: s, dist: d, ok: ok}
	}
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].ok != rs[j].ok {
			return rs[i].ok
		}
		return rs[i].ok && rs[i].dist < rs[j].dist
	})

	out := make([]stamp.Stamp, len(rs))
	for i, r := range rs {
		out[i] = r.s
	}
	return out
}
