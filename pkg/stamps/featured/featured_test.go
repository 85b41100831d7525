package featured

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnav0/major-studio-1/pkg/stamps/color"
	"github.com/mnav0/major-studio-1/pkg/stamps/group"
	"github.com/mnav0/major-studio-1/pkg/stamps/stamp"
)

const curated1840 = "ld1-1643399842277-1643399850204-1"

func TestSelectPrefersCurated(t *testing.T) {
	stamps := []stamp.Stamp{{ID: "a", Decade: 1840}, {ID: curated1840, Decade: 1840}}
	groups := []group.ThemeGroup{{Decade: 1840, Stamps: stamps[:1], Count: 1}}

	got, ok := Select(groups, nil, stamps, 1840)
	require.True(t, ok)
	assert.Equal(t, curated1840, got.ID)
}

func TestSelectKeepsCurrentInTopGroup(t *testing.T) {
	a, b := stamp.Stamp{ID: "a"}, stamp.Stamp{ID: "b"}
	stamps := []stamp.Stamp{a, b}
	groups := []group.ThemeGroup{{Stamps: []stamp.Stamp{a, b}, Count: 2}}

	got, ok := Select(groups, &b, stamps, 1850)
	require.True(t, ok)
	assert.Equal(t, "b", got.ID)
}

func TestSelectFallsBackToTopGroup(t *testing.T) {
	a, b, c := stamp.Stamp{ID: "a"}, stamp.Stamp{ID: "b"}, stamp.Stamp{ID: "c"}
	groups := []group.ThemeGroup{
		{Stamps: []stamp.Stamp{a, b}, Count: 2},
		{Stamps: []stamp.Stamp{c}, Count: 1},
	}

	got, ok := Select(groups, &c, []stamp.Stamp{a, b, c}, 1850)
	require.True(t, ok)
	assert.Equal(t, "a", got.ID)

	// current filtered out of the set
	got, ok = Select(groups, &stamp.Stamp{ID: "gone"}, []stamp.Stamp{a, b}, 1850)
	require.True(t, ok)
	assert.Equal(t, "a", got.ID)
}

func TestSelectNothing(t *testing.T) {
	_, ok := Select(nil, nil, nil, 1850)
	assert.False(t, ok)
}

func TestRegionsForDecade(t *testing.T) {
	regions := []stamp.Region{
		{Label: "postmark", Score: 0.9},
		{Label: "portrait", Score: 0.8},
		{Label: "embossed", Type: "embossed", Score: 0.7},
	}

	assert.Equal(t, []stamp.Region{regions[1]}, RegionsForDecade(regions, 1850))
	assert.Equal(t, []stamp.Region{regions[2]}, RegionsForDecade(regions, 1800))
	assert.Equal(t, regions, RegionsForDecade(regions, 1780))

	onlyPostmarks := regions[:1]
	assert.Equal(t, onlyPostmarks, RegionsForDecade(onlyPostmarks, 1850))
}

func TestBestDetection(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   int
	}{
		{"single", []float64{0.9}, 0},
		{"cluster wins", []float64{0.95, 0.7, 0.68, 0.66}, 1},
		{"cluster too far below top", []float64{0.99, 0.6, 0.58, 0.55}, 0},
		{"cluster too small", []float64{0.95, 0.7, 0.68}, 0},
		{"top is the cluster", []float64{0.9, 0.85, 0.82, 0.3}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regions := make([]stamp.Region, len(tt.scores))
			for i, s := range tt.scores {
				regions[i] = stamp.Region{Label: string(rune('a' + i)), Score: s}
			}
			got, ok := BestDetection(regions)
			require.True(t, ok)
			assert.Equal(t, regions[tt.want].Label, got.Label)
		})
	}

	_, ok := BestDetection(nil)
	assert.False(t, ok)
}

func TestDescribe(t *testing.T) {
	s := stamp.Stamp{
		ID:       "x",
		Detected: []stamp.Region{{Label: "portrait", Score: 0.9}},
		Colors: []color.Swatch{
			{Hex: "#111111", Population: 1},
			{Hex: "#aa2222", Population: 9},
		},
	}
	h := Describe(s, 1850)
	assert.False(t, h.Curated)
	require.NotNil(t, h.Region)
	assert.Equal(t, "portrait", h.Region.Label)
	assert.Equal(t, "#aa2222", h.Dominant)

	h = Describe(stamp.Stamp{ID: curated1840}, 1840)
	assert.True(t, h.Curated)
	assert.Nil(t, h.Region)
}

func TestCuratedFor(t *testing.T) {
	c, ok := CuratedFor(1840)
	require.True(t, ok)
	assert.Equal(t, "10c Washington original model", c.Title)
	_, ok = CuratedFor(1810)
	assert.False(t, ok)
}
