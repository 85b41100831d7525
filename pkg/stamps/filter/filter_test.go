package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnav0/major-studio-1/pkg/stamps/color"
	"github.com/mnav0/major-studio-1/pkg/stamps/stamp"
)

func fixtures() []stamp.Stamp {
	return []stamp.Stamp{
		{
			ID:          "paper-silk",
			Title:       "3c Washington essay",
			Description: "Engraved on silk paper",
			Materials:   []string{"Paper", "silk"},
			Colors:      []color.Swatch{{Hex: "#c83232", RGB: color.RGB{200, 50, 50}, Population: 10}},
		},
		{
			ID:        "paper",
			Title:     "1c Franklin plate proof",
			Materials: []string{"paper"},
			Colors:    []color.Swatch{{Hex: "#3232c8", RGB: color.RGB{50, 50, 200}, Population: 8}},
		},
		{
			ID:          "card",
			Title:       "Columbus landing",
			Description: "Proof on card for the Columbian Exposition",
			Materials:   []string{"card", "ink (black)"},
		},
	}
}

func ids(stamps []stamp.Stamp) []string {
	out := []string{}
	for _, s := range stamps {
		out = append(out, s.ID)
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		sel  Selection
		want []string
	}{
		{"materials AND", Selection{Materials: []string{"paper", "silk"}}, []string{"paper-silk"}},
		{"material case insensitive", Selection{Materials: []string{"PAPER"}}, []string{"paper-silk", "paper"}},
		{"material exact not substring", Selection{Materials: []string{"ink"}}, []string{}},
		{"material with parenthetical", Selection{Materials: []string{"Ink (Black)"}}, []string{"card"}},
		{"keyword in title", Selection{Keywords: []string{"washington"}}, []string{"paper-silk"}},
		{"keyword in description", Selection{Keywords: []string{"EXPOSITION"}}, []string{"card"}},
		{"keywords AND", Selection{Keywords: []string{"proof", "card"}}, []string{"card"}},
		{"keyword substring", Selection{Keywords: []string{"proof"}}, []string{"paper", "card"}},
		{"color within threshold", Selection{Colors: []color.RGB{{205, 55, 50}}}, []string{"paper-silk"}},
		{"color outside threshold", Selection{Colors: []color.RGB{{230, 50, 50}}}, []string{}},
		{"custom threshold", Selection{Colors: []color.RGB{{230, 50, 50}}, Threshold: 40}, []string{"paper-silk"}},
		{"colors AND", Selection{Colors: []color.RGB{{200, 50, 50}, {50, 50, 200}}}, []string{}},
		{
			"categories AND",
			Selection{Materials: []string{"paper"}, Keywords: []string{"franklin"}, Colors: []color.RGB{{50, 50, 200}}},
			[]string{"paper"},
		},
		{"no match stays empty", Selection{Keywords: []string{"lincoln"}}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(fixtures(), tt.sel)))
		})
	}
}

func TestApplyEmptySelectionReturnsInput(t *testing.T) {
	stamps := fixtures()
	got := Apply(stamps, Selection{})
	require.Len(t, got, len(stamps))
	assert.Same(t, &stamps[0], &got[0])
}

func TestApplyNilInput(t *testing.T) {
	got := Apply(nil, Selection{Materials: []string{"paper"}})
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.NotNil(t, Apply(nil, Selection{}))
}

func TestApplyIdempotent(t *testing.T) {
	stamps := fixtures()
	sel := Selection{Materials: []string{"paper"}, Keywords: []string{"proof"}}

	first := Apply(stamps, sel)
	assert.Equal(t, first, Apply(stamps, sel))
	assert.Equal(t, first, Apply(first, sel), "refiltering changed the result")
	assert.Equal(t, fixtures(), stamps, "input stamps were mutated")
}

func TestActive(t *testing.T) {
	assert.False(t, Selection{}.Active())
	assert.False(t, Selection{Threshold: 30}.Active(), "threshold alone does not filter")
	assert.True(t, Selection{Keywords: []string{"war"}}.Active())
}

func TestMatches(t *testing.T) {
	s := fixtures()[0]
	assert.True(t, Matches(s, Selection{}))
	assert.False(t, Matches(s, Selection{Materials: []string{"card"}}))
}
