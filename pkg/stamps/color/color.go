// Package color holds the RGB helpers shared by the color filter and the
// palette summaries.
package color

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is a color in 0-255 channel space. Palette extraction reports
// fractional channels, so components are floats.
type RGB [3]float64

// Swatch is one palette entry extracted from a stamp image.
type Swatch struct {
	Hex        string     `json:"hex"`
	RGB        RGB        `json:"rgb"`
	HSL        [3]float64 `json:"hsl,omitempty"`
	Population int        `json:"population"`
}

// Distance returns the Euclidean distance between a and b in RGB space.
// The result ranges from 0 to ~441.67.
func Distance(a, b RGB) float64 {
	dr := a[0] - b[0]
	dg := a[1] - b[1]
	db := a[2] - b[2]
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// Similar reports whether a and b are within threshold of each other.
func Similar(a, b RGB, threshold float64) bool {
	return Distance(a, b) <= threshold
}

// ParseHex parses "#rrggbb", "rrggbb" or the short "#rgb" form.
func ParseHex(s string) (RGB, error) {
	h := strings.TrimSpace(s)
	if !strings.HasPrefix(h, "#") {
		h = "#" + h
	}
	// colorful.Hex scans partial input such as "#12345" without complaint.
	if len(h) != 4 && len(h) != 7 {
		return RGB{}, fmt.Errorf("parse hex color %q: want 3 or 6 hex digits", s)
	}
	c, err := colorful.Hex(h)
	if err != nil {
		return RGB{}, fmt.Errorf("parse hex color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{float64(r), float64(g), float64(b)}, nil
}

// Hex formats c as "#rrggbb", rounding and clamping each channel.
func (c RGB) Hex() string {
	return colorful.Color{R: c[0] / 255, G: c[1] / 255, B: c[2] / 255}.Clamped().Hex()
}

func channel(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// HSL returns hue in degrees with saturation and lightness in [0, 1].
func (c RGB) HSL() [3]float64 {
	h, s, l := colorful.Color{
		R: float64(channel(c[0])) / 255,
		G: float64(channel(c[1])) / 255,
		B: float64(channel(c[2])) / 255,
	}.Hsl()
	return [3]float64{h, s, l}
}
