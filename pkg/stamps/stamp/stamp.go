// Package stamp defines the normalized stamp entity produced by the
// normalizer and consumed by grouping, filtering and storage.
package stamp

import "github.com/mnav0/major-studio-1/pkg/stamps/color"

// AspectRatio is the categorical shape of a stamp image.
type AspectRatio string

const (
	AspectUnclassified AspectRatio = ""
	AspectSquare       AspectRatio = "square"
	AspectHorizontal   AspectRatio = "horizontal"
	AspectWide         AspectRatio = "wide"
	AspectExtraWide    AspectRatio = "extra-wide"
	AspectWidest       AspectRatio = "widest"
	AspectTall         AspectRatio = "tall"
)

// Media is one online image attached to a record.
type Media struct {
	Thumbnail string `json:"thumbnail"`
	Content   string `json:"content,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
}

// Region is a detected area of a stamp image. Box is x1, y1, x2, y2 as
// fractions of the image size.
type Region struct {
	Label string     `json:"label"`
	Type  string     `json:"type,omitempty"`
	Score float64    `json:"score"`
	Box   [4]float64 `json:"box"`
}

// Stamp is a normalized museum record. Decade and Theme are fixed at
// normalization; Embedding, Detected and Colors come from enrichment
// datasets joined by ID.
type Stamp struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Notes       string         `json:"notes,omitempty"`
	Decade      int            `json:"decade"`
	Theme       string         `json:"theme"`
	Materials   []string       `json:"materials"`
	Thumbnail   string         `json:"thumbnail,omitempty"`
	Media       []Media        `json:"media,omitempty"`
	AspectRatio AspectRatio    `json:"aspectRatio,omitempty"`
	Embedding   []float64      `json:"embedding,omitempty"`
	Detected    []Region       `json:"detected,omitempty"`
	Colors      []color.Swatch `json:"colors,omitempty"`
}

// HasColors reports whether palette data is attached.
func (s Stamp) HasColors() bool {
	return len(s.Colors) > 0
}
