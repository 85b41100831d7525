// Package record models rows returned by the Smithsonian Open Access
// search API. Only the fields the normalizer reads are decoded; the shape
// is loose because the source populates them inconsistently.
package record

import "strings"

// Record is a single search row.
type Record struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Content Content `json:"content"`
}

// Content groups the record's descriptive sections.
type Content struct {
	IndexedStructured       IndexedStructured       `json:"indexedStructured"`
	Freetext                Freetext                `json:"freetext"`
	DescriptiveNonRepeating DescriptiveNonRepeating `json:"descriptiveNonRepeating"`
}

// IndexedStructured holds normalized facet values.
type IndexedStructured struct {
	Date  []string `json:"date,omitempty"`
	Place []string `json:"place,omitempty"`
	Topic []string `json:"topic,omitempty"`
}

// Freetext holds labelled free-text fields.
type Freetext struct {
	Date                []Labelled `json:"date,omitempty"`
	Notes               []Labelled `json:"notes,omitempty"`
	PhysicalDescription []Labelled `json:"physicalDescription,omitempty"`
}

// Labelled is a {label, content} pair.
type Labelled struct {
	Label   string `json:"label"`
	Content string `json:"content"`
}

// DescriptiveNonRepeating holds single-valued descriptive data.
type DescriptiveNonRepeating struct {
	RecordLink  string       `json:"record_link,omitempty"`
	OnlineMedia *OnlineMedia `json:"online_media,omitempty"`
}

// OnlineMedia lists the images attached to a record.
type OnlineMedia struct {
	MediaCount int     `json:"mediaCount,omitempty"`
	Media      []Media `json:"media"`
}

// Media is one image with optional sized resources.
type Media struct {
	Thumbnail string     `json:"thumbnail"`
	Content   string     `json:"content,omitempty"`
	Type      string     `json:"type,omitempty"`
	Resources []Resource `json:"resources,omitempty"`
}

// Resource is a rendition of a media item with pixel dimensions.
type Resource struct {
	Label  string `json:"label,omitempty"`
	URL    string `json:"url,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Find returns the content of the first entry whose label matches
// (case-insensitively).
func Find(entries []Labelled, label string) (string, bool) {
	for _, e := range entries {
		if strings.EqualFold(strings.TrimSpace(e.Label), label) {
			return e.Content, true
		}
	}
	return "", false
}

// Media returns the record's online media, or nil.
func (r Record) Media() []Media {
	if r.Content.DescriptiveNonRepeating.OnlineMedia == nil {
		return nil
	}
	return r.Content.DescriptiveNonRepeating.OnlineMedia.Media
}

// FirstPlace returns the first structured place, or "".
func (r Record) FirstPlace() string {
	if len(r.Content.IndexedStructured.Place) == 0 {
		return ""
	}
	return r.Content.IndexedStructured.Place[0]
}
