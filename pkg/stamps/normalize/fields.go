package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/mnav0/major-studio-1/pkg/stamps/record"
	"github.com/mnav0/major-studio-1/pkg/stamps/stamp"
)

var yearPattern = regexp.MustCompile(`\d{4}`)

// Decade floors year to its decade. 1847 → 1840, 1800 → 1800.
func Decade(year int) int {
	return year / 10 * 10
}

// Year resolves a record's year: the last structured date first, then the
// first four-digit run in the first free-text date.
func Year(r record.Record) (int, bool) {
	if dates := r.Content.IndexedStructured.Date; len(dates) > 0 {
		if y, ok := firstYear(dates[len(dates)-1]); ok {
			return y, true
		}
	}
	if dates := r.Content.Freetext.Date; len(dates) > 0 {
		if y, ok := firstYear(dates[0].Content); ok {
			return y, true
		}
	}
	return 0, false
}

func firstYear(s string) (int, bool) {
	m := yearPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	y, err := strconv.Atoi(m)
	if err != nil || y <= 0 {
		return 0, false
	}
	return y, true
}

// Materials splits a medium description into ordered material fragments.
// Fragments are split on ';' and '/', then again on ") "; a sub-fragment
// that opened a parenthesis and lost its closing mark in the split gets
// it back. Blank fragments are dropped.
func Materials(medium string) []string {
	materials := []string{}
	for _, part := range strings.FieldsFunc(medium, func(r rune) bool { return r == ';' || r == '/' }) {
		part = strings.TrimSpace(part)
		if !strings.Contains(part, ") ") {
			materials = appendNonEmpty(materials, part)
			continue
		}
		for _, sub := range strings.Split(part, ") ") {
			if strings.Contains(sub, "(") && !strings.HasSuffix(sub, ")") {
				sub += ")"
			}
			materials = appendNonEmpty(materials, strings.TrimSpace(sub))
		}
	}
	return materials
}

func appendNonEmpty(dst []string, s string) []string {
	if s == "" {
		return dst
	}
	return append(dst, s)
}

// Classify maps pixel dimensions to an aspect ratio category. Stamps from
// the 1780s are always horizontal.
func Classify(width, height, decade int) stamp.AspectRatio {
	if decade == 1780 {
		return stamp.AspectHorizontal
	}
	if width <= 0 || height <= 0 {
		return stamp.AspectUnclassified
	}
	ratio := float64(width) / float64(height)
	switch {
	case ratio > 1.05 && ratio < 1.3:
		return stamp.AspectHorizontal
	case ratio >= 0.95 && ratio <= 1.05:
		return stamp.AspectSquare
	case ratio > 1.3 && ratio <= 1.5:
		return stamp.AspectWide
	case ratio > 1.5 && ratio <= 1.8:
		return stamp.AspectExtraWide
	case ratio > 1.8:
		return stamp.AspectWidest
	case ratio < 0.6:
		return stamp.AspectTall
	}
	return stamp.AspectUnclassified
}

// PlainText reduces an HTML fragment to its text content with collapsed
// whitespace. Unparseable input is returned trimmed.
func PlainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), nil)
	if err != nil {
		return strings.TrimSpace(fragment)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
			if n.Data == "br" || n.Data == "p" || n.Data == "div" || n.Data == "li" {
				b.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func media(r record.Record) []stamp.Media {
	raw := r.Media()
	if len(raw) == 0 {
		return nil
	}
	out := make([]stamp.Media, 0, len(raw))
	for _, m := range raw {
		sm := stamp.Media{Thumbnail: m.Thumbnail, Content: m.Content}
		for _, res := range m.Resources {
			if res.Width > 0 && res.Height > 0 {
				sm.Width, sm.Height = res.Width, res.Height
				break
			}
		}
		out = append(out, sm)
	}
	return out
}
