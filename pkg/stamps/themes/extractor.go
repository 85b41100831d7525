package themes

import (
	"sort"
	"strings"
)

// Extractor assigns a single canonical theme to free text. The dictionary
// is compiled once into a phrase table (folded keyword -> canonical theme)
// and a rank table (folded canonical theme -> priority index).
type Extractor struct {
	dict     *Dictionary
	phrases  map[string]string
	rank     map[string]int
	priority []string
	maxLen   int
}

// NewExtractor validates the dictionary and compiles it.
func NewExtractor(d *Dictionary) (*Extractor, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	e := &Extractor{
		dict:     d,
		phrases:  make(map[string]string),
		rank:     make(map[string]int, len(d.Priority)),
		priority: append([]string(nil), d.Priority...),
		maxLen:   1,
	}
	for i, theme := range d.Priority {
		e.rank[fold(theme)] = i
	}

	// Canonical names match themselves; variant mappings override them.
	for _, kw := range d.Keywords() {
		e.addPhrase(kw, kw)
	}
	for _, variant := range d.variants() {
		e.addPhrase(variant, d.Normalization[variant])
	}
	return e, nil
}

// MustExtractor is NewExtractor for dictionaries known to be valid.
func MustExtractor(d *Dictionary) *Extractor {
	e, err := NewExtractor(d)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Extractor) addPhrase(keyword, canonical string) {
	tokens := tokenize(keyword)
	if len(tokens) == 0 {
		return
	}
	e.phrases[strings.Join(tokens, " ")] = canonical
	if len(tokens) > e.maxLen {
		e.maxLen = len(tokens)
	}
}

// Dictionary returns the dictionary the extractor was compiled from.
func (e *Extractor) Dictionary() *Dictionary {
	return e.dict
}

// ExtractTheme returns the highest-priority canonical theme mentioned in
// text. Priority decides, not position: "Columbus meets Washington" yields
// "George Washington" when Washington ranks first.
func (e *Extractor) ExtractTheme(text string) (string, bool) {
	best := -1
	for _, canonical := range e.match(text) {
		r, ok := e.rank[fold(canonical)]
		if !ok {
			continue
		}
		if best < 0 || r < best {
			best = r
		}
	}
	if best < 0 {
		return "", false
	}
	return e.priority[best], true
}

// ExtractAll returns every distinct canonical theme mentioned in text:
// prioritized themes first in priority order, then the rest alphabetically.
func (e *Extractor) ExtractAll(text string) []string {
	matched := e.match(text)
	out := make([]string, 0, len(matched))
	var unranked []string
	for _, canonical := range matched {
		if _, ok := e.rank[fold(canonical)]; ok {
			out = append(out, canonical)
		} else {
			unranked = append(unranked, canonical)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return e.rank[fold(out[i])] < e.rank[fold(out[j])]
	})
	for i, canonical := range out {
		out[i] = e.priority[e.rank[fold(canonical)]]
	}
	sort.Strings(unranked)
	return append(out, unranked...)
}

// match finds non-overlapping keyword phrases using greedy longest match
// and returns their canonical themes, deduplicated, in text order.
func (e *Extractor) match(text string) []string {
	tokens := tokenize(text)
	var found []string
	seen := make(map[string]struct{})

	i := 0
	for i < len(tokens) {
		n := e.maxLen
		if remaining := len(tokens) - i; n > remaining {
			n = remaining
		}

		matchLen := 0
		canonical := ""
		for ; n >= 1; n-- {
			if c, ok := e.phrases[strings.Join(tokens[i:i+n], " ")]; ok {
				canonical = c
				matchLen = n
				break
			}
		}

		if matchLen == 0 {
			i++
			continue
		}
		key := fold(canonical)
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			found = append(found, canonical)
		}
		i += matchLen
	}
	return found
}
