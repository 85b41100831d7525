package history

import (
	"regexp"
	"strings"

	"github.com/mnav0/major-studio-1/pkg/stamps/stamp"
)

// vocabulary lists the narrative terms that double as keyword filters.
// Order matters: at a given position the first matching pattern wins.
var vocabulary = []string{
	// revolutionary and colonial
	`\bRevolutionary\b`, `\bRevolutions?\b`, `\bcolony\b`, `\bcolonies\b`, `\bcrowns?\b`,
	`\bauthority\b`, `\bopposition\b`, `\bBritish\b`, `\btax(es)?\b`, `\bStamp Acts?\b`, `\bresistance\b`,

	// founders
	`\bWashington\b`, `\bFranklin\b`, `\bJefferson\b`, `\bHamilton\b`,

	// postal
	`\bpostmarks?\b`, `\binks?\b`, `\bstamps?\b`, `\bproofs?\b`, `\bEmbossed\b`, `\bpostals?\b`, `\bsystems?\b`,

	// civil war
	`\bwars?\b`, `\bCivil Wars?\b`, `\bUnions?\b`, `\bcancels?\b`, `\bmarks?\b`, `\beagles?\b`,
	`\bmascots?\b`, `\bforces?\b`, `\bMilitary\b`, `\bgenerals?\b`,

	// reconstruction
	`\breconstruct(ing|ion)?\b`, `\bpeace\b`, `\bjustice\b`, `\bfreedom\b`,

	// gilded age
	`\bgrowth\b`, `\bexpositions?\b`, `\bfinancials?\b`,

	// commemoratives
	`\bcommemorative\b`, `\bColumbus\b`, `\bdiscovery\b`, `\bvoyages?\b`, `\bpopular\b`,
	`\bfoundat(ion|ional)\b`, `\bhistory\b`,

	// national identity
	`\bAmericans?\b`, `\bnations?\b`, `\bnational\b`, `\bemblems?\b`, `\bidentity\b`, `\bideals?\b`,
	`\bsymbols?\b`, `\bimagery\b`, `\bfigures?\b`,

	// first issues
	`\bfirst\b`, `\bissues?\b`, `\bofficial\b`, `\bfeatures?\b`, `\bleaders?\b`, `\bportrayals?\b`,
}

var vocabularyPattern = regexp.MustCompile(`(?i)` + strings.Join(vocabulary, "|"))

// Word is a clickable narrative term.
type Word struct {
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
}

// Terms returns the vocabulary matches in text, in order of appearance,
// with their original casing. Repeats are kept once.
func Terms(text string) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, m := range vocabularyPattern.FindAllString(text, -1) {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// ContextWords returns the decade's narrative terms that start a word in
// the title or description of at least one stamp from that decade.
// Selected keywords are flagged; selected keywords that are no longer
// offered are appended so they can still be cleared.
func ContextWords(decade int, stamps []stamp.Stamp, selected []string) []Word {
	isSelected := make(map[string]bool, len(selected))
	for _, s := range selected {
		isSelected[s] = true
	}

	out := []Word{}
	offered := make(map[string]bool)
	ctx, _ := Lookup(decade)
	for _, term := range Terms(ctx.Historical) {
		if !appears(term, decade, stamps) {
			continue
		}
		offered[term] = true
		out = append(out, Word{Text: term, Selected: isSelected[term]})
	}

	for _, s := range selected {
		if !offered[s] {
			offered[s] = true
			out = append(out, Word{Text: s, Selected: true})
		}
	}
	return out
}

func appears(term string, decade int, stamps []stamp.Stamp) bool {
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(term))
	if err != nil {
		return false
	}
	for _, s := range stamps {
		if s.Decade != decade {
			continue
		}
		if re.MatchString(s.Title) || re.MatchString(s.Description) {
			return true
		}
	}
	return false
}
