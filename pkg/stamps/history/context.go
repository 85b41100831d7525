// Package history carries the per-decade narrative shown beside the theme
// chart and finds the narrative words that can act as keyword filters.
package history

import "sort"

// Context is the narrative for one decade. Postal is empty for decades
// without a postal milestone.
type Context struct {
	Decade     int    `json:"decade"`
	Historical string `json:"historical"`
	Postal     string `json:"postal,omitempty"`
}

var historical = map[int]string{
	1760: "The British enact The Stamp Act to tax the colonies on November 1, 1765, asserting control through imagery of the crown that is met with strong opposition leading up to the American Revolution.",
	1780: "During the Revolutionary War, American colonies begin to develop an independent communication system from the British with the use of a manual postmark showing the colony name and dates.",
	1800: "In the post-Revolutionary era, America begins to rebuild and standardize their independent postal system, using embossed postmarks.",
	1840: "The U.S.’s first official stamp issue in 1847 features Revolutionary leaders and patriotic symbols that mark stamps as emblems of national identity and resistance.",
	1850: "As tensions rise in America leading up to the Civil War, imagery of Revolutionary figures continues to grow in frequency as an attempt to build national identity and unity.",
	1860: "The Post Office begins to require stamps to be canceled to prohibit their reuse using a mark other than the town datestamp, leading to a variety of cancel marks that channeled the revolutionary spirit of the pre-Civil War era.",
	1870: "In the post-Civil War Reconstruction era, military figures begin to be featured alongside Revolutionary leaders and symbols of freedom and independence as the nation rebuilds.",
	1880: "America's rapid economic and industrial growth during the Gilded Age brings a celebration of Revolutionary figures and Civil War heroes as the nation remembers the tension that led to this moment of prosperity.",
	1890: "The 400th anniversary of Columbus's voyage brings with it the first commemorative stamp issue celebrating America's discovery and establishment as a nation, with stamps depicting popular figures from early history that laid the foundation for the country.",
}

var postal = map[int]string{
	1760: "First stamp proof is created by the British to tax American colonies",
	1840: "First official stamp release in the U.S.",
	1860: "Confederate states create a separate postal system leading up to the Civil War",
	1890: "First commemorative stamp release",
}

// Lookup returns the narrative for decade.
func Lookup(decade int) (Context, bool) {
	text, ok := historical[decade]
	if !ok {
		return Context{Decade: decade}, false
	}
	return Context{Decade: decade, Historical: text, Postal: postal[decade]}, true
}

// Decades lists the decades that have a narrative, ascending.
func Decades() []int {
	out := make([]int, 0, len(historical))
	for d := range historical {
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}
