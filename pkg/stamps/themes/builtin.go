package themes

// Manual themes for decades the keyword dictionary does not cover.
const (
	ThemeBritishCrown     = "British Crown"
	ThemeManualPostmark   = "Manual postmark"
	ThemeEmbossedPostmark = "Embossed postmark"
)

// Builtin returns the stamp collection dictionary. Each call returns a fresh
// copy that callers may modify.
func Builtin() *Dictionary {
	d := &Dictionary{
		Normalization: make(map[string]string, len(builtinNormalization)),
		Priority:      append([]string(nil), builtinPriority...),
		Buckets:       make(map[string][]string, len(builtinBuckets)),
		BucketOrder:   append([]string(nil), builtinBucketOrder...),
	}
	for k, v := range builtinNormalization {
		d.Normalization[k] = v
	}
	for k, v := range builtinBuckets {
		d.Buckets[k] = append([]string(nil), v...)
	}
	return d
}

var builtinBucketOrder = []string{
	"Founding Figures",
	"Military Figures",
	"Independence",
	"Allegories",
	"Discovering America",
	"Postal System",
	"Colonization, Control",
	"War, Victory",
	"Government",
}

var builtinBuckets = map[string][]string{
	"Founding Figures": {
		"George Washington", "Benjamin Franklin", "Thomas Jefferson",
		"Alexander Hamilton", "James Madison", "Daniel Webster", "Henry Clay", "John Marshall",
	},
	"Military Figures": {
		"Ulysses Grant", "William Sherman", "James Garfield", "Andrew Jackson",
		"Abraham Lincoln", "Jefferson Davis", "Oliver Perry", "Zachary Taylor",
		"Edwin Stanton", "Winfield Scott",
	},
	"Independence": {
		"Liberty", "Justice", "Freedom", "Independence", "Peace",
		"Union", "Equality", "Democracy", "Eagle",
	},
	"Allegories": {
		"Clio", "Ceres", "Vesta", "Minerva",
	},
	"Discovering America": {
		"Christopher Columbus", "Queen Isabella", "Pilgrim", "Mayflower", "Centennial", "Exposition",
	},
	"Postal System": {
		"Post Office", "Messenger", "Newspaper", ThemeManualPostmark, ThemeEmbossedPostmark,
	},
	"Colonization, Control": {
		ThemeBritishCrown,
	},
	"War, Victory": {
		"Battle", "Soldier", "War", "Confederate", "Victory",
	},
	"Government": {
		"Constitution", "Congress", "Treasury", "State", "Navy", "Agriculture", "Tax", "Locomotive", "Adriatic",
	},
}

var builtinNormalization = map[string]string{
	// spelling variants
	"isabela":  "Queen Isabella",
	"isabella": "Queen Isabella",
	"columbus": "Christopher Columbus",

	"post office": "Post Office",
	"postmaster":  "Post Office",
	"postmark":    "Post Office",
	"envelope":    "Post Office",
	"envelopes":   "Post Office",

	"soldier":  "Soldier",
	"soldiers": "Soldier",

	"newspaper":  "Newspaper",
	"newspapers": "Newspaper",

	"washington": "George Washington",
	"davis":      "Jefferson Davis",
	"franklin":   "Benjamin Franklin",
	"jefferson":  "Thomas Jefferson",
	"hamilton":   "Alexander Hamilton",
	"madison":    "James Madison",

	"grant":    "Ulysses Grant",
	"sherman":  "William Sherman",
	"garfield": "James Garfield",

	"jackson": "Andrew Jackson",
	"lincoln": "Abraham Lincoln",
	"webster": "Daniel Webster",
	"clay":    "Henry Clay",

	"perry":    "Oliver Perry",
	"taylor":   "Zachary Taylor",
	"stanton":  "Edwin Stanton",
	"marshall": "John Marshall",
	"scott":    "Winfield Scott",
}

var builtinPriority = []string{
	"George Washington", "Benjamin Franklin", "Jefferson Davis", "Thomas Jefferson", "Alexander Hamilton", "James Madison",
	"Ulysses Grant", "William Sherman", "James Garfield", "Andrew Jackson", "Abraham Lincoln",
	"Daniel Webster", "Henry Clay", "Oliver Perry", "Zachary Taylor",
	"Edwin Stanton", "John Marshall", "Winfield Scott",
	"Liberty", "Justice", "Freedom", "Independence", "Victory", "Peace", "Union", "Equality", "Democracy", "Eagle",
	"Clio", "Ceres", "Vesta", "Minerva",
	"Christopher Columbus", "Queen Isabella", "Pilgrim", "Mayflower", "Centennial", "Exposition",
	"Post Office", "Messenger", "Newspaper",
	"Battle", "Soldier", "War", "Confederate",
	"Constitution", "Congress", "Treasury", "State", "Navy", "Agriculture", "Tax", "Locomotive", "Adriatic",
}
