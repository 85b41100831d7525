package normalize

// Reason records why a record was kept or dropped.
type Reason int

const (
	Included Reason = iota
	ExcludedNoYear
	ExcludedNationality
	ExcludedKeyword
	ExcludedCutoff
	ExcludedNoTheme
	ExcludedNoThumbnail
	ExcludedDuplicate
)

var reasonNames = map[Reason]string{
	Included:            "included",
	ExcludedNoYear:      "no-year",
	ExcludedNationality: "nationality",
	ExcludedKeyword:     "title-keyword",
	ExcludedCutoff:      "cutoff",
	ExcludedNoTheme:     "no-theme",
	ExcludedNoThumbnail: "no-thumbnail",
	ExcludedDuplicate:   "duplicate",
}

func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return "unknown"
}

// Excluded reports whether r drops the record.
func (r Reason) Excluded() bool {
	return r != Included
}
