package plate

import "strings"

// Record is the canonical decoded plate. Fields the parser could not
// extract stay empty; a record with every field empty is never handed to
// callers (Assemble reports ErrNoPlateDetected instead). The surrounding
// ledger uses FullText as the natural key for matching an open visit.
type Record struct {
	// Region is the place-name portion of the plate, e.g. a ward name.
	Region string `json:"region"`
	// Classification is the 1-3 digit vehicle class code.
	Classification string `json:"classification"`
	// Kana is the single syllabic character distinguishing use category.
	Kana string `json:"hiragana"`
	// Serial is the plate number in canonical "NN-NN" form.
	Serial string `json:"number"`
	// FullText is the four fields joined with single spaces and trimmed.
	FullText string `json:"full_text"`
}

// Empty reports whether no field was extracted. FullText is derived and
// does not count.
func (r Record) Empty() bool {
	return r.Region == "" && r.Classification == "" && r.Kana == "" && r.Serial == ""
}

// join produces the canonical FullText: single-space join of the four
// fields with runs collapsed and ends trimmed.
func (r Record) join() string {
	joined := strings.Join([]string{r.Region, r.Classification, r.Kana, r.Serial}, " ")
	for strings.Contains(joined, "  ") {
		joined = strings.ReplaceAll(joined, "  ", " ")
	}
	return strings.TrimSpace(joined)
}
