package models

// OrgRow holds one organisation record from the input spreadsheet.
// The Manual fields are the human-curated annotations that get merged
// back into the final report next to the model's answers.
type OrgRow struct {
	Website        string
	ManualType     string
	ManualLocation string
}

// Result is the enrichment outcome for a single website URL, keyed by the
// model's output fields (Type, Location, Confidence) plus "url" and, when
// the call or parse failed, "exception". It stays a loose map on purpose:
// the model output has no enforced schema, and stale cache entries written
// by older versions must still load.
type Result map[string]any

// URL returns the website URL the result belongs to.
func (r Result) URL() string {
	s, _ := r["url"].(string)
	return s
}

// Exception returns the stored failure text, if this result records one.
func (r Result) Exception() (string, bool) {
	s, ok := r["exception"].(string)
	return s, ok
}

// Confidence returns the model-reported confidence score.
// ok is false for failed rows that never produced one.
func (r Result) Confidence() (float64, bool) {
	f, ok := r["Confidence"].(float64)
	return f, ok
}
