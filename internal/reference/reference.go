// Package reference defines the core domain types for bibliography records.
package reference

// Record represents one parsed bibliography entry.
type Record struct {
	Type string `json:"type"`          // Entry type, lowercased (article, book, ...)
	Key  string `json:"key"`           // Citation key (grouping field for duplicates)
	DOI  string `json:"doi,omitempty"` // Digital Object Identifier, empty if absent
	Line int    `json:"line"`          // Line of the entry header (1-indexed)
}

// HasDOI reports whether the record carries a DOI value.
func (r Record) HasDOI() bool {
	return r.DOI != ""
}
