// Package detector classifies same-key bibliography records as duplicates.
package detector

import (
	"errors"
	"fmt"

	"github.com/matsen/bibdup/internal/reference"
)

// MinRecords is the smallest record count duplicate detection is defined for.
const MinRecords = 2

// ErrInsufficientInput is returned when fewer than MinRecords records are parsed.
var ErrInsufficientInput = errors.New("insufficient input for duplicate detection")

// InsufficientInputError reports how many records were found.
// It matches ErrInsufficientInput under errors.Is.
type InsufficientInputError struct {
	Records int
}

func (e *InsufficientInputError) Error() string {
	return fmt.Sprintf("%s: found %d record(s), need at least %d", ErrInsufficientInput, e.Records, MinRecords)
}

func (e *InsufficientInputError) Unwrap() error {
	return ErrInsufficientInput
}

// MatchReason explains why a record was classified as a duplicate.
type MatchReason string

const (
	ReasonDOIMatch   MatchReason = "doi_match"   // Both DOIs present and equal
	ReasonDOIMissing MatchReason = "doi_missing" // Exactly one side has a DOI
	ReasonNoDOI      MatchReason = "no_doi"      // Neither side has a DOI
)

// Match is a record classified as a duplicate of its group's representative.
type Match struct {
	Record reference.Record `json:"record"`
	Reason MatchReason      `json:"reason"`
}

// Group holds every record sharing one citation key, in source order.
type Group struct {
	Key            string             `json:"key"`
	Representative reference.Record   `json:"representative"`
	Members        []reference.Record `json:"members"`    // Representative first
	Duplicates     []Match            `json:"duplicates"` // Later members judged the same work
	Distinct       []reference.Record `json:"distinct"`   // Later members with a conflicting DOI
}

// HasDuplicates reports whether any member was classified as a duplicate.
func (g Group) HasDuplicates() bool {
	return len(g.Duplicates) > 0
}

// Summary counts the outcome of a classification run.
type Summary struct {
	Records    int `json:"records"`
	Keys       int `json:"keys"`
	Duplicates int `json:"duplicates"`
	Distinct   int `json:"distinct"`
}
