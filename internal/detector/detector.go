package detector

import (
	"github.com/matsen/bibdup/internal/bibtex"
	"github.com/matsen/bibdup/internal/reference"
)

// Detect parses text and returns the records that duplicate an earlier
// record with the same key, in encounter order.
// Returns ErrInsufficientInput if text holds fewer than two records.
func Detect(text string) ([]reference.Record, error) {
	return DetectRecords(bibtex.Parse(text))
}

// DetectRecords runs duplicate detection on already-parsed records.
func DetectRecords(records []reference.Record) ([]reference.Record, error) {
	groups, err := Classify(records)
	if err != nil {
		return nil, err
	}
	return Duplicates(groups), nil
}

// Duplicates flattens the duplicate members of groups in group order.
// The result is never nil.
func Duplicates(groups []Group) []reference.Record {
	duplicates := []reference.Record{}
	for _, g := range groups {
		for _, m := range g.Duplicates {
			duplicates = append(duplicates, m.Record)
		}
	}
	return duplicates
}

// Classify groups records by key, in order of first appearance, and decides
// for every member after the first whether it duplicates the first.
//
// The first member stays the representative for the whole group; later
// members are never compared with each other.
func Classify(records []reference.Record) ([]Group, error) {
	if len(records) < MinRecords {
		return nil, &InsufficientInputError{Records: len(records)}
	}

	groups := groupByKey(records)
	for i := range groups {
		g := &groups[i]
		for _, candidate := range g.Members[1:] {
			if reason, ok := compare(g.Representative, candidate); ok {
				g.Duplicates = append(g.Duplicates, Match{Record: candidate, Reason: reason})
			} else {
				g.Distinct = append(g.Distinct, candidate)
			}
		}
	}
	return groups, nil
}

// Summarize counts records, keys, duplicates and distinct members across groups.
func Summarize(groups []Group) Summary {
	s := Summary{Keys: len(groups)}
	for _, g := range groups {
		s.Records += len(g.Members)
		s.Duplicates += len(g.Duplicates)
		s.Distinct += len(g.Distinct)
	}
	return s
}

// groupByKey partitions records by key, keeping first-seen order of both
// groups and members.
func groupByKey(records []reference.Record) []Group {
	var groups []Group
	index := make(map[string]int) // key -> position in groups

	for _, rec := range records {
		i, ok := index[rec.Key]
		if !ok {
			index[rec.Key] = len(groups)
			groups = append(groups, Group{
				Key:            rec.Key,
				Representative: rec,
				Duplicates:     []Match{},
				Distinct:       []reference.Record{},
			})
			i = len(groups) - 1
		}
		groups[i].Members = append(groups[i].Members, rec)
	}
	return groups
}

// compare decides whether candidate duplicates rep. Only two present,
// differing DOIs prove the records are different works.
func compare(rep, candidate reference.Record) (MatchReason, bool) {
	switch {
	case rep.HasDOI() && candidate.HasDOI():
		if rep.DOI != candidate.DOI {
			return "", false
		}
		return ReasonDOIMatch, true
	case rep.HasDOI() || candidate.HasDOI():
		return ReasonDOIMissing, true
	default:
		return ReasonNoDOI, true
	}
}
