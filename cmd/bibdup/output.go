package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matsen/bibdup/internal/reference"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// logVerbose writes a diagnostic line to stderr when --verbose is set.
func logVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// formatRecord formats a record as a single human-readable line.
func formatRecord(r reference.Record) string {
	doi := r.DOI
	if doi == "" {
		doi = "(no doi)"
	}
	return fmt.Sprintf("%-6d %-30s %-14s %s", r.Line, r.Key, r.Type, doi)
}

// nonNilRecords returns an empty slice for nil so JSON shows [] instead of null.
func nonNilRecords(records []reference.Record) []reference.Record {
	if records == nil {
		return []reference.Record{}
	}
	return records
}
