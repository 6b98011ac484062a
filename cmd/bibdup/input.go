package main

import (
	"io"

	"github.com/matsen/bibdup/internal/bibtex"
	"github.com/matsen/bibdup/internal/reference"
)

// stdinSource names standard input as an input argument.
const stdinSource = "-"

// inputSource returns the single input argument, defaulting to stdin.
func inputSource(args []string) string {
	if len(args) == 0 || args[0] == "" {
		return stdinSource
	}
	return args[0]
}

// readRecords parses the records of source, reading stdin when source is "-".
func readRecords(source string, stdin io.Reader) ([]reference.Record, error) {
	if source == stdinSource {
		return bibtex.ParseReader(stdin)
	}
	return bibtex.ParseFile(source)
}
