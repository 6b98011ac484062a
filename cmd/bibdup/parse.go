package main

import (
	"fmt"
	"os"

	"github.com/matsen/bibdup/internal/reference"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "List the entries bibdup reads from a BibTeX file",
	Long: `List the entries read from a BibTeX file with their key, type and DOI.

Blocks that cannot be read as an entry are skipped, so this shows exactly
what duplicate detection will see. Reads stdin when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

// ParseResult is the response for the parse command.
type ParseResult struct {
	Source  string             `json:"source"`
	Count   int                `json:"count"`
	Records []reference.Record `json:"records"`
}

func runParse(cmd *cobra.Command, args []string) error {
	source := inputSource(args)

	records, err := readRecords(source, os.Stdin)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	logVerbose("parsed %d records from %s", len(records), source)

	if humanOutput {
		if len(records) == 0 {
			fmt.Println("No entries found")
			return nil
		}
		fmt.Printf("%-6s %-30s %-14s %s\n", "LINE", "KEY", "TYPE", "DOI")
		for _, r := range records {
			fmt.Println(formatRecord(r))
		}
		fmt.Printf("\n%d entries\n", len(records))
	} else {
		outputJSON(ParseResult{
			Source:  source,
			Count:   len(records),
			Records: nonNilRecords(records),
		})
	}

	return nil
}
