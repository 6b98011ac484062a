package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/matsen/bibdup/internal/detector"
	"github.com/matsen/bibdup/internal/reference"
	"github.com/spf13/cobra"
)

var detectFailOnDuplicates bool

func init() {
	detectCmd.Flags().BoolVar(&detectFailOnDuplicates, "fail-on-duplicates", false, "Exit with code 4 when duplicates are found")
	rootCmd.AddCommand(detectCmd)
}

var detectCmd = &cobra.Command{
	Use:   "detect [file|-]",
	Short: "Report duplicate entries in a BibTeX file",
	Long: `Report entries that duplicate an earlier entry with the same citation key.

A later entry is a duplicate of the first entry with its key unless both
carry a DOI and the DOIs differ. Reads stdin when no file is given.

Examples:
  bibdup detect refs.bib
  cat refs.bib | bibdup detect --human`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDetect,
}

// DetectResult is the response for the detect command.
type DetectResult struct {
	Status     string             `json:"status"`
	Source     string             `json:"source"`
	Summary    detector.Summary   `json:"summary"`
	Duplicates []reference.Record `json:"duplicates"`
	Groups     []detector.Group   `json:"groups"` // Keys used by more than one entry
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	source := inputSource(args)

	records, err := readRecords(source, os.Stdin)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	logVerbose("parsed %d records from %s", len(records), source)

	result, err := buildDetectResult(source, records)
	if err != nil {
		if errors.Is(err, detector.ErrInsufficientInput) {
			exitWithError(ExitDataError, "%v", err)
		}
		exitWithError(ExitError, "detecting duplicates: %v", err)
	}

	if humanOutput {
		printDetectHuman(result)
	} else {
		outputJSON(result)
	}

	if (detectFailOnDuplicates || cfg.FailOnDuplicates) && len(result.Duplicates) > 0 {
		os.Exit(ExitDuplicatesFound)
	}
	return nil
}

// buildDetectResult classifies records and keeps only groups with repeated keys.
func buildDetectResult(source string, records []reference.Record) (DetectResult, error) {
	groups, err := detector.Classify(records)
	if err != nil {
		return DetectResult{}, err
	}

	repeated := []detector.Group{}
	for _, g := range groups {
		if len(g.Members) > 1 {
			repeated = append(repeated, g)
		}
	}

	duplicates := detector.Duplicates(groups)
	status := "ok"
	if len(duplicates) > 0 {
		status = "duplicates"
	}

	return DetectResult{
		Status:     status,
		Source:     source,
		Summary:    detector.Summarize(groups),
		Duplicates: duplicates,
		Groups:     repeated,
	}, nil
}

func printDetectHuman(result DetectResult) {
	s := result.Summary
	if len(result.Duplicates) == 0 {
		fmt.Printf("Duplicate check: OK\n\n%d records checked (%d keys)\n", s.Records, s.Keys)
		if s.Distinct > 0 {
			fmt.Printf("%d entries share a key but have a different DOI\n", s.Distinct)
		}
		return
	}

	fmt.Printf("Duplicate check: %d duplicates found\n\n", s.Duplicates)
	for _, g := range result.Groups {
		rep := g.Representative
		fmt.Printf("  %s (line %d)\n", g.Key, rep.Line)
		for _, m := range g.Duplicates {
			fmt.Printf("    [DUP]  line %d (%s)\n", m.Record.Line, m.Reason)
		}
		for _, r := range g.Distinct {
			fmt.Printf("    [DIFF] line %d: doi %s differs from %s\n", r.Line, r.DOI, rep.DOI)
		}
		fmt.Println()
	}
	fmt.Printf("%d records checked (%d keys)\n", s.Records, s.Keys)
}
