package main

import (
	"fmt"
	"os"

	"github.com/matsen/bibdup/internal/reference"
	"github.com/matsen/bibdup/internal/storage"
	"github.com/spf13/cobra"
)

var getByDOI bool

func init() {
	getCmd.Flags().BoolVar(&getByDOI, "doi", false, "Look up by exact DOI instead of citation key")
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get indexed entries by citation key",
	Long: `Get every indexed entry with the given citation key, in source order.

Run 'bibdup index <file>' first to build the index.

Examples:
  bibdup get Smith2026-ab
  bibdup get --doi 10.1234/abc`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

// GetResult is the response for the get command.
type GetResult struct {
	Source  string             `json:"source"`
	Records []reference.Record `json:"records"`
}

func runGet(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	dbPath := cfg.ResolveDBPath()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		exitWithError(ExitConfigError, "index not found at %s (run 'bibdup index <file>' first)", dbPath)
	}

	db, err := storage.OpenDB(dbPath)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	defer db.Close()

	info, err := db.Info()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if info == nil {
		exitWithError(ExitConfigError, "index at %s is empty (run 'bibdup index <file>' first)", dbPath)
	}

	query := args[0]
	var records []reference.Record
	if getByDOI {
		records, err = db.FindByDOI(query)
	} else {
		records, err = db.GetByKey(query)
	}
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if len(records) == 0 {
		exitWithError(ExitError, "no entries found: %s", query)
	}

	if humanOutput {
		fmt.Printf("%d entries in %s\n\n", len(records), info.Source)
		for _, r := range records {
			fmt.Println(formatRecord(r))
		}
	} else {
		outputJSON(GetResult{
			Source:  info.Source,
			Records: records,
		})
	}

	return nil
}
