package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/matsen/bibdup/internal/bibtex"
	"github.com/matsen/bibdup/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index <file>",
	Short: "Rebuild the record index from a BibTeX file",
	Long: `Rebuild the SQLite record index from a BibTeX file.

The index lives at db_path from ~/.config/bibdup/config.yml, or at
$BIBDUP_DB when set. It is disposable and can be rebuilt at any time.

Example:
  bibdup index refs.bib`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

// IndexResult is the response for the index command.
type IndexResult struct {
	Status       string             `json:"status"`
	Path         string             `json:"path"`
	Records      int                `json:"records"`
	RepeatedKeys []storage.KeyCount `json:"repeated_keys"`
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	source := args[0]

	records, err := bibtex.ParseFile(source)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	logVerbose("parsed %d records from %s", len(records), source)

	dbPath := cfg.ResolveDBPath()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		exitWithError(ExitConfigError, "creating index directory: %v", err)
	}

	db, err := storage.OpenDB(dbPath)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	defer db.Close()

	count, err := db.RebuildFromRecords(source, records)
	if err != nil {
		exitWithError(ExitError, "rebuilding index: %v", err)
	}

	repeated, err := db.RepeatedKeys()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if repeated == nil {
		repeated = []storage.KeyCount{}
	}

	if humanOutput {
		fmt.Printf("Indexed %d records from %s\n", count, source)
		fmt.Printf("Index: %s\n", dbPath)
		if len(repeated) > 0 {
			fmt.Printf("\n%d keys used more than once:\n", len(repeated))
			for _, kc := range repeated {
				fmt.Printf("  %s (%d entries)\n", kc.Key, kc.Count)
			}
		}
	} else {
		outputJSON(IndexResult{
			Status:       "indexed",
			Path:         dbPath,
			Records:      count,
			RepeatedKeys: repeated,
		})
	}

	return nil
}
