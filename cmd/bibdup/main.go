// Package main provides the bibdup CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/matsen/bibdup/internal/config"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// verbose enables diagnostics on stderr
var verbose bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bibdup",
	Short: "Find duplicate entries in BibTeX bibliographies",
	Long: `bibdup finds duplicate entries in a BibTeX bibliography.

Entries are duplicates when they share a citation key and do not carry two
different DOIs. All commands output JSON by default for easy integration
with scripts and other tools.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadEnvironment,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print diagnostics to stderr")
	rootCmd.Version = Version
}

// loadEnvironment reads .env and applies config defaults not overridden by flags.
func loadEnvironment(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg := mustLoadConfig()
	if cfg.Human && !cmd.Flags().Changed("human") {
		humanOutput = true
	}
	return nil
}

// mustLoadConfig returns the global config, or exits with ExitConfigError.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return cfg
}
