package main

// Exit codes
const (
	ExitSuccess         = 0 // Success
	ExitError           = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError     = 2 // Configuration error (unreadable config, index path)
	ExitDataError       = 3 // Data error (unreadable input, too few records)
	ExitDuplicatesFound = 4 // Duplicates found and --fail-on-duplicates set
)
