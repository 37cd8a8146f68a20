package config

// Default paths
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./shelfserve.db"

	// DefaultLibraryDir is the default root directory of the e-book library
	DefaultLibraryDir = "./library"
)
