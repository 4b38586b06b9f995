package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the snapshot database
	DefaultDatabasePath = "./bookshelf.db"
)
