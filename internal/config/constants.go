package config

// Default paths for local data
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./library-ms.db"

	// DefaultTasksDatabasePath is the default path for the task queue database
	DefaultTasksDatabasePath = "./library-ms-tasks.db"

	// DefaultExportsDir is where temporary CSV report files are written
	DefaultExportsDir = "./exports"
)
