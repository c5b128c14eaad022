package postgresqlcache

// Common test constants shared across test files.
const (
	errNewWithPoolFailed   = "NewWithPool failed: %v"
	errCreateTableFailed   = "CreateTable failed: %v"
	queryDropTableIfExists = "DROP TABLE IF EXISTS "
)
