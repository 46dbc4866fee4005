package database

import (
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Dialect defines the interface for database-specific operations
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(config DialectConfig) string

	// RewriteQuery converts placeholder syntax if needed (e.g., ? to $1 for postgres)
	RewriteQuery(query string) string

	// ConfigureConnection applies any database-specific connection settings
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir returns the subdirectory name for migrations (e.g., "sqlite", "postgres")
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the SQL to create the migrations tracking table
	CreateMigrationsTableQuery() string

	// InsertIgnore returns an INSERT that silently skips rows violating a unique key
	InsertIgnore(table string, columns []string) string

	// Upsert returns an INSERT that overwrites updateColumns when key already exists
	Upsert(table string, key []string, columns []string, updateColumns []string) string

	// LockClause is appended to a SELECT to take a row lock inside a transaction
	LockClause() string
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

// rebind converts ? placeholders into the bind style of the driver
func rebind(driverName, query string) string {
	return sqlx.Rebind(sqlx.BindType(driverName), query)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func insertInto(verb, table string, columns []string) string {
	return verb + " " + table + " (" + strings.Join(columns, ", ") + ") VALUES (" + placeholders(len(columns)) + ")"
}

// excludedUpsert builds the ON CONFLICT form shared by SQLite and PostgreSQL
func excludedUpsert(table string, key, columns, updateColumns []string) string {
	sets := make([]string, len(updateColumns))
	for i, col := range updateColumns {
		sets[i] = col + " = excluded." + col
	}
	return insertInto("INSERT INTO", table, columns) +
		" ON CONFLICT (" + strings.Join(key, ", ") + ") DO UPDATE SET " + strings.Join(sets, ", ")
}
