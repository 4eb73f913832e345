package database

import (
	"strconv"
	"strings"
	"time"
)

// Driver represents a database backend type.
type Driver string

const (
	// DriverPostgres represents PostgreSQL database.
	DriverPostgres Driver = "postgres"
	// DriverSQLite represents SQLite database.
	DriverSQLite Driver = "sqlite"
)

// String returns the string representation of the driver.
func (d Driver) String() string {
	return string(d)
}

// DetectDriver parses a connection string and returns the driver type.
// Returns DriverSQLite for empty URLs to enable zero-config local mode.
func DetectDriver(url string) Driver {
	if url == "" {
		return DriverSQLite
	}

	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return DriverPostgres
	}

	if strings.HasPrefix(url, "sqlite://") ||
		strings.HasPrefix(url, "file:") ||
		strings.HasSuffix(url, ".db") ||
		strings.HasSuffix(url, ".sqlite") ||
		strings.HasSuffix(url, ".sqlite3") {
		return DriverSQLite
	}

	// Default to PostgreSQL for backward compatibility
	return DriverPostgres
}

// IsValid returns true if the driver is a known type.
func (d Driver) IsValid() bool {
	switch d {
	case DriverPostgres, DriverSQLite:
		return true
	default:
		return false
	}
}

// Rebind rewrites '?' placeholders into the driver's native form.
// Queries are written once with '?' and rebound for PostgreSQL.
func (d Driver) Rebind(query string) string {
	if d != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// TimeArg converts t into a query argument for the driver.
// SQLite stores fixed-width UTC text so that string comparison orders correctly.
func (d Driver) TimeArg(t time.Time) any {
	if d == DriverSQLite {
		return t.UTC().Format(TimeLayout)
	}
	return t.UTC()
}
