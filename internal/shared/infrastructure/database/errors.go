package database

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNoRows is returned when a query expected to return a row returns none.
var ErrNoRows = errors.New("no rows in result set")

const (
	pgUniqueViolation     = "23505"
	sqliteConstraint      = 19   // SQLITE_CONSTRAINT
	sqliteUniqueViolation = 2067 // SQLITE_CONSTRAINT_UNIQUE
)

// IsNoRows returns true if the error indicates no rows were found.
// This handles both pgx.ErrNoRows and sql.ErrNoRows.
func IsNoRows(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, pgx.ErrNoRows) ||
		errors.Is(err, sql.ErrNoRows) ||
		errors.Is(err, ErrNoRows)
}

// IsUniqueViolation reports whether err is a UNIQUE constraint failure from
// either driver. Primary key conflicts on SQLite are not included.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var coded interface{ Code() int }
	if errors.As(err, &coded) {
		switch coded.Code() {
		case sqliteUniqueViolation:
			return true
		case sqliteConstraint:
			return strings.Contains(err.Error(), "UNIQUE constraint failed")
		}
	}
	return false
}
