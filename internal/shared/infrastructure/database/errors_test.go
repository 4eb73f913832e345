package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

type codedError struct {
	code int
	msg  string
}

func (e *codedError) Error() string { return e.msg }
func (e *codedError) Code() int     { return e.code }

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, true},
		{"postgres wrapped", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"postgres foreign key", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite extended code", &codedError{code: 2067, msg: "constraint failed"}, true},
		{"sqlite primary code", &codedError{code: 19, msg: "UNIQUE constraint failed: users.email"}, true},
		{"sqlite not null", &codedError{code: 19, msg: "NOT NULL constraint failed: users.name"}, false},
		{"sqlite busy", &codedError{code: 5, msg: "database is locked"}, false},
		{"plain", errors.New("UNIQUE constraint failed"), false},
		{"no rows", sql.ErrNoRows, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}
