// Package storage is the query gateway for the embedded store. It exposes
// three primitives: Exec for mutating statements, FetchOne for a single row,
// and FetchAll for ordered result sets.
//
// All three bind caller-supplied values exclusively through positional
// parameters. Never interpolate user input into the SQL text.
package storage

import (
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
)

// Exec runs a mutating statement and returns the number of affected rows.
func Exec(db *gorm.DB, query string, args ...interface{}) (int64, error) {
	res := db.Exec(query, args...)
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrStorage, res.Error)
	}
	return res.RowsAffected, nil
}

// FetchOne returns the first matching row scanned into T, or (nil, nil)
// when no row matches.
func FetchOne[T any](db *gorm.DB, query string, args ...interface{}) (*T, error) {
	var out T
	res := db.Raw(query, args...).Scan(&out)
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &out, nil
}

// FetchAll returns every matching row in statement order. The result is
// never nil.
func FetchAll[T any](db *gorm.DB, query string, args ...interface{}) ([]T, error) {
	out := []T{}
	res := db.Raw(query, args...).Scan(&out)
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, res.Error)
	}
	return out, nil
}

// UniqueViolation reports whether err is a unique-constraint failure and, if
// so, which "table.column" was violated. Callers use this to translate the
// storage-level constraint, the real uniqueness guarantee, into a conflict
// error; any pre-check query is only a fast path for a friendly message.
func UniqueViolation(err error) (string, bool) {
	var serr sqlite3.Error
	if !errors.As(err, &serr) {
		return "", false
	}
	if serr.ExtendedCode != sqlite3.ErrConstraintUnique && serr.ExtendedCode != sqlite3.ErrConstraintPrimaryKey {
		return "", false
	}
	// The driver message reads "UNIQUE constraint failed: users.username".
	msg := serr.Error()
	if i := strings.Index(msg, "failed: "); i >= 0 {
		target := msg[i+len("failed: "):]
		if j := strings.IndexByte(target, ','); j >= 0 {
			target = target[:j]
		}
		return strings.TrimSpace(target), true
	}
	return "", true
}
