package db

import (
	"errors"
	"strings"

	pkgerrors "github.com/lawscheduling/lawscheduling-backend/pkg/errors"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint violation from
// Postgres or SQLite. A non-empty constraintName must also match.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil || !isUnique(err) {
		return false
	}
	return constraintName == "" || strings.Contains(constraintOf(err), constraintName)
}

func isUnique(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	if pg, ok := pkgerrors.PG(err); ok {
		return pg.Code == pgUniqueViolation
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}

func constraintOf(err error) string {
	if pg, ok := pkgerrors.PG(err); ok && pg.Constraint != "" {
		return pg.Constraint
	}
	return err.Error()
}
