// Package dberr classifies driver errors shared by the repository packages.
package dberr

import "strings"

// IsUniqueViolation reports whether the error came from a unique index.
// GORM surfaces driver errors as plain strings, so this is a substring check.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
