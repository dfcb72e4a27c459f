package dberr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: books.isbn")))
	assert.True(t, IsUniqueViolation(errors.New(`duplicate key value violates unique constraint "borrowers_email_key"`)))
	assert.False(t, IsUniqueViolation(errors.New("no such table: books")))
	assert.False(t, IsUniqueViolation(nil))
}
