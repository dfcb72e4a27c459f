package apperrors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypedErrors(t *testing.T) {
	validation := Validation("quantity %d is negative", -1)
	notFound := NotFound("book not found")
	conflict := Conflict("isbn already exists")

	assert.Equal(t, "quantity -1 is negative", validation.Error())

	assert.True(t, IsValidation(validation))
	assert.False(t, IsValidation(notFound))

	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(conflict))

	assert.True(t, IsConflict(conflict))
	assert.False(t, IsConflict(validation))
}

func TestPredicatesUnwrapWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("checkout failed: %w", NotFound("borrower not found"))

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsValidation(wrapped))
}
