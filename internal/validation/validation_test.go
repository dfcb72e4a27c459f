package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"reader@example.com",
		"first.last@library.co.uk",
		"user+tag@domain.io",
	}
	for _, email := range valid {
		assert.True(t, IsValidEmail(email), email)
	}

	invalid := []string{
		"",
		"bad-email",
		"missing@tld",
		"@nobody.com",
		"spaces in@example.com",
		"double@@example.com",
	}
	for _, email := range invalid {
		assert.False(t, IsValidEmail(email), email)
	}
}

func TestParseQuantity(t *testing.T) {
	quantity, ok := ParseQuantity("5")
	assert.True(t, ok)
	assert.Equal(t, 5, quantity)

	quantity, ok = ParseQuantity("-3")
	assert.True(t, ok)
	assert.Equal(t, -3, quantity)

	_, ok = ParseQuantity("five")
	assert.False(t, ok)

	_, ok = ParseQuantity("")
	assert.False(t, ok)
}

func TestParsePage(t *testing.T) {
	page, pageSize := ParsePage("", "")
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, pageSize)

	page, pageSize = ParsePage("2", "5")
	assert.Equal(t, 2, page)
	assert.Equal(t, 5, pageSize)

	page, pageSize = ParsePage("0", "-1")
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, pageSize)

	page, pageSize = ParsePage("abc", "xyz")
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, pageSize)
}
