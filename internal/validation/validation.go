// Package validation holds the small input checks shared by controllers.
package validation

import (
	"regexp"
	"strconv"
)

// Shape check only: one @, a dot somewhere in the domain part, no whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail reports whether the address matches the name@domain.tld shape.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ParseQuantity parses a non-negative integer quantity from its string form.
// The second return value distinguishes "not a number" from "negative".
func ParseQuantity(raw string) (int, bool) {
	quantity, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return quantity, true
}

// ParsePage normalizes pagination parameters, falling back to the defaults
// for missing or unparsable values.
func ParsePage(pageRaw, pageSizeRaw string) (page, pageSize int) {
	page = 1
	pageSize = 10
	if parsed, err := strconv.Atoi(pageRaw); err == nil && parsed > 0 {
		page = parsed
	}
	if parsed, err := strconv.Atoi(pageSizeRaw); err == nil && parsed > 0 {
		pageSize = parsed
	}
	return page, pageSize
}
