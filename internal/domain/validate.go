package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidEmail reports whether s is a syntactically valid email address.
func ValidEmail(s string) bool {
	return s != "" && validate.Var(s, "email") == nil
}

// textLen counts characters, not bytes, so accented input is measured the
// way people read it.
func textLen(s string) int {
	return utf8.RuneCountInString(s)
}

// optional returns nil for blank input and a pointer to the trimmed value otherwise.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
