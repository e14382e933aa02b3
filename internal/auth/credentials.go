package auth

import (
	"errors"
	"regexp"
)

// Registration validation failures. Each carries the exact reason reported to
// the client.
var (
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordNoUpper  = errors.New("password must contain at least one uppercase letter")
	ErrPasswordNoLower  = errors.New("password must contain at least one lowercase letter")
	ErrPasswordNoDigit  = errors.New("password must contain at least one number")
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	upperPattern = regexp.MustCompile(`[A-Z]`)
	lowerPattern = regexp.MustCompile(`[a-z]`)
	digitPattern = regexp.MustCompile(`\d`)
)

// ValidateEmail checks that the address has a local@domain.tld shape.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword applies the password strength rules in a fixed order and
// short-circuits on the first violation, so callers always see a single,
// specific reason. Length is checked before character classes.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	if !upperPattern.MatchString(password) {
		return ErrPasswordNoUpper
	}
	if !lowerPattern.MatchString(password) {
		return ErrPasswordNoLower
	}
	if !digitPattern.MatchString(password) {
		return ErrPasswordNoDigit
	}
	return nil
}
