package util

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/railmadad/portal/internal/apperr"
)

// MinPasswordLength is the shortest password signup accepts.
const MinPasswordLength = 6

// ValidateEmail accepts a bare address; display-name forms like
// "Asha <asha@rail.in>" are rejected.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperr.Validation("Email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperr.Validation("Please enter a valid email address.")
	}
	return nil
}

// ValidatePassword enforces MinPasswordLength, counted in characters.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return apperr.Validation("Password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// RequireString rejects blank values, naming field in the message.
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.Validation("%s is required", field)
	}
	return nil
}
