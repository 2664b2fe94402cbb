package common

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

// account ids double as storage key prefixes
var accountIDRegex = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,64}$`)

func ValidateEmail(email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return NewInvalidInputError("email is required")
	}
	if !emailRegex.MatchString(email) {
		return NewInvalidInputError("invalid email format")
	}
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidatePassword(password string) error {
	if len(password) < 6 {
		return NewInvalidInputError("password must be at least 6 characters long")
	}
	if len(password) > 100 {
		return NewInvalidInputError("password must be at most 100 characters long")
	}
	return nil
}

func ValidateRole(role string) error {
	if !Role(role).IsValid() {
		return NewInvalidInputError("role must be doctor or patient")
	}
	return nil
}

func ValidateDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return NewInvalidInputError("full name is required")
	}
	if utf8.RuneCountInString(name) > 100 {
		return NewInvalidInputError("full name must be at most 100 characters")
	}
	return nil
}

func ValidateAccountID(field, id string) error {
	if id == "" {
		return NewInvalidInputError(field + " is required")
	}
	if !accountIDRegex.MatchString(id) {
		return NewInvalidInputError(field + " is not a valid account id")
	}
	return nil
}
