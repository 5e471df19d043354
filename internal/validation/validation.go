// Package validation provides input validation utilities
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinPasswordLength = 6
	// MaxPasswordBytes is bcrypt's input limit; longer passwords are rejected
	// rather than silently truncated.
	MaxPasswordBytes  = 72
	MaxUsernameLength = 64
	MaxEmailLength    = 254
	MaxAlbumTitle     = 200
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateUsername checks that a username is present and fits the column.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return errors.New("Username is required")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return fmt.Errorf("Username must not exceed %d characters", MaxUsernameLength)
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > MaxEmailLength {
		return fmt.Errorf("Email must not exceed %d characters", MaxEmailLength)
	}
	if !emailRegex.MatchString(email) {
		return errors.New("Invalid email")
	}
	return nil
}

// ValidatePassword enforces the minimum length and bcrypt's byte limit.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("Password must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("Password must not exceed %d bytes", MaxPasswordBytes)
	}
	return nil
}

// ValidateAlbumTitle rejects blank and oversized titles.
func ValidateAlbumTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return errors.New("Album title is required")
	}
	if utf8.RuneCountInString(title) > MaxAlbumTitle {
		return fmt.Errorf("Album title must not exceed %d characters", MaxAlbumTitle)
	}
	return nil
}
