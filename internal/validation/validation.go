// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Password length bounds.
const (
	PasswordMinLength = 8
	PasswordMaxLength = 26
)

var (
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	specialRegex = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?~` + "`" + `]`)
)

// Required fails when the trimmed value is empty.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// Length checks the trimmed value's length in characters. max <= 0 means unbounded.
func Length(field, value string, min, max int) error {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n == 0 && min > 0 {
		return fmt.Errorf("%s is required", field)
	}
	if n < min {
		return fmt.Errorf("%s must be at least %d characters long", field, min)
	}
	if max > 0 && n > max {
		return fmt.Errorf("%s must not exceed %d characters", field, max)
	}
	return nil
}

// ValidatePassword checks if a password meets the strength rules
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	n := utf8.RuneCountInString(password)
	if n < PasswordMinLength {
		return fmt.Errorf("password must be at least %d characters long", PasswordMinLength)
	}
	if n > PasswordMaxLength {
		return fmt.Errorf("password must not exceed %d characters", PasswordMaxLength)
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return fmt.Errorf("password must contain at least one digit")
	}
	if !specialRegex.MatchString(password) {
		return fmt.Errorf("password must contain at least one special character (!@#$%%^&*)")
	}

	return nil
}

// NormalizeUsername trims and lower-cases a username the way it is stored.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	return Length("username", username, 2, 100)
}

// NormalizeEmail trims an email address.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// ValidateEmail checks length and basic email format
func ValidateEmail(email string) error {
	if err := Length("email", email, 5, 100); err != nil {
		return err
	}
	if !emailRegex.MatchString(strings.TrimSpace(email)) {
		return fmt.Errorf("email must be a valid email")
	}
	return nil
}

// ValidatePostTitle checks a post title.
func ValidatePostTitle(title string) error {
	return Length("title", title, 2, 100)
}

// ValidatePostDescription checks a post description.
func ValidatePostDescription(description string) error {
	return Length("description", description, 10, 0)
}

// ValidateCategory checks a post category or a category title.
func ValidateCategory(field, category string) error {
	return Length(field, category, 1, 100)
}

// First returns the first non-nil error.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
