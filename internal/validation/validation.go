// Package validation checks client-supplied fields before they reach the engine.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"kidslearning/internal/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const (
	maxNameLength       = 50
	maxAvatarLength     = 32
	maxIdentifierLength = 128
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidateName checks a learner's display name
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if utf8.RuneCountInString(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return ValidationError{Field: "name", Message: fmt.Sprintf("name must be at most %d characters", maxNameLength)}
	}
	return nil
}

// ValidateAvatar allows an empty avatar or a short emoji/label
func ValidateAvatar(avatar string) error {
	if utf8.RuneCountInString(avatar) > maxAvatarLength {
		return ValidationError{Field: "avatar", Message: fmt.Sprintf("avatar must be at most %d characters", maxAvatarLength)}
	}
	return nil
}

// ValidateGrade checks a grade label
func ValidateGrade(grade models.Grade) error {
	if grade == "" {
		return ValidationError{Field: "grade", Message: "grade is required"}
	}
	if !grade.Valid() {
		return ValidationError{Field: "grade", Message: fmt.Sprintf("unknown grade %q", grade)}
	}
	return nil
}

// ValidateSubject checks a subject label
func ValidateSubject(subject models.Subject) error {
	if subject == "" {
		return ValidationError{Field: "subject", Message: "subject is required"}
	}
	if !subject.Valid() {
		return ValidationError{Field: "subject", Message: fmt.Sprintf("unknown subject %q", subject)}
	}
	return nil
}

// ValidateIdentifier checks an activity or achievement id
func ValidateIdentifier(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return ValidationError{Field: field, Message: field + " is required"}
	}
	if len(id) > maxIdentifierLength {
		return ValidationError{Field: field, Message: fmt.Sprintf("%s must be at most %d characters", field, maxIdentifierLength)}
	}
	if strings.ContainsAny(id, " \t\r\n") {
		return ValidationError{Field: field, Message: field + " must not contain whitespace"}
	}
	return nil
}

// ValidatePasscode checks that a passcode was supplied
func ValidatePasscode(passcode string) error {
	if strings.TrimSpace(passcode) == "" {
		return ValidationError{Field: "passcode", Message: "passcode is required"}
	}
	return nil
}
