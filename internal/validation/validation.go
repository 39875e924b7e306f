// Package validation contains input validation shared by the service
// layer. All failures are *validation.Error so handlers can map them to
// 400 responses and echo the message safely.
package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Error marks a failure caused by bad input rather than by the system
type Error struct {
	msg string
}

func (e *Error) Error() string {
	return e.msg
}

// NewError creates a validation error
func NewError(format string, args ...any) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// ValidateRequired checks that a field is not empty
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return NewError("%s is required", fieldName)
	}
	return nil
}

// ValidateMinLength checks the minimum length of a string
func ValidateMinLength(value string, minLength int, fieldName string) error {
	if utf8.RuneCountInString(value) < minLength {
		return NewError("%s must be at least %d characters long", fieldName, minLength)
	}
	return nil
}

// ValidateMaxLength checks the maximum length of a string
func ValidateMaxLength(value string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(value) > maxLength {
		return NewError("%s must be at most %d characters long", fieldName, maxLength)
	}
	return nil
}

// ValidateUUID checks that a string is a valid UUID
func ValidateUUID(value, fieldName string) error {
	if _, err := uuid.Parse(value); err != nil {
		return NewError("%s must be a valid UUID", fieldName)
	}
	return nil
}

// ValidateEmail performs a basic email format check
func ValidateEmail(email string) error {
	if !strings.Contains(email, "@") {
		return NewError("email must have a valid format")
	}
	return nil
}

// ValidateFutureDate checks that a date is strictly in the future
func ValidateFutureDate(date time.Time, fieldName string) error {
	if !date.After(time.Now()) {
		return NewError("%s must be in the future", fieldName)
	}
	return nil
}

// IssueValidation contains issue-specific validations
type IssueValidation struct{}

// ValidateTitle validates an issue title
func (v IssueValidation) ValidateTitle(title string) error {
	if err := ValidateRequired(title, "title"); err != nil {
		return err
	}
	return ValidateMaxLength(title, 200, "title")
}

// ValidateDescription validates an issue description
func (v IssueValidation) ValidateDescription(description string) error {
	if err := ValidateRequired(description, "description"); err != nil {
		return err
	}
	return ValidateMaxLength(description, 5000, "description")
}

// EventValidation contains event-specific validations
type EventValidation struct{}

// ValidateTitle validates an event title
func (v EventValidation) ValidateTitle(title string) error {
	if err := ValidateRequired(title, "title"); err != nil {
		return err
	}
	return ValidateMaxLength(title, 200, "title")
}

// ValidateEventDate validates that an event date is set and in the future
func (v EventValidation) ValidateEventDate(date time.Time) error {
	if date.IsZero() {
		return NewError("event_date is required")
	}
	return ValidateFutureDate(date, "event_date")
}
