package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeraldtan21/cts/internal/model"
)

// MinPasswordLength is the floor for every password the API accepts.
const MinPasswordLength = 8

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks the shape of an email and returns it trimmed and
// lower-cased.
func ValidateEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(normalized) {
		return "", fmt.Errorf("invalid email format: %s", email)
	}
	return normalized, nil
}

// ValidateRequired checks if a string field is not empty
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidatePassword enforces the minimum length. min values below
// MinPasswordLength are raised to it.
func ValidatePassword(password string, min int) error {
	if min < MinPasswordLength {
		min = MinPasswordLength
	}
	if len(password) < min {
		return fmt.Errorf("password must be at least %d characters long", min)
	}
	return nil
}

// ValidateDate parses a YYYY-MM-DD date.
func ValidateDate(fieldName, value string) (time.Time, error) {
	t, err := time.Parse(model.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a date in YYYY-MM-DD format", fieldName)
	}
	return t, nil
}

// ValidateUUID parses an id field.
func ValidateUUID(fieldName, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%s must be a valid UUID", fieldName)
	}
	return id, nil
}

func ValidateRole(role model.Role) error {
	if !role.Valid() {
		return fmt.Errorf("invalid role: %q", role)
	}
	return nil
}

func ValidateIdentityStatus(status model.IdentityStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status: %q", status)
	}
	return nil
}

func ValidateComputerStatus(status model.ComputerStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid computer status: %q", status)
	}
	return nil
}
