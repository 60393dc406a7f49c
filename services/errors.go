package services

import (
	"errors"
	"sort"
	"strings"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

// FieldErrors is a field-scoped validation failure: one human-readable
// message per offending input field. It is an expected outcome, carried
// as a value the caller inspects, never a panic.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "invalid fields: " + strings.Join(fields, ", ")
}

const (
	MsgUsernameTaken = "This username is already taken"
	MsgEmailTaken    = "This email is already registered"
)

// MapUniqueViolation turns a storage-level uniqueness rejection on the
// users table into the same field-level messages the pre-check produces,
// so a lost check-then-create race still surfaces as ordinary validation
// feedback. Returns nil when err is not a uniqueness violation.
func MapUniqueViolation(err error) FieldErrors {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	isUnique := errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
	if !isUnique {
		return nil
	}

	fieldErrs := FieldErrors{}
	if strings.Contains(msg, "username") {
		fieldErrs["username"] = MsgUsernameTaken
	}
	if strings.Contains(msg, "email") {
		fieldErrs["email"] = MsgEmailTaken
	}
	if len(fieldErrs) == 0 {
		// violation on a column we cannot attribute
		fieldErrs["non_field"] = "An account with these details already exists"
	}
	return fieldErrs
}
