package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrorKind is the closed set of failure classes returned by the services.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindValidation        ErrorKind = "VALIDATION"
	KindInvalidState      ErrorKind = "INVALID_STATE"
	KindInvalidTransition ErrorKind = "INVALID_TRANSITION"
	KindCapacity          ErrorKind = "CAPACITY"
	KindConflict          ErrorKind = "CONFLICT"
	KindPrecondition      ErrorKind = "PRECONDITION"
)

// Error carries the kind, a human message and the offending entity.
type Error struct {
	Kind     ErrorKind `json:"kind"`
	Message  string    `json:"message"`
	Entity   string    `json:"entity,omitempty"`
	EntityID uint      `json:"entity_id,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, entity string, id uint, format string, args ...interface{}) *Error {
	return &Error{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Entity:   entity,
		EntityID: id,
	}
}

func notFound(entity string, id uint) *Error {
	return newError(KindNotFound, entity, id, "%s %d not found", entity, id)
}

func validation(entity string, format string, args ...interface{}) *Error {
	return newError(KindValidation, entity, 0, format, args...)
}

// KindOf returns the kind of a service error, or "" for anything else.
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// lookupErr translates a gorm lookup failure into NOT_FOUND, wrapping
// anything else as a storage error.
func lookupErr(err error, entity string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity, id)
	}
	return fmt.Errorf("failed to load %s %d: %w", entity, id, err)
}

// isUniqueViolation matches the duplicate-key errors of sqlite, mysql and
// postgres without importing every driver's error type.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}
