package model

import (
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
)

// Kind classifies ledger failures.
type Kind string

const (
	KindValidation      Kind = "ValidationError"
	KindAccountNotFound Kind = "AccountNotFound"
	KindEntityNotFound  Kind = "EntityNotFound"
	KindPersistence     Kind = "PersistenceFailure"
	KindConflict        Kind = "ConflictDetected"
)

// Sentinels for errors.Is. An *Error matches the sentinel of its Kind.
var (
	ErrValidation      = errors.New(string(KindValidation))
	ErrAccountNotFound = errors.New(string(KindAccountNotFound))
	ErrEntityNotFound  = errors.New(string(KindEntityNotFound))
	ErrPersistence     = errors.New(string(KindPersistence))
	ErrConflict        = errors.New(string(KindConflict))
)

// Error is a structured ledger error.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Kind) + ": " + e.Message
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrAccountNotFound:
		return e.Kind == KindAccountNotFound
	case ErrEntityNotFound:
		// a missing account is also a missing entity
		return e.Kind == KindEntityNotFound || e.Kind == KindAccountNotFound
	case ErrPersistence:
		return e.Kind == KindPersistence
	case ErrConflict:
		return e.Kind == KindConflict
	}
	return false
}

func NewValidationError(field, message string) error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func NewConflictError(field, message string) error {
	return &Error{Kind: KindConflict, Field: field, Message: message}
}

// NotFound builds the not-found error for an entity. Accounts get their own
// kind so callers can tell a dangling account reference apart.
func NotFound(entity string, id uuid.UUID) error {
	kind := KindEntityNotFound
	if entity == "account" {
		kind = KindAccountNotFound
	}
	return &Error{Kind: kind, Field: entity, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// Persistence wraps an underlying storage failure. Errors that already carry
// a Kind are returned unchanged.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var kinded *Error
	if errors.As(err, &kinded) {
		return err
	}
	return &Error{Kind: KindPersistence, Message: op, Err: err}
}

// KindOf returns the Kind carried by err, or "" when err is not a ledger error.
func KindOf(err error) Kind {
	var kinded *Error
	if errors.As(err, &kinded) {
		return kinded.Kind
	}
	return ""
}
