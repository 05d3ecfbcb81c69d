package store

import (
	"errors"
	"fmt"
)

// Kind classifies store failures that callers are expected to branch on.
type Kind int

const (
	// KindUnknown is any backend failure (I/O, corruption, closed database).
	KindUnknown Kind = iota
	// KindNotFound means the addressed record does not exist.
	KindNotFound
	// KindAlreadyExists means a uniqueness constraint rejected the write.
	KindAlreadyExists
	// KindInvalidInput means the record could not be stored as given.
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindAlreadyExists:
		return "already exists"
	case KindInvalidInput:
		return "invalid input"
	default:
		return "store failure"
	}
}

// Error is a classified store error. Entity and Key identify the record involved, when known.
type Error struct {
	Kind   Kind
	Entity string
	Key    string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Entity != "" {
		msg = e.Entity + " " + msg
	}
	if e.Key != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Key)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so errors.Is(err, ErrNotFound) works
// regardless of entity or key.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinel errors.
var (
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrAlreadyExists = &Error{Kind: KindAlreadyExists}
	ErrInvalidInput  = &Error{Kind: KindInvalidInput}
)

// NotFound reports a missing record.
func NotFound(entity, key string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, Key: key}
}

// AlreadyExists reports a uniqueness violation.
func AlreadyExists(entity, key string) *Error {
	return &Error{Kind: KindAlreadyExists, Entity: entity, Key: key}
}

// InvalidInput reports a record the store refused to encode or write.
func InvalidInput(entity string, err error) *Error {
	return &Error{Kind: KindInvalidInput, Entity: entity, Err: err}
}
