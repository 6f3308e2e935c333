package kitchen

import (
	"errors"
	"fmt"
	"strings"

	"thallipoli/internal/store"
)

// ErrorKind classifies why a kitchen operation failed
type ErrorKind string

const (
	KindNotFound          ErrorKind = "not_found"
	KindOutOfStock        ErrorKind = "out_of_stock"
	KindInsufficientFunds ErrorKind = "insufficient_funds"
	KindInvalidInput      ErrorKind = "invalid_input"
	// KindInternal marks a checkout line that failed in the store
	KindInternal          ErrorKind = "internal"
)

// Error is returned by every failed engine mutation. Message is meant to
// be shown to people as is.
type Error struct {
	Kind    ErrorKind
	Message string
	// Missing lists the ingredient names that blocked a sale
	Missing []string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a kitchen error, or "" for anything else
func KindOf(err error) ErrorKind {
	var kerr *Error
	if errors.As(err, &kerr) {
		return kerr.Kind
	}
	return ""
}

func invalidInput(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func outOfStock(dish string, missing []string) *Error {
	return &Error{
		Kind:    KindOutOfStock,
		Message: fmt.Sprintf("Insufficient stock for %s. Missing: %s", dish, strings.Join(missing, ", ")),
		Missing: missing,
	}
}

// lookupErr turns a store miss into a NotFound error and wraps anything else
func lookupErr(err error, format string, args ...interface{}) error {
	if errors.Is(err, store.ErrNotFound) {
		return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...), Err: err}
	}
	return fmt.Errorf("store: %w", err)
}
