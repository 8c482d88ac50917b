package store

import "errors"

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")

	// ErrInit means the database could not be opened or migrated. The session
	// cannot continue.
	ErrInit = errors.New("store unavailable")

	// ErrOperation is matched by every *OpError: a single read or write failed
	// and the caller may retry.
	ErrOperation = errors.New("store operation failed")
)

// ValidationError reports a rejected input field. Nothing is persisted.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Msg
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error { return e.Err }

func (e *OpError) Is(target error) bool {
	return target == ErrOperation
}

func opErr(op string, err error) error {
	return &OpError{Op: op, Err: err}
}
