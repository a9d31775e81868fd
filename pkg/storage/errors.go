package storage

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is against any error returned by Client.
var (
	ErrConfiguration   = errors.New("configuration error")
	ErrAuthentication  = errors.New("authentication error")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrOperation       = errors.New("operation failed")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error is the single failure shape returned by every Client operation
type Error struct {
	// Operation that failed, e.g. "list"
	Op   string
	Kind error
	Msg  string
	// Underlying cause, may be nil
	Err error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(op string, kind error, msg string, cause error) *Error {
	return &Error{Op: op, Kind: kind, Msg: msg, Err: cause}
}

// normalize passes typed failures through and folds everything else into ErrOperation with the default message for op
func normalize(op, defaultMsg string, err error) error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return err
	}
	return newError(op, ErrOperation, defaultMsg, err)
}
