package model

import "errors"

// Error kinds. Match them with errors.Is; the HTTP layer maps them to status codes.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrNotFound            = errors.New("not found")
	ErrCopyFailed          = errors.New("copy failed")
	ErrAutomation          = errors.New("automation error")
	ErrTimeout             = errors.New("automation timeout")
	ErrDependencyMissing   = errors.New("automation dependency missing")
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrInternal            = errors.New("internal error")
)

// Error carries a user-facing message together with its kind.
// Error() returns Message verbatim so it can be sent to the extension as is.
type Error struct {
	Kind    error
	Message string
}

// NewError builds an *Error of the given kind.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }
