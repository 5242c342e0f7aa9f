// Package errs defines the error kinds reported by repository operations.
//
// Every failure that a user can trigger is an *Error carrying one of the
// kinds below and the message that should be shown verbatim. Callers test
// the kind with errors.Is.
package errs

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrAmbiguousReference = errors.New("ambiguous reference")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrUntrackedOverwrite = errors.New("untracked file would be overwritten")
)

// Error is a user-facing failure of a repository operation.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

// New returns an *Error of the given kind.
func New(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func NotFound(msg string) error     { return New(ErrNotFound, msg) }
func Precondition(msg string) error { return New(ErrPreconditionFailed, msg) }

// UntrackedOverwrite is returned when a checkout, reset or merge would
// clobber a file the current commit does not track.
func UntrackedOverwrite() error {
	return New(ErrUntrackedOverwrite,
		"There is an untracked file in the way; delete it, or add and commit it first.")
}

// Message returns the user-facing message of err if it is an *Error.
func Message(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg, true
	}
	return "", false
}
