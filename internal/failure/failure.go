// Package failure defines the single structured error value surfaced to the
// user by every action of the agent client. Callers switch on Kind instead of
// matching message strings.
package failure

import "errors"

// Kind discriminates where a failure originated.
type Kind string

const (
	// KindValidation is a local input problem detected before any network call.
	KindValidation Kind = "validation"
	// KindRemote is a non-success HTTP status returned by the backend.
	KindRemote Kind = "remote"
	// KindTransport covers network errors and undecodable response bodies.
	KindTransport Kind = "transport"
)

// Error carries a display message together with its Kind. Status is the HTTP
// status code for remote failures and zero otherwise.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind) + " failure"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a local validation failure with the given message.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Remote returns a failure for a backend rejection.
func Remote(status int, msg string) *Error {
	return &Error{Kind: KindRemote, Status: status, Message: msg}
}

// Transport wraps err as a transport failure. The message is the cause's text.
func Transport(err error) *Error {
	return &Error{Kind: KindTransport, Message: err.Error(), Err: err}
}

// KindOf reports the Kind of err, or "" when err is not a *Error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// Is reports whether err is a failure of kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// MessageOf returns the display message carried by err, or fallback when err
// is not a *Error or carries an empty message.
func MessageOf(err error, fallback string) string {
	var fe *Error
	if errors.As(err, &fe) && fe.Message != "" {
		return fe.Message
	}
	return fallback
}
