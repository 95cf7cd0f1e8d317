// Package session implements the client and server state machines for
// GetFiles, Upload, Download, and Delete (§4.8), bridging the crypto and
// transport layers to a user-supplied progress callback (§5, §6).
package session

import "errors"

// Kind is the error taxonomy shared by both sides (§7).
type Kind int

const (
	// NoConnection: socket build or I/O failed during setup or transport.
	NoConnection Kind = iota
	// BadRequest: protocol-level mismatch — server replied CommFail, or
	// an id failed to parse.
	BadRequest
	// ServerError: server-side filesystem/record failure (FSFail).
	ServerError
	// BadFile: client-side file I/O, encoding, or integrity failure,
	// including an RDH hash mismatch on decrypt.
	BadFile
)

func (k Kind) String() string {
	switch k {
	case NoConnection:
		return "NoConnection"
	case BadRequest:
		return "BadRequest"
	case ServerError:
		return "ServerError"
	case BadFile:
		return "BadFile"
	default:
		return "Unknown"
	}
}

// Error wraps a Kind with its underlying cause, the way
// *ntag424.AuthError pairs a step label with a cause.
type Error struct {
	Kind  Kind
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "session error"
	}
	if e.Cause != nil {
		return e.Kind.String() + ": " + e.Cause.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Wrap builds an *Error of the given kind.
func Wrap(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// ClassifyError extracts the Kind from err, if it is (or wraps) a
// *session.Error.
func ClassifyError(err error) (kind Kind, ok bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}
