package syncerr

import (
	"errors"
	"fmt"
)

// Kind classifies a reconciliation failure.
type Kind string

const (
	// AuthenticationRequired means no access token was available.
	AuthenticationRequired Kind = "authentication_required"
	// Transport covers network-level failures, including timeouts.
	Transport Kind = "transport"
	// ServerRejected means the server answered with a non-2xx status.
	ServerRejected Kind = "server_rejected"
	// DecodeFailed means a response payload could not be decoded or validated.
	DecodeFailed Kind = "decode_failed"
	// InvalidIdentifier means a game id could not be parsed.
	InvalidIdentifier Kind = "invalid_identifier"
	// LocalRecordMissing means an upload target is no longer in the local store.
	LocalRecordMissing Kind = "local_record_missing"
	// Unknown is reported by KindOf for errors outside the taxonomy.
	Unknown Kind = "unknown"
)

// Error is a classified reconciliation error.
type Error struct {
	// Kind is the classification of the failure.
	Kind Kind
	// Op is the operation that failed (e.g. "request_plan", "download").
	Op string
	// ID is the game id involved, if any.
	ID string
	// Message is a human readable detail, e.g. the server-provided message.
	Message string
	// Status is the HTTP status code for ServerRejected errors.
	Status int
	// Err is the underlying cause.
	Err error
}

// New creates a classified error wrapping cause.
func New(kind Kind, op, id string, cause error) *Error {
	return &Error{Kind: kind, Op: op, ID: id, Err: cause}
}

// Newf creates a classified error with a formatted message and no underlying cause.
func Newf(kind Kind, op, id, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, ID: id, Message: fmt.Sprintf(format, args...)}
}

// Rejected creates a ServerRejected error carrying the HTTP status and server message.
func Rejected(op, id string, status int, message string) *Error {
	return &Error{Kind: ServerRejected, Op: op, ID: id, Status: status, Message: message}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.ID != "" {
		msg += " [" + e.ID + "]"
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
// It allows errors.Is(err, &syncerr.Error{Kind: syncerr.Transport}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of err, or Unknown if err is not classified.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return Unknown
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Retryable reports whether the next trigger may retry the failed operation.
// Only identifier problems are permanent for a given record.
func Retryable(err error) bool {
	switch KindOf(err) {
	case InvalidIdentifier:
		return false
	default:
		return err != nil
	}
}
