package client

import "github.com/roadrunner-server/errors"

// Kind distinguishes the five situations an operation on the client engine
// can fail with. It is kept as a small Go enum on top of *errors.Error
// (rather than relying on string matching against Error()) so a caller can
// switch on it directly; the errors.Op chain still gives a readable
// message for logs.
type Kind int

const (
	// KindFrame: missing Content-Length, malformed header, non-integer length.
	// Recv does not return it: it clears the inbound buffer instead.
	KindFrame Kind = iota
	// KindDecode: body is not valid JSON, or the type discriminator is unknown.
	// Recv does not return it for inbound frames: it drops the frame instead.
	// Request-issuing operations return it when their arguments fail to
	// marshal.
	KindDecode
	// KindInvalidState: a request-issuing operation was called in a
	// disallowed state.
	KindInvalidState
	// KindUnsolicitedResponse: request_seq did not match any pending entry.
	// Note this Kind is informational only — it is surfaced through the
	// LogicalEvent stream (ResponseDelivery.Unsolicited), never returned as
	// a Go error, since an unmatched response is not itself a failure.
	KindUnsolicitedResponse
	// KindAdapterError: Response with success == false.
	KindAdapterError
)

func (k Kind) String() string {
	switch k {
	case KindFrame:
		return "FrameError"
	case KindDecode:
		return "DecodeError"
	case KindInvalidState:
		return "InvalidState"
	case KindUnsolicitedResponse:
		return "UnsolicitedResponse"
	case KindAdapterError:
		return "AdapterError"
	default:
		return "Unknown"
	}
}

// Error wraps a roadrunner-server/errors op-tagged error with a Kind a
// caller can switch on.
type Error struct {
	Kind Kind
	err  error
}

func (e *Error) Error() string { return e.err.Error() }
func (e *Error) Unwrap() error { return e.err }

func newError(op errors.Op, kind Kind, msg string) *Error {
	return &Error{Kind: kind, err: errors.E(op, errors.Str(msg))}
}

func invalidStateError(op errors.Op, command string, current State) *Error {
	return newError(op, KindInvalidState, "command "+command+" not permitted in state "+current.String())
}
