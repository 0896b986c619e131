package analytics

import "errors"

var (
	// ErrTransport marks failures reaching the backend or reading its response.
	ErrTransport = errors.New("analytics: transport failure")
	// ErrMalformed marks envelopes that are not a usable success response.
	ErrMalformed = errors.New("analytics: malformed response")
)

// FallbackMessage is shown when a malformed response carries no message.
const FallbackMessage = "Failed to load analytics data or data is in an unexpected format."

// UnknownError names a transport failure with no description.
const UnknownError = "Unknown error"

// TransportError wraps the underlying network or I/O failure.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return ErrTransport.Error()
	}
	return ErrTransport.Error() + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Cause returns the description of the underlying failure, or UnknownError.
func (e *TransportError) Cause() string {
	if e.Err == nil || e.Err.Error() == "" {
		return UnknownError
	}
	return e.Err.Error()
}

// MalformedError is an envelope with a non-success status, a missing data
// container, or a payload that fails validation. Message is the
// server-supplied message, if any.
type MalformedError struct {
	Message string
	Err     error
}

func (e *MalformedError) Error() string {
	msg := ErrMalformed.Error()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedError) Unwrap() error { return e.Err }

func (e *MalformedError) Is(target error) bool { return target == ErrMalformed }
