package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a failed request
type Kind int

const (
	// KindTransport covers unreachable hosts, timeouts and unreadable responses
	KindTransport Kind = iota
	// KindApplication is a well-formed failure envelope from the server
	KindApplication
	// KindStale means the referenced post no longer exists server-side
	KindStale
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindApplication:
		return "application"
	case KindStale:
		return "stale"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// TransportMessage is shown when the server could not be reached
const TransportMessage = "Couldn't reach The Kratos Hub. Check your connection and try again."

// RequestError is returned by every failed gateway call. Message is safe to
// show to the user.
type RequestError struct {
	Kind    Kind
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s request failed: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s request failed: %s", e.Kind, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the same request may succeed
func (e *RequestError) Retryable() bool {
	return e.Kind == KindTransport
}

// AsRequestError unwraps err into a *RequestError
func AsRequestError(err error) (*RequestError, bool) {
	var re *RequestError
	ok := errors.As(err, &re)
	return re, ok
}

func transportError(err error) *RequestError {
	return &RequestError{Kind: KindTransport, Message: TransportMessage, Err: err}
}
