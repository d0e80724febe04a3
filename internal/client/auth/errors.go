package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/atinyakov/MediaKeeper/internal/client/api"
)

// ErrAuthentication matches every *Error via errors.Is.
var ErrAuthentication = errors.New("authentication failed")

// Fallback messages shown when the server supplied none.
const (
	LoginFailedMessage        = "login failed"
	RegistrationFailedMessage = "registration failed"
)

// FailureKind classifies why an authentication call failed.
type FailureKind int

const (
	// ServerRejected means the server answered with a non-2xx status.
	ServerRejected FailureKind = iota + 1
	// Unreachable means no response was received.
	Unreachable
	// MalformedResponse means a 2xx response did not carry a valid identity.
	MalformedResponse
	// InvalidInput means the credentials were rejected before any request.
	InvalidInput
)

func (k FailureKind) String() string {
	switch k {
	case ServerRejected:
		return "server_rejected"
	case Unreachable:
		return "unreachable"
	case MalformedResponse:
		return "malformed_response"
	case InvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// Error is the single user-facing error kind returned by the gateway.
// Message is safe to show to the user; Kind, StatusCode and the wrapped
// cause are there for callers that need to tell failures apart.
type Error struct {
	Op         string
	Kind       FailureKind
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes every *Error match ErrAuthentication.
func (e *Error) Is(target error) bool {
	return target == ErrAuthentication
}

// failure is the outcome of classify before it is turned into an *Error.
type failure struct {
	kind       FailureKind
	message    string
	statusCode int
	cause      error
}

// classify inspects a transport result. It returns nil when resp is a 2xx
// response; body decoding is checked separately by the caller.
func classify(resp *api.Response, err error) *failure {
	switch {
	case err != nil && errors.Is(err, api.ErrBodyTooLarge):
		return &failure{kind: MalformedResponse, cause: err}
	case err != nil:
		return &failure{kind: Unreachable, cause: err}
	case !resp.OK():
		return &failure{
			kind:       ServerRejected,
			message:    api.ErrorMessage(resp.Body),
			statusCode: resp.StatusCode,
			cause:      fmt.Errorf("server responded %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}
	return nil
}

func (f *failure) toError(op, fallback string) *Error {
	msg := f.message
	if msg == "" {
		msg = fallback
	}
	return &Error{
		Op:         op,
		Kind:       f.kind,
		Message:    msg,
		StatusCode: f.statusCode,
		Err:        f.cause,
	}
}
