package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Outcome is the classified result of one transport call.
// It is either Success or *Failure; use a type switch to handle both.
type Outcome interface {
	outcome()
}

// emptyBody is the body reported for successful calls that returned nothing.
const emptyBody = "true"

// Success is the outcome of a call that completed with a 2xx status.
type Success struct {
	// Body is the raw response body, or "true" when the response had none.
	Body []byte
}

// NewSuccess builds a Success, substituting "true" for an empty body.
func NewSuccess(body []byte) Success {
	if len(body) == 0 {
		body = []byte(emptyBody)
	}
	return Success{Body: body}
}

// Decode unmarshals the JSON body into v.
func (s Success) Decode(v any) error {
	if err := json.Unmarshal(s.Body, v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func (Success) outcome() {}

// FailureKind classifies a Failure.
type FailureKind int

const (
	FailureTransport FailureKind = iota
	FailureHTTP
	FailureGateTimeout
	FailureCanceled
	FailureStopped
	FailureInvalidRequest
)

// String returns a human-readable representation of the kind.
func (k FailureKind) String() string {
	switch k {
	case FailureTransport:
		return "transport"
	case FailureHTTP:
		return "http"
	case FailureGateTimeout:
		return "gate_timeout"
	case FailureCanceled:
		return "canceled"
	case FailureStopped:
		return "stopped"
	case FailureInvalidRequest:
		return "invalid_request"
	default:
		return "unknown"
	}
}

func (k FailureKind) sentinel() error {
	switch k {
	case FailureHTTP:
		return ErrHTTPFailure
	case FailureGateTimeout:
		return ErrGateTimeout
	case FailureCanceled:
		return ErrRequestCanceled
	case FailureStopped:
		return ErrDispatcherStopped
	case FailureInvalidRequest:
		return ErrInvalidRequest
	default:
		return ErrTransportFailure
	}
}

// Failure is the merged error of an unsuccessful call: whatever the transport
// reported plus the request URL and method for diagnostics.
type Failure struct {
	Kind   FailureKind
	Method Method
	URL    string

	// Status, Body and Header are set for FailureHTTP.
	Status int
	Body   []byte
	Header map[string]string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements error.
func (f *Failure) Error() string {
	switch {
	case f.Kind == FailureHTTP:
		return fmt.Sprintf("%s %s: server returned %d: %s", f.Method, f.URL, f.Status, string(f.Body))
	case f.Err != nil:
		return fmt.Sprintf("%s %s: %s: %v", f.Method, f.URL, f.Kind, f.Err)
	default:
		return fmt.Sprintf("%s %s: %s", f.Method, f.URL, f.Kind)
	}
}

// Unwrap returns the underlying cause.
func (f *Failure) Unwrap() error {
	return f.Err
}

// Is matches the sentinel error of the failure kind.
func (f *Failure) Is(target error) bool {
	return target == f.Kind.sentinel()
}

func (*Failure) outcome() {}

// NewFailure builds a Failure of the given kind for req.
func NewFailure(kind FailureKind, req Request, err error) *Failure {
	return &Failure{
		Kind:   kind,
		Method: req.Method(),
		URL:    req.URL(),
		Err:    err,
	}
}

// AsFailure extracts a *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// Result splits an Outcome into the Go-style (body, error) pair.
func Result(o Outcome) ([]byte, error) {
	switch v := o.(type) {
	case Success:
		return v.Body, nil
	case *Failure:
		return nil, v
	default:
		return nil, fmt.Errorf("%w: unexpected outcome %T", ErrTransportFailure, o)
	}
}
