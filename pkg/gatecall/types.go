package gatecall

import (
	"github.com/bft-labs/gatecall/internal/domain"
	"github.com/bft-labs/gatecall/internal/ports"
	"github.com/bft-labs/gatecall/pkg/log"
)

// Re-exported domain types. They are defined in internal packages so the
// dispatcher core and the adapters share them without importing this package.
type (
	// Request is an immutable outbound call.
	Request = domain.Request

	// Method is one of GET, POST, PUT, DELETE.
	Method = domain.Method

	// Params is an ordered key/value payload.
	Params = domain.Params

	// Param is one pair of Params.
	Param = domain.Param

	// Outcome is either Success or *Failure.
	Outcome = domain.Outcome

	// Success is the outcome of a 2xx response.
	Success = domain.Success

	// Failure is the merged error of an unsuccessful call.
	Failure = domain.Failure

	// FailureKind classifies a Failure.
	FailureKind = domain.FailureKind

	// Future is the completion handle returned by every send.
	Future = domain.Future
)

// Re-exported extension points.
type (
	// Gate decides whether requests may be sent now.
	Gate = ports.Gate

	// GateFunc adapts a function to Gate.
	GateFunc = ports.GateFunc

	// Transport performs a single request.
	Transport = ports.Transport

	// TransportFunc adapts a function to Transport.
	TransportFunc = ports.TransportFunc

	// TransportMiddleware wraps a Transport.
	TransportMiddleware = ports.TransportMiddleware

	// ErrorHook observes every failure before it reaches the caller.
	ErrorHook = ports.ErrorHook

	// ErrorHookFunc adapts a function to ErrorHook.
	ErrorHookFunc = ports.ErrorHookFunc

	// HTTPClient is satisfied by *http.Client.
	HTTPClient = ports.HTTPClient

	// Logger is the structured logger used by the dispatcher and plugins.
	Logger = log.Logger

	// LogField is a structured log field.
	LogField = log.Field
)

const (
	MethodGet    = domain.MethodGet
	MethodPost   = domain.MethodPost
	MethodPut    = domain.MethodPut
	MethodDelete = domain.MethodDelete
)

const (
	FailureTransport      = domain.FailureTransport
	FailureHTTP           = domain.FailureHTTP
	FailureGateTimeout    = domain.FailureGateTimeout
	FailureCanceled       = domain.FailureCanceled
	FailureStopped        = domain.FailureStopped
	FailureInvalidRequest = domain.FailureInvalidRequest
)

// DefaultRetries is the number of polling ticks a request waits by default.
const DefaultRetries = domain.DefaultRetries

var (
	ErrGateTimeout       = domain.ErrGateTimeout
	ErrHTTPFailure       = domain.ErrHTTPFailure
	ErrTransportFailure  = domain.ErrTransportFailure
	ErrRequestCanceled   = domain.ErrRequestCanceled
	ErrDispatcherStopped = domain.ErrDispatcherStopped
	ErrInvalidRequest    = domain.ErrInvalidRequest

	ErrAlreadyRunning  = domain.ErrAlreadyRunning
	ErrNotRunning      = domain.ErrNotRunning
	ErrShutdownTimeout = domain.ErrShutdownTimeout
	ErrInvalidConfig   = domain.ErrInvalidConfig
)

// NewRequest builds a Request. Nil headers become a JSON Content-Type and
// retries below 1 are raised to 1.
func NewRequest(method Method, url string, data any, headers map[string]string, retries int) (Request, error) {
	return domain.NewRequest(method, url, data, headers, retries)
}

// ParseMethod converts a case-insensitive method name to a Method.
func ParseMethod(s string) (Method, error) {
	return domain.ParseMethod(s)
}

// NewSuccess builds a Success; an empty body becomes "true".
func NewSuccess(body []byte) Success {
	return domain.NewSuccess(body)
}

// Result splits an Outcome into a body and an error.
func Result(o Outcome) ([]byte, error) {
	return domain.Result(o)
}

// AsFailure extracts a *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	return domain.AsFailure(err)
}
