package domain

import "errors"

// Domain errors represent error conditions in the gatecall domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running dispatcher.
	ErrAlreadyRunning = errors.New("gatecall: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped dispatcher,
	// and wrapped by failures of requests sent before Start().
	ErrNotRunning = errors.New("gatecall: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("gatecall: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("gatecall: invalid configuration")
)

// Failure kinds. A *Failure matches exactly one of these with errors.Is.
var (
	// ErrGateTimeout means the request used up its retry budget while the gate stayed closed.
	ErrGateTimeout = errors.New("gatecall: gate timeout")

	// ErrHTTPFailure means the call completed with a non-2xx status code.
	ErrHTTPFailure = errors.New("gatecall: http failure")

	// ErrTransportFailure means the call produced no response (connectivity, encoding, etc).
	ErrTransportFailure = errors.New("gatecall: transport failure")

	// ErrRequestCanceled means the caller's context ended before the request was sent.
	ErrRequestCanceled = errors.New("gatecall: request canceled")

	// ErrDispatcherStopped means the dispatcher was not accepting requests.
	ErrDispatcherStopped = errors.New("gatecall: dispatcher stopped")

	// ErrInvalidRequest means the request could not be built (unknown method, empty url).
	ErrInvalidRequest = errors.New("gatecall: invalid request")
)
