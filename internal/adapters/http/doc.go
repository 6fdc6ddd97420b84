// Package http implements the gatecall transport on top of net/http.
//
// The transport encodes a domain.Request into an *http.Request, performs
// exactly one round trip and classifies the response: 2xx statuses become
// domain.Success, every other status and every client error becomes a
// *domain.Failure. Each call is wrapped in an OpenTelemetry client span and
// the trace context is propagated through the request headers.
package http
