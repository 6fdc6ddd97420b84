package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Method is an HTTP method supported by the dispatcher.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
)

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodDelete:
		return true
	default:
		return false
	}
}

// String returns the method name.
func (m Method) String() string {
	return string(m)
}

// ParseMethod converts a case-insensitive method name to a Method.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: unsupported method %q", ErrInvalidRequest, s)
	}
	return m, nil
}

// DefaultRetries is the number of scheduler ticks a deferred request may wait
// for the gate before it fails with ErrGateTimeout.
const DefaultRetries = 5

// HeaderContentType is the Content-Type header name.
const HeaderContentType = "Content-Type"

// ContentTypeJSON is the default request content type.
const ContentTypeJSON = "application/json"

// DefaultHeaders returns the headers used when a request is built without any.
func DefaultHeaders() map[string]string {
	return map[string]string{HeaderContentType: ContentTypeJSON}
}

// Request is an outbound call. It is immutable once built: accessors that
// expose maps return copies.
type Request struct {
	id      string
	method  Method
	url     string
	data    any
	headers map[string]string
	retries int
}

// NewRequest validates and builds a Request.
// Nil headers are replaced by DefaultHeaders; a retries value below 1 is
// raised to 1 so the request gets at least one chance on the next tick.
func NewRequest(method Method, url string, data any, headers map[string]string, retries int) (Request, error) {
	if !method.Valid() {
		return Request{}, fmt.Errorf("%w: unsupported method %q", ErrInvalidRequest, method)
	}
	if strings.TrimSpace(url) == "" {
		return Request{}, fmt.Errorf("%w: url is required", ErrInvalidRequest)
	}
	if retries < 1 {
		retries = 1
	}

	h := DefaultHeaders()
	if headers != nil {
		h = cloneHeaders(headers)
	}

	return Request{
		id:      uuid.NewString(),
		method:  method,
		url:     url,
		data:    data,
		headers: h,
		retries: retries,
	}, nil
}

// ID returns the unique request identifier.
func (r Request) ID() string { return r.id }

// Method returns the HTTP method.
func (r Request) Method() Method { return r.method }

// URL returns the target URL.
func (r Request) URL() string { return r.url }

// Data returns the payload as supplied by the caller.
func (r Request) Data() any { return r.data }

// Retries returns the retry budget the request was created with.
func (r Request) Retries() int { return r.retries }

// Headers returns a copy of the request headers.
func (r Request) Headers() map[string]string {
	return cloneHeaders(r.headers)
}

// Header returns the value of a header, matched case-insensitively.
func (r Request) Header(name string) string {
	for k, v := range r.headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func cloneHeaders(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
