package gatecall

import (
	"go.opentelemetry.io/otel/trace"
)

// Option configures optional behavior of a Dispatcher.
type Option func(*options)

// options holds the optional configuration for a Dispatcher instance.
type options struct {
	httpClient     HTTPClient
	transport      Transport
	logger         Logger
	gates          []Gate
	errorHook      ErrorHook
	eventHandler   EventHandler
	plugins        []Plugin
	tracerProvider trace.TracerProvider
}

// WithHTTPClient sets the HTTP client used by the default transport.
// If not provided, an *http.Client with Config.HTTPTimeout is used.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithTransport replaces the HTTP transport entirely. Transport middleware
// from plugins still wraps it.
func WithTransport(t Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithGate adds a gate. When used more than once, requests are sent only
// while every gate is open. Without any gate requests are always sent
// immediately.
func WithGate(g Gate) Option {
	return func(o *options) {
		o.gates = append(o.gates, g)
	}
}

// WithErrorHook sets the hook that observes every failure before the
// caller's future resolves.
func WithErrorHook(h ErrorHook) Option {
	return func(o *options) {
		o.errorHook = h
	}
}

// WithEventHandler sets a handler for dispatcher events.
// If not provided, no events are emitted.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the Dispatcher starts.
// Plugins are initialized in registration order and shut down in reverse order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider used by the
// default HTTP transport. Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// RequestOption configures a single send.
type RequestOption func(*requestOptions)

type requestOptions struct {
	headers    map[string]string
	retries    int
	retriesSet bool
}

// Header sets one request header on top of Config.DefaultHeaders.
func Header(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.headers[key] = value
	}
}

// Headers replaces all request headers, including Config.DefaultHeaders.
func Headers(h map[string]string) RequestOption {
	return func(o *requestOptions) {
		o.headers = make(map[string]string, len(h))
		for k, v := range h {
			o.headers[k] = v
		}
	}
}

// Retries sets how many polling ticks the request may wait for the gate.
// Values below 1 are treated as 1.
func Retries(n int) RequestOption {
	return func(o *requestOptions) {
		o.retries = n
		o.retriesSet = true
	}
}
