package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/bft-labs/gatecall/internal/domain"
	"github.com/bft-labs/gatecall/internal/ports"
	"github.com/bft-labs/gatecall/pkg/log"
)

const (
	tracerName = "github.com/bft-labs/gatecall/internal/adapters/http"

	// HeaderRequestID carries the request ID to the server.
	HeaderRequestID = "X-Request-Id"

	contentTypeForm = "application/x-www-form-urlencoded"
)

// Transport implements ports.Transport using an HTTP client.
type Transport struct {
	client     ports.HTTPClient
	logger     log.Logger
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// Option configures a Transport.
type Option func(*Transport)

// WithTracerProvider sets the tracer provider used for client spans.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(t *Transport) {
		if tp != nil {
			t.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithPropagator sets the propagator used to inject trace context into
// request headers. Defaults to the global propagator.
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(t *Transport) {
		if p != nil {
			t.propagator = p
		}
	}
}

// NewTransport creates a new HTTP transport.
func NewTransport(client ports.HTTPClient, logger log.Logger, opts ...Option) *Transport {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	t := &Transport{
		client:     client,
		logger:     logger,
		tracer:     otel.GetTracerProvider().Tracer(tracerName),
		propagator: otel.GetTextMapPropagator(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Do performs a single round trip for req and classifies the response.
func (t *Transport) Do(ctx context.Context, req domain.Request) domain.Outcome {
	ctx, span := t.tracer.Start(ctx, "HTTP "+req.Method().String(),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method().String()),
			attribute.String("url.full", req.URL()),
			attribute.String("gatecall.request_id", req.ID()),
		),
	)
	defer span.End()

	httpReq, err := t.build(ctx, req)
	if err != nil {
		return t.transportFailure(span, req, fmt.Errorf("build request: %w", err))
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return t.transportFailure(span, req, fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return t.transportFailure(span, req, fmt.Errorf("read response: %w", err))
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	t.logger.Debug("response received",
		log.RequestID(req.ID()),
		log.String("method", req.Method().String()),
		log.URL(req.URL()),
		log.Int("status", resp.StatusCode),
		log.Int("bytes", len(body)),
	)

	if resp.StatusCode/100 != 2 {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		return &domain.Failure{
			Kind:   domain.FailureHTTP,
			Method: req.Method(),
			URL:    req.URL(),
			Status: resp.StatusCode,
			Body:   body,
			Header: flattenHeader(resp.Header),
		}
	}

	return domain.NewSuccess(body)
}

func (t *Transport) transportFailure(span trace.Span, req domain.Request, err error) *domain.Failure {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return domain.NewFailure(domain.FailureTransport, req, err)
}

// build encodes req. GET and DELETE carry their data in the query string,
// POST and PUT in the body.
func (t *Transport) build(ctx context.Context, req domain.Request) (*http.Request, error) {
	target := req.URL()
	var body io.Reader

	switch req.Method() {
	case domain.MethodGet, domain.MethodDelete:
		q, err := domain.EncodeQuery(req.Data())
		if err != nil {
			return nil, err
		}
		if target, err = appendQuery(target, q); err != nil {
			return nil, err
		}
	default:
		b, err := encodeBody(req)
		if err != nil {
			return nil, err
		}
		if b != nil {
			body = bytes.NewReader(b)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method().String(), target, body)
	if err != nil {
		return nil, err
	}

	for k, v := range req.Headers() {
		httpReq.Header.Set(k, v)
	}
	if httpReq.Header.Get(HeaderRequestID) == "" {
		httpReq.Header.Set(HeaderRequestID, req.ID())
	}
	t.propagator.Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	return httpReq, nil
}

func encodeBody(req domain.Request) ([]byte, error) {
	switch v := req.Data().(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	case string:
		return []byte(v), nil
	}

	if strings.HasPrefix(req.Header(domain.HeaderContentType), contentTypeForm) {
		return domain.EncodeForm(req.Data())
	}

	b, err := json.Marshal(req.Data())
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}
	return b, nil
}

// appendQuery merges q into the query of raw, keeping any existing parameters.
func appendQuery(raw, q string) (string, error) {
	if q == "" {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.RawQuery == "" {
		u.RawQuery = q
	} else {
		u.RawQuery += "&" + q
	}
	return u.String(), nil
}

func flattenHeader(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = strings.Join(v, ", ")
	}
	return out
}
