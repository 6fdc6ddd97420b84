package ports

import (
	"context"

	"github.com/bft-labs/gatecall/internal/domain"
)

// Transport performs a single request and classifies its result.
// Implementations must not retry: a request is retried only because the
// gate held it back, never because the call itself failed.
type Transport interface {
	// Do sends req and returns domain.Success for 2xx responses or a
	// *domain.Failure for anything else.
	Do(ctx context.Context, req domain.Request) domain.Outcome
}

// TransportFunc adapts an ordinary function to the Transport interface.
type TransportFunc func(ctx context.Context, req domain.Request) domain.Outcome

// Do calls f.
func (f TransportFunc) Do(ctx context.Context, req domain.Request) domain.Outcome {
	return f(ctx, req)
}

// TransportMiddleware wraps a Transport with extra behaviour
// (circuit breaking, instrumentation).
type TransportMiddleware interface {
	WrapTransport(next Transport) Transport
}
