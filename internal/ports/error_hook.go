package ports

import (
	"context"

	"github.com/bft-labs/gatecall/internal/domain"
)

// ErrorHook is notified of every failed outcome, synchronously and before the
// caller's future is resolved. It is for side effects only (logging,
// telemetry) and cannot change the outcome.
type ErrorHook interface {
	OnError(ctx context.Context, failure *domain.Failure)
}

// ErrorHookFunc adapts an ordinary function to the ErrorHook interface.
type ErrorHookFunc func(ctx context.Context, failure *domain.Failure)

// OnError calls f.
func (f ErrorHookFunc) OnError(ctx context.Context, failure *domain.Failure) {
	f(ctx, failure)
}
