// Package gatecall provides an embeddable dispatcher for gated HTTP calls.
//
// A gate is an externally defined precondition, such as "the session token
// has been loaded" or "the circuit breaker is closed". Callers issue requests
// eagerly; while the gate is closed the requests are held in a FIFO queue and
// re-tested on a fixed polling interval. When the gate opens they are sent
// in the order they were issued. A request that waits through its whole retry
// budget fails with [ErrGateTimeout].
//
// # Basic Usage
//
//	ready := &atomic.Bool{}
//
//	d, err := gatecall.New(gatecall.DefaultConfig(),
//	    gatecall.WithGate(gatecall.GateFunc(ready.Load)),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := d.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer d.Stop()
//
//	fut := d.Get(ctx, "https://api.example.com/items", gatecall.Params{}.Add("page", 1))
//	ready.Store(true)
//
//	body, err := fut.Result(ctx)
//
// # Outcomes
//
// Every send returns a [Future] that resolves exactly once with an [Outcome]:
// either [Success] carrying the response body, or a [*Failure]. Failures
// carry the request URL and method and match one of the sentinel errors
// ([ErrHTTPFailure], [ErrTransportFailure], [ErrGateTimeout],
// [ErrRequestCanceled], [ErrDispatcherStopped], [ErrInvalidRequest]) with
// errors.Is.
//
// # Error Hook
//
// An [ErrorHook] registered with [WithErrorHook] sees every failure exactly
// once, synchronously, before the future resolves. It cannot change the outcome.
//
// # Plugins
//
// Plugins registered with [WithPlugin] are initialized on Start and shut down
// in reverse order on Stop. A plugin that implements [Gate] is ANDed with the
// other gates; a plugin that implements [TransportMiddleware] wraps the
// transport.
//
//	import "github.com/bft-labs/gatecall/plugins/filegate"
//	import "github.com/bft-labs/gatecall/plugins/breaker"
//
//	d, err := gatecall.New(cfg,
//	    filegate.WithFileGate(filegate.Config{Path: "/run/app/token"}),
//	    breaker.WithBreaker(breaker.DefaultConfig()),
//	)
//
// # Lifecycle States
//
// A Dispatcher can be in one of five states: [StateStopped], [StateStarting],
// [StateRunning], [StateStopping], or [StateCrashed]. Requests sent outside
// StateRunning fail with [ErrDispatcherStopped].
package gatecall
