// Package breaker provides a circuit breaker for gatecall.
//
// The plugin is both a transport middleware and a gate. The middleware feeds
// every call result into the breaker; 5xx responses and transport errors
// count as failures. The gate is closed while the circuit is open, and while
// it is half-open with every trial slot taken, so new requests wait in the
// queue instead of failing. A request that reaches the middleware while the
// trial slots are busy waits for a trial to finish. A request that reaches
// it while the circuit is open fails with a transport failure.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"

	"github.com/bft-labs/gatecall/pkg/gatecall"
	"github.com/bft-labs/gatecall/pkg/log"
)

// Plugin wraps a gobreaker circuit breaker.
type Plugin struct {
	mu     sync.RWMutex
	logger gatecall.Logger

	cb          *gobreaker.CircuitBreaker
	maxRequests uint32

	// inFlight counts calls running inside the breaker; released is closed
	// and replaced whenever one of them finishes.
	inFlight atomic.Int64
	released chan struct{}
}

// trialPoll bounds how long a request waits for a trial slot before asking
// the breaker again.
const trialPoll = 50 * time.Millisecond

// Config holds configuration options for the breaker plugin.
type Config struct {
	// Name identifies the breaker in logs.
	// Default: "gatecall"
	Name string

	// MaxRequests is the number of trial requests allowed while half-open.
	// Default: 1
	MaxRequests uint32

	// Interval is the cyclic period in the closed state after which failure
	// counts are cleared. Zero never clears them.
	Interval time.Duration

	// Timeout is how long the circuit stays open before going half-open.
	// Default: 30 seconds
	Timeout time.Duration

	// ConsecutiveFailures trips the breaker.
	// Default: 5
	ConsecutiveFailures uint32
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Name:                "gatecall",
		MaxRequests:         1,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// errFailedOutcome marks an outcome the breaker counts as a failure.
var errFailedOutcome = errors.New("breaker: failed outcome")

// New creates a new breaker plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.Name == "" {
		cfg.Name = "gatecall"
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}

	p := &Plugin{
		logger:      log.NewNoopLogger(),
		maxRequests: cfg.MaxRequests,
		released:    make(chan struct{}),
	}
	p.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			p.mu.RLock()
			logger := p.logger
			p.mu.RUnlock()
			logger.Warn("circuit breaker state changed",
				log.String("breaker", name),
				log.String("from", from.String()),
				log.String("to", to.String()))
		},
	})
	return p
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "breaker"
}

// Initialize sets up the plugin with the provided configuration.
func (p *Plugin) Initialize(ctx context.Context, cfg gatecall.PluginConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cfg.Logger != nil {
		p.logger = cfg.Logger
	}
	p.logger.Info("circuit breaker initialized", log.String("breaker", p.cb.Name()))
	return nil
}

// Shutdown releases plugin resources.
func (p *Plugin) Shutdown(ctx context.Context) error {
	return nil
}

// IsOpen reports whether requests may be sent: always while the circuit is
// closed, never while it is open, and while half-open only if a trial slot
// is free.
func (p *Plugin) IsOpen() bool {
	switch p.cb.State() {
	case gobreaker.StateOpen:
		return false
	case gobreaker.StateHalfOpen:
		return p.inFlight.Load() < int64(p.maxRequests)
	default:
		return true
	}
}

// State returns the breaker state.
func (p *Plugin) State() gobreaker.State {
	return p.cb.State()
}

// WrapTransport records every call result in the breaker.
func (p *Plugin) WrapTransport(next gatecall.Transport) gatecall.Transport {
	return gatecall.TransportFunc(func(ctx context.Context, req gatecall.Request) gatecall.Outcome {
		for {
			result, err := p.cb.Execute(func() (interface{}, error) {
				p.inFlight.Add(1)
				defer p.release()

				out := next.Do(ctx, req)
				if countsAsFailure(out) {
					return out, errFailedOutcome
				}
				return out, nil
			})

			if errors.Is(err, gobreaker.ErrTooManyRequests) {
				if werr := p.waitTrial(ctx); werr != nil {
					return p.rejected(req, werr)
				}
				continue
			}
			if errors.Is(err, gobreaker.ErrOpenState) {
				return p.rejected(req, err)
			}

			out, _ := result.(gatecall.Outcome)
			return out
		}
	})
}

func (p *Plugin) release() {
	p.inFlight.Add(-1)

	p.mu.Lock()
	close(p.released)
	p.released = make(chan struct{})
	p.mu.Unlock()
}

// waitTrial blocks until a call inside the breaker finishes, trialPoll
// elapses, or ctx is done.
func (p *Plugin) waitTrial(ctx context.Context) error {
	p.mu.RLock()
	released := p.released
	p.mu.RUnlock()

	timer := time.NewTimer(trialPoll)
	defer timer.Stop()

	select {
	case <-released:
		return nil
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Plugin) rejected(req gatecall.Request, err error) *gatecall.Failure {
	return &gatecall.Failure{
		Kind:   gatecall.FailureTransport,
		Method: req.Method(),
		URL:    req.URL(),
		Err:    fmt.Errorf("circuit breaker %s: %w", p.cb.Name(), err),
	}
}

func countsAsFailure(out gatecall.Outcome) bool {
	f, ok := out.(*gatecall.Failure)
	if !ok {
		return out == nil
	}
	if f == nil {
		return true
	}
	switch f.Kind {
	case gatecall.FailureTransport:
		return true
	case gatecall.FailureHTTP:
		return f.Status >= 500
	default:
		return false
	}
}

// Ensure Plugin implements the plugin, gate and middleware interfaces.
var (
	_ gatecall.Plugin              = (*Plugin)(nil)
	_ gatecall.Gate                = (*Plugin)(nil)
	_ gatecall.TransportMiddleware = (*Plugin)(nil)
)
