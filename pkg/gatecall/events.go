package gatecall

import (
	"time"

	"github.com/bft-labs/gatecall/internal/app"
	"github.com/bft-labs/gatecall/internal/domain"
)

// State is the lifecycle state of a Dispatcher.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// StateChangeEvent is emitted on every lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// DeferredEvent is emitted when a request is queued because the gate was closed.
type DeferredEvent struct {
	RequestID string
	Method    Method
	URL       string

	// Pending is the queue length after the request was added.
	Pending int
}

// CompletedEvent is emitted once per request when its future resolves.
type CompletedEvent struct {
	RequestID string
	Method    Method
	URL       string
	Outcome   Outcome

	// Err is the *Failure for unsuccessful outcomes and nil otherwise.
	Err error

	// Duration is the transport round trip; zero for requests that never
	// reached the transport.
	Duration time.Duration
}

// EventHandler receives dispatcher notifications. Methods are called
// synchronously from the goroutine that caused the event and should return
// quickly.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnDeferred(event DeferredEvent)
	OnCompleted(event CompletedEvent)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to handle
// only some events.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent) {}
func (BaseEventHandler) OnDeferred(DeferredEvent)       {}
func (BaseEventHandler) OnCompleted(CompletedEvent)     {}

// eventEmitterWrapper adapts EventHandler to the internal emitter interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnDeferred(req domain.Request, pending int) {
	if e.handler == nil {
		return
	}
	e.handler.OnDeferred(DeferredEvent{
		RequestID: req.ID(),
		Method:    req.Method(),
		URL:       req.URL(),
		Pending:   pending,
	})
}

func (e *eventEmitterWrapper) OnCompleted(req domain.Request, out domain.Outcome, elapsed time.Duration) {
	if e.handler == nil {
		return
	}
	ev := CompletedEvent{
		RequestID: req.ID(),
		Method:    req.Method(),
		URL:       req.URL(),
		Outcome:   out,
		Duration:  elapsed,
	}
	if f, ok := out.(*domain.Failure); ok {
		ev.Err = f
		ev.Method = f.Method
		ev.URL = f.URL
	}
	e.handler.OnCompleted(ev)
}

func convertState(s app.State) State {
	switch s {
	case app.StateStopped:
		return StateStopped
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateCrashed:
		return StateCrashed
	default:
		return StateStopped
	}
}
