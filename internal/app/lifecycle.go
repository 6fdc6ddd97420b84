package app

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/gatecall/internal/domain"
	"github.com/bft-labs/gatecall/pkg/log"
)

// ShutdownTimeout is the default time Stop waits for in-flight calls.
const ShutdownTimeout = 30 * time.Second

// State represents the lifecycle state of a dispatcher.
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

// EventEmitter is called when lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// transitions lists the states reachable from each state.
var transitions = map[State][]State{
	StateStopped:  {StateStarting},
	StateStarting: {StateRunning, StateStopping, StateCrashed},
	StateRunning:  {StateStopping, StateCrashed},
	StateStopping: {StateStopped, StateCrashed},
	StateCrashed:  {StateStarting},
}

// Lifecycle is the dispatcher state machine. It also runs the goroutines
// performing calls or ticking the scheduler so Stop can wait for them.
type Lifecycle struct {
	mu           sync.RWMutex
	state        State
	since        time.Time
	wg           sync.WaitGroup
	inFlight     atomic.Int64
	logger       log.Logger
	eventEmitter EventEmitter
}

// NewLifecycle creates a lifecycle in StateStopped.
func NewLifecycle(logger log.Logger, emitter EventEmitter) *Lifecycle {
	return &Lifecycle{
		state:        StateStopped,
		since:        time.Now(),
		logger:       logger,
		eventEmitter: emitter,
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Since returns when the current state was entered.
func (l *Lifecycle) Since() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.since
}

// TransitionTo attempts to transition to a new state.
// Returns an error if the transition is not valid.
func (l *Lifecycle) TransitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state

	if err := validTransition(oldState, newState); err != nil {
		l.mu.Unlock()
		return err
	}

	l.state = newState
	l.since = time.Now()
	l.mu.Unlock()

	// Emit event outside of lock
	if l.eventEmitter != nil {
		l.eventEmitter.OnStateChange(oldState, newState, reason)
	}

	l.logger.Info("state transition",
		log.String("from", oldState.String()),
		log.String("to", newState.String()),
		log.String("reason", reason),
	)

	return nil
}

func validTransition(from, to State) error {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	if from == StateStopped || from == StateCrashed {
		return fmt.Errorf("%w: %s -> %s", domain.ErrNotRunning, from, to)
	}
	return fmt.Errorf("%w: %s -> %s", domain.ErrAlreadyRunning, from, to)
}

// CanStart returns true if Start() can be called.
func (l *Lifecycle) CanStart() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateStopped || l.state == StateCrashed
}

// CanStop returns true if Stop() can be called.
func (l *Lifecycle) CanStop() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateRunning || l.state == StateStarting
}

// Go runs fn on a tracked goroutine. A panic in fn is logged and does not
// crash the process.
func (l *Lifecycle) Go(fn func()) {
	l.wg.Add(1)
	l.inFlight.Add(1)
	go func() {
		defer l.wg.Done()
		defer l.inFlight.Add(-1)
		defer func() {
			if r := recover(); r != nil {
				l.logger.Error("worker panicked", log.Any("panic", r))
			}
		}()
		fn()
	}()
}

// InFlight returns the number of tracked goroutines still running.
func (l *Lifecycle) InFlight() int {
	return int(l.inFlight.Load())
}

// WaitWithTimeout waits for all workers to finish with a timeout.
// Returns ErrShutdownTimeout if the timeout expires.
func (l *Lifecycle) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		l.logger.Warn("shutdown timeout, abandoning in-flight calls",
			log.Duration("timeout", timeout),
			log.Int("in_flight", l.InFlight()),
		)
		return domain.ErrShutdownTimeout
	}
}
