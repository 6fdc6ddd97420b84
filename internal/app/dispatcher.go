package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bft-labs/gatecall/internal/domain"
	"github.com/bft-labs/gatecall/internal/ports"
	"github.com/bft-labs/gatecall/pkg/log"
)

// DispatcherConfig contains configuration for the dispatch loop.
type DispatcherConfig struct {
	// PollInterval is the time between scheduler ticks.
	PollInterval time.Duration

	// DefaultRetries is the retry budget used when a send does not set one.
	DefaultRetries int

	// BaseURL is prepended to request URLs that start with "/".
	BaseURL string
}

// DispatchEventEmitter is called when requests are deferred or completed.
type DispatchEventEmitter interface {
	OnDeferred(req domain.Request, pending int)
	OnCompleted(req domain.Request, outcome domain.Outcome, elapsed time.Duration)
}

// Dispatcher decides, per request, whether to call the transport now or to
// hold the request until the gate opens. It owns the dispatch queue and the
// polling scheduler; the lock serializes gate checks with queue mutations.
type Dispatcher struct {
	config    DispatcherConfig
	gate      ports.Gate
	transport ports.Transport
	hook      ports.ErrorHook
	logger    log.Logger
	emitter   DispatchEventEmitter
	workers   ports.WorkerGroup

	mu        sync.Mutex
	accepting bool
	queue     *Queue
	sched     *scheduler
}

// NewDispatcher creates a dispatcher that is not yet accepting requests.
// A nil gate is always open; hook and emitter may be nil.
func NewDispatcher(
	config DispatcherConfig,
	gate ports.Gate,
	transport ports.Transport,
	hook ports.ErrorHook,
	logger log.Logger,
	emitter DispatchEventEmitter,
	workers ports.WorkerGroup,
) *Dispatcher {
	if gate == nil {
		gate = AllGates()
	}
	if config.DefaultRetries <= 0 {
		config.DefaultRetries = domain.DefaultRetries
	}

	d := &Dispatcher{
		config:    config,
		gate:      gate,
		transport: transport,
		hook:      hook,
		logger:    logger,
		emitter:   emitter,
		workers:   workers,
		queue:     NewQueue(),
	}
	d.sched = newScheduler(config.PollInterval, workers, d.tick)
	return d
}

// Open starts accepting requests.
func (d *Dispatcher) Open() {
	d.mu.Lock()
	d.accepting = true
	d.mu.Unlock()
}

// Close stops accepting requests, stops the scheduler and fails every pending
// entry with ErrDispatcherStopped. Returns the number of entries failed.
func (d *Dispatcher) Close() int {
	d.mu.Lock()
	d.accepting = false
	entries := d.queue.Drain()
	d.sched.stopLocked()
	d.mu.Unlock()

	for _, e := range entries {
		d.fail(e.ctx, e.req, e.future, domain.NewFailure(domain.FailureStopped, e.req, nil))
	}
	if len(entries) > 0 {
		d.logger.Info("dropped pending requests on close", log.Int("count", len(entries)))
	}
	return len(entries)
}

// Submit builds a request and sends it. Build errors resolve the future with
// an ErrInvalidRequest failure. retries <= 0 selects the configured default.
func (d *Dispatcher) Submit(ctx context.Context, method domain.Method, url string, data any, headers map[string]string, retries int) *domain.Future {
	if retries <= 0 {
		retries = d.config.DefaultRetries
	}

	req, err := domain.NewRequest(method, d.resolveURL(url), data, headers, retries)
	if err != nil {
		fut := domain.NewFuture()
		d.fail(ctx, domain.Request{}, fut, &domain.Failure{
			Kind:   domain.FailureInvalidRequest,
			Method: method,
			URL:    url,
			Err:    err,
		})
		return fut
	}
	return d.Send(ctx, req)
}

// Send dispatches req now if the gate is open, otherwise queues it for the
// scheduler. It never blocks on the transport.
func (d *Dispatcher) Send(ctx context.Context, req domain.Request) *domain.Future {
	fut := domain.NewFuture()

	if err := ctx.Err(); err != nil {
		d.fail(ctx, req, fut, domain.NewFailure(domain.FailureCanceled, req, err))
		return fut
	}

	d.mu.Lock()
	if !d.accepting {
		d.mu.Unlock()
		d.fail(ctx, req, fut, domain.NewFailure(domain.FailureStopped, req, domain.ErrNotRunning))
		return fut
	}

	if d.gate.IsOpen() {
		d.workers.Go(func() { d.execute(ctx, req, fut) })
		d.mu.Unlock()
		return fut
	}

	d.queue.Push(newPendingEntry(ctx, req, fut))
	d.sched.ensureRunningLocked()
	pending := d.queue.Len()
	d.mu.Unlock()

	d.logger.Debug("gate closed, request deferred",
		log.RequestID(req.ID()),
		log.String("method", req.Method().String()),
		log.URL(req.URL()),
		log.Int("pending", pending),
	)
	if d.emitter != nil {
		d.emitter.OnDeferred(req, pending)
	}
	return fut
}

// Pending returns the number of queued requests.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queue.Len()
}

// PendingEntries returns a snapshot of the queued entries in insertion order.
func (d *Dispatcher) PendingEntries() []*PendingEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queue.Entries()
}

// SchedulerRunning reports whether the polling goroutine is active.
func (d *Dispatcher) SchedulerRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sched.runningLocked()
}

// Tick runs one scheduler pass now instead of waiting for the next poll
// interval. It does nothing when no request is pending.
func (d *Dispatcher) Tick() {
	d.mu.Lock()
	gen := d.sched.generationLocked()
	d.mu.Unlock()
	d.tick(gen)
}

// tick re-tests the gate for every pending entry. Ready entries are executed
// after the lock is released, sequentially and in insertion order.
func (d *Dispatcher) tick(gen uint64) {
	d.mu.Lock()
	if !d.sched.currentLocked(gen) {
		d.mu.Unlock()
		return
	}

	ready, dropped := d.queue.Sweep(func(e *PendingEntry) Verdict {
		if err := e.ctx.Err(); err != nil {
			e.failure = domain.NewFailure(domain.FailureCanceled, e.req, err)
			return Drop
		}
		e.retriesRemaining--
		if d.gate.IsOpen() {
			return Dispatch
		}
		if e.retriesRemaining <= 0 {
			e.failure = domain.NewFailure(domain.FailureGateTimeout, e.req,
				fmt.Errorf("gate still closed after %d ticks", e.req.Retries()))
			return Drop
		}
		return Keep
	})

	remaining := d.queue.Len()
	if remaining == 0 {
		d.sched.stopLocked()
	}
	d.mu.Unlock()

	if len(ready) > 0 || len(dropped) > 0 {
		d.logger.Debug("scheduler tick",
			log.Int("dispatched", len(ready)),
			log.Int("dropped", len(dropped)),
			log.Int("pending", remaining),
		)
	}

	for _, e := range dropped {
		d.fail(e.ctx, e.req, e.future, e.failure)
	}
	for _, e := range ready {
		d.execute(e.ctx, e.req, e.future)
	}
}

// execute performs the transport call and routes its outcome.
func (d *Dispatcher) execute(ctx context.Context, req domain.Request, fut *domain.Future) {
	start := time.Now()
	out := d.do(ctx, req)
	d.complete(ctx, req, fut, out, time.Since(start))
}

func (d *Dispatcher) do(ctx context.Context, req domain.Request) (out domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = domain.NewFailure(domain.FailureTransport, req, fmt.Errorf("transport panic: %v", r))
		}
	}()
	return d.transport.Do(ctx, req)
}

func (d *Dispatcher) fail(ctx context.Context, req domain.Request, fut *domain.Future, f *domain.Failure) {
	d.complete(ctx, req, fut, f, 0)
}

// complete resolves fut with out. Failures reach the error hook first.
func (d *Dispatcher) complete(ctx context.Context, req domain.Request, fut *domain.Future, out domain.Outcome, elapsed time.Duration) {
	switch o := out.(type) {
	case domain.Success:
		d.logger.Debug("request succeeded",
			log.RequestID(req.ID()),
			log.URL(req.URL()),
			log.Duration("elapsed", elapsed),
		)
	case *domain.Failure:
		if o == nil {
			out = domain.NewFailure(domain.FailureTransport, req, errors.New("transport returned no outcome"))
		} else {
			out = mergeRequest(o, req)
		}
	default:
		out = domain.NewFailure(domain.FailureTransport, req, fmt.Errorf("transport returned %T", out))
	}

	if f, ok := out.(*domain.Failure); ok {
		d.logger.Warn("request failed",
			log.RequestID(req.ID()),
			log.String("kind", f.Kind.String()),
			log.URL(f.URL),
			log.Int("status", f.Status),
			log.Err(f),
		)
		d.notifyHook(ctx, f)
	}

	fut.Resolve(out)

	if d.emitter != nil {
		d.emitter.OnCompleted(req, out, elapsed)
	}
}

// notifyHook hands the hook a copy so it cannot alter what the caller sees.
func (d *Dispatcher) notifyHook(ctx context.Context, f *domain.Failure) {
	if d.hook == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("error hook panicked", log.Any("panic", r))
		}
	}()
	cp := *f
	d.hook.OnError(ctx, &cp)
}

// mergeRequest fills in the request url and method when the transport left them out.
func mergeRequest(f *domain.Failure, req domain.Request) *domain.Failure {
	if f.URL != "" && f.Method != "" {
		return f
	}
	cp := *f
	if cp.URL == "" {
		cp.URL = req.URL()
	}
	if cp.Method == "" {
		cp.Method = req.Method()
	}
	return &cp
}

func (d *Dispatcher) resolveURL(url string) string {
	if d.config.BaseURL == "" || !strings.HasPrefix(url, "/") {
		return url
	}
	return strings.TrimRight(d.config.BaseURL, "/") + url
}
