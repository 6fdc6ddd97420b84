package gatecall

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	httpAdapter "github.com/bft-labs/gatecall/internal/adapters/http"
	"github.com/bft-labs/gatecall/internal/app"
	"github.com/bft-labs/gatecall/internal/ports"
	"github.com/bft-labs/gatecall/pkg/log"
)

// Dispatcher sends HTTP requests once its gates are open.
// Use New() to create an instance, then Start() to accept requests.
type Dispatcher struct {
	config    Config
	lifecycle *app.Lifecycle
	core      *app.Dispatcher
	logger    log.Logger
	plugins   []Plugin

	mu sync.Mutex
}

// New creates a Dispatcher with the given configuration.
// The instance is created in StateStopped; call Start() to accept requests.
// Returns an error if configuration is invalid.
func New(cfg Config, opts ...Option) (*Dispatcher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}
	lifecycle := app.NewLifecycle(logger, emitter)

	transport := o.transport
	if transport == nil {
		client := o.httpClient
		if client == nil {
			client = newHTTPClient(cfg)
		}
		transport = httpAdapter.NewTransport(client, logger.With(log.String("component", "transport")),
			httpAdapter.WithTracerProvider(o.tracerProvider))
	}

	gates := append([]ports.Gate(nil), o.gates...)
	for _, p := range o.plugins {
		if g, ok := p.(ports.Gate); ok {
			gates = append(gates, g)
		}
		if mw, ok := p.(ports.TransportMiddleware); ok {
			transport = mw.WrapTransport(transport)
		}
	}

	core := app.NewDispatcher(app.DispatcherConfig{
		PollInterval:   cfg.PollInterval,
		DefaultRetries: cfg.DefaultRetries,
		BaseURL:        cfg.BaseURL,
	}, app.AllGates(gates...), transport, o.errorHook, logger, emitter, lifecycle)

	return &Dispatcher{
		config:    cfg,
		lifecycle: lifecycle,
		core:      core,
		logger:    logger,
		plugins:   o.plugins,
	}, nil
}

// newHTTPClient builds the default client. A zero HTTPTimeout means no timeout.
func newHTTPClient(cfg Config) *http.Client {
	return &http.Client{Timeout: cfg.HTTPTimeout}
}

// Start initializes plugins and begins accepting requests.
// Returns ErrAlreadyRunning if the dispatcher is not stopped. If a plugin
// fails to initialize, the plugins initialized before it are shut down and
// the dispatcher ends in StateCrashed.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.lifecycle.CanStart() {
		return ErrAlreadyRunning
	}

	if err := d.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	for i, p := range d.plugins {
		pluginCfg := PluginConfig{
			Logger: d.logger.With(log.String("plugin", p.Name())),
			Config: d.config,
		}
		if err := initializePlugin(ctx, p, pluginCfg); err != nil {
			d.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			d.shutdownPlugins(d.plugins[:i])
			_ = d.lifecycle.TransitionTo(app.StateCrashed, "plugin init failed: "+p.Name())
			return fmt.Errorf("initialize plugin %s: %w", p.Name(), err)
		}
		d.logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}

	d.core.Open()

	return d.lifecycle.TransitionTo(app.StateRunning, "dispatcher open")
}

// Stop stops accepting requests and fails every pending request with
// ErrDispatcherStopped. It waits up to Config.ShutdownTimeout for in-flight
// calls, then shuts plugins down in reverse order.
// Returns nil on graceful shutdown, ErrShutdownTimeout if forced.
func (d *Dispatcher) Stop() error {
	d.mu.Lock()

	if !d.lifecycle.CanStop() {
		d.mu.Unlock()
		return ErrNotRunning
	}

	if err := d.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		d.mu.Unlock()
		return err
	}

	d.core.Close()
	d.mu.Unlock()

	err := d.lifecycle.WaitWithTimeout(d.config.ShutdownTimeout)

	d.shutdownPlugins(d.plugins)

	if err != nil {
		_ = d.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = d.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}

	return err
}

func (d *Dispatcher) shutdownPlugins(plugins []Plugin) {
	ctx := context.Background()
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := shutdownPlugin(ctx, p); err != nil {
			d.logger.Error("plugin shutdown failed",
				log.String("plugin", p.Name()),
				log.Err(err))
		} else {
			d.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
		}
	}
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (d *Dispatcher) Status() State {
	return convertState(d.lifecycle.State())
}

// Send issues a request and returns its future without blocking. The request
// is sent now if every gate is open, otherwise it waits in the queue.
func (d *Dispatcher) Send(ctx context.Context, method Method, url string, data any, opts ...RequestOption) *Future {
	ro := requestOptions{headers: make(map[string]string, len(d.config.DefaultHeaders))}
	for k, v := range d.config.DefaultHeaders {
		ro.headers[k] = v
	}
	for _, opt := range opts {
		opt(&ro)
	}

	retries := 0
	if ro.retriesSet {
		retries = max(ro.retries, 1)
	}
	return d.core.Submit(ctx, method, url, data, ro.headers, retries)
}

// Do sends a request built with NewRequest. Its URL is used as built.
func (d *Dispatcher) Do(ctx context.Context, req Request) *Future {
	return d.core.Send(ctx, req)
}

// Get sends a GET request; data is encoded into the query string.
func (d *Dispatcher) Get(ctx context.Context, url string, data any, opts ...RequestOption) *Future {
	return d.Send(ctx, MethodGet, url, data, opts...)
}

// Post sends a POST request; data is encoded as the body.
func (d *Dispatcher) Post(ctx context.Context, url string, data any, opts ...RequestOption) *Future {
	return d.Send(ctx, MethodPost, url, data, opts...)
}

// Put sends a PUT request; data is encoded as the body.
func (d *Dispatcher) Put(ctx context.Context, url string, data any, opts ...RequestOption) *Future {
	return d.Send(ctx, MethodPut, url, data, opts...)
}

// Delete sends a DELETE request; data is encoded into the query string.
func (d *Dispatcher) Delete(ctx context.Context, url string, data any, opts ...RequestOption) *Future {
	return d.Send(ctx, MethodDelete, url, data, opts...)
}

// Pending returns the number of requests waiting for the gate.
func (d *Dispatcher) Pending() int {
	return d.core.Pending()
}

// SchedulerRunning reports whether the polling scheduler is active.
// It is active exactly while requests are pending.
func (d *Dispatcher) SchedulerRunning() bool {
	return d.core.SchedulerRunning()
}

// InFlight returns the number of transport calls and scheduler goroutines
// still running.
func (d *Dispatcher) InFlight() int {
	return d.lifecycle.InFlight()
}
