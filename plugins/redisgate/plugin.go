// Package redisgate provides a gate that is open while a Redis key exists.
// Several processes can share one gate: whoever owns the session writes the
// key, and every dispatcher watching it starts sending.
package redisgate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bft-labs/gatecall/pkg/gatecall"
	"github.com/bft-labs/gatecall/pkg/log"
)

// Plugin polls Redis for a key and exposes its existence as a gate.
// The last result is cached in an atomic flag so IsOpen never does I/O.
type Plugin struct {
	mu sync.Mutex

	// Configuration
	key             string
	refreshInterval time.Duration
	maxBackoff      time.Duration
	timeout         time.Duration
	options         *redis.Options

	// Runtime state
	client     redis.UniversalClient
	ownsClient bool
	open       atomic.Bool
	logger     gatecall.Logger
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// Config holds configuration options for the Redis gate plugin.
type Config struct {
	// Addr is the Redis address (host:port). Ignored when Client is set.
	// Default: localhost:6379
	Addr string

	// Password for Redis AUTH. Ignored when Client is set.
	Password string

	// DB is the Redis database number. Ignored when Client is set.
	DB int

	// Key is the key whose existence opens the gate. Required.
	Key string

	// RefreshInterval is the time between checks.
	// Default: 1 second
	RefreshInterval time.Duration

	// MaxBackoff caps the delay between checks while Redis keeps failing.
	// Default: 30 seconds
	MaxBackoff time.Duration

	// Timeout bounds each check.
	// Default: 2 seconds
	Timeout time.Duration

	// Client is an existing client to use instead of dialing Addr.
	// The plugin does not close it.
	Client redis.UniversalClient
}

// DefaultConfig returns a Config with sensible defaults. Key must still be set.
func DefaultConfig() Config {
	return Config{
		Addr:            "localhost:6379",
		RefreshInterval: time.Second,
		MaxBackoff:      30 * time.Second,
		Timeout:         2 * time.Second,
	}
}

// New creates a new Redis gate plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}

	return &Plugin{
		key:             cfg.Key,
		refreshInterval: cfg.RefreshInterval,
		maxBackoff:      cfg.MaxBackoff,
		timeout:         cfg.Timeout,
		options: &redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		},
		client: cfg.Client,
		logger: log.NewNoopLogger(),
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "redisgate"
}

// Initialize connects to Redis, checks the key once and starts the refresh loop.
// An unreachable server is not an error: the gate stays closed until a
// check succeeds.
func (p *Plugin) Initialize(ctx context.Context, cfg gatecall.PluginConfig) error {
	if p.key == "" {
		return errors.New("redisgate: key is required")
	}

	p.mu.Lock()
	if cfg.Logger != nil {
		p.logger = cfg.Logger
	}
	if p.client == nil {
		p.client = redis.NewClient(p.options)
		p.ownsClient = true
	}
	p.mu.Unlock()

	if _, err := p.Refresh(ctx); err != nil {
		p.logger.Warn("redis gate: initial check failed, gate closed",
			log.String("key", p.key),
			log.Err(err))
	}

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.refreshLoop(loopCtx)

	p.logger.Info("redis gate initialized",
		log.String("key", p.key),
		log.Duration("refresh_interval", p.refreshInterval))
	return nil
}

// Shutdown stops the refresh loop and closes the client if the plugin created it.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ownsClient && p.client != nil {
		err := p.client.Close()
		p.client = nil
		p.ownsClient = false
		if err != nil {
			return fmt.Errorf("redisgate: close client: %w", err)
		}
	}
	return nil
}

// IsOpen reports whether the key existed at the last successful check.
func (p *Plugin) IsOpen() bool {
	return p.open.Load()
}

// Refresh checks the key now. A failed check closes the gate.
func (p *Plugin) Refresh(ctx context.Context) (bool, error) {
	p.mu.Lock()
	client := p.client
	p.mu.Unlock()

	if client == nil {
		p.set(false)
		return false, errors.New("redisgate: not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	n, err := client.Exists(ctx, p.key).Result()
	if err != nil {
		p.set(false)
		return false, fmt.Errorf("redisgate: exists %s: %w", p.key, err)
	}

	open := n > 0
	p.set(open)
	return open, nil
}

func (p *Plugin) set(open bool) {
	if prev := p.open.Swap(open); prev != open {
		p.logger.Info("redis gate changed", log.String("key", p.key), log.Bool("open", open))
	}
}

func (p *Plugin) refreshLoop(ctx context.Context) {
	defer p.wg.Done()

	bo := newBackoff(p.refreshInterval, p.maxBackoff)
	timer := time.NewTimer(p.refreshInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		delay := p.refreshInterval
		if _, err := p.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			delay = bo.Next()
			p.logger.Warn("redis gate: check failed",
				log.Err(err),
				log.Duration("retry_in", delay))
		} else {
			bo.Reset()
		}
		timer.Reset(delay)
	}
}

// Ensure Plugin implements gatecall.Plugin and gatecall.Gate.
var (
	_ gatecall.Plugin = (*Plugin)(nil)
	_ gatecall.Gate   = (*Plugin)(nil)
)
