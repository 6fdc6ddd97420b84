// Package resourcegating provides a gate that holds outbound calls while the
// process is under heavy load.
package resourcegating

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/bft-labs/gatecall/pkg/gatecall"
	"github.com/bft-labs/gatecall/pkg/log"
)

// Sampler reports the current goroutine and CPU counts.
type Sampler func() (goroutines, cpus int)

// Plugin closes its gate while approximate load exceeds the threshold.
// Load is estimated from goroutines per CPU; it needs no OS-specific code.
type Plugin struct {
	mu sync.RWMutex

	// Configuration
	cpuThreshold     float64
	goroutinesPerCPU float64
	sample           Sampler

	// Runtime state
	logger gatecall.Logger
	busy   atomic.Bool
}

// Config holds configuration options for the resource gating plugin.
type Config struct {
	// CPUThreshold is the approximate load fraction (0.0-1.0) above which
	// the gate closes.
	// Default: 0.85
	CPUThreshold float64

	// GoroutinesPerCPU is the goroutine count per CPU treated as full load.
	// Default: 12
	GoroutinesPerCPU float64

	// Sampler overrides the runtime sampler. Used in tests.
	Sampler Sampler
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		CPUThreshold:     0.85,
		GoroutinesPerCPU: 12,
	}
}

// New creates a new resource gating plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.CPUThreshold <= 0 || cfg.CPUThreshold > 1 {
		cfg.CPUThreshold = 0.85
	}
	if cfg.GoroutinesPerCPU <= 0 {
		cfg.GoroutinesPerCPU = 12
	}
	if cfg.Sampler == nil {
		cfg.Sampler = runtimeSample
	}

	return &Plugin{
		cpuThreshold:     cfg.CPUThreshold,
		goroutinesPerCPU: cfg.GoroutinesPerCPU,
		sample:           cfg.Sampler,
		logger:           log.NewNoopLogger(),
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "resourcegating"
}

// Initialize sets up the plugin with the provided configuration.
func (p *Plugin) Initialize(ctx context.Context, cfg gatecall.PluginConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cfg.Logger != nil {
		p.logger = cfg.Logger
	}
	p.logger.Info("resource gating plugin initialized",
		log.Float64("cpu_threshold", p.cpuThreshold))

	return nil
}

// Shutdown releases plugin resources.
func (p *Plugin) Shutdown(ctx context.Context) error {
	return nil
}

// IsOpen reports whether load is at or below the threshold.
func (p *Plugin) IsOpen() bool {
	p.mu.RLock()
	threshold := p.cpuThreshold
	logger := p.logger
	p.mu.RUnlock()

	goroutines, cpus := p.sample()
	load := p.Load(goroutines, cpus)
	open := load <= threshold

	if wasBusy := p.busy.Swap(!open); wasBusy == open {
		if open {
			logger.Info("resource gate: load back under threshold",
				log.Float64("approx_load", load))
		} else {
			logger.Info("resource gate: high load, holding requests",
				log.Int("goroutines", goroutines),
				log.Int("cpus", cpus),
				log.Float64("approx_load", load),
				log.Float64("threshold", threshold))
		}
	}
	return open
}

// Load maps a goroutine and CPU count to an approximate load in [0, 1].
func (p *Plugin) Load(goroutines, cpus int) float64 {
	if cpus <= 0 {
		cpus = 1
	}
	load := float64(goroutines) / float64(cpus) / p.goroutinesPerCPU
	if load > 1 {
		load = 1
	}
	return load
}

func runtimeSample() (int, int) {
	return runtime.NumGoroutine(), runtime.NumCPU()
}

// Ensure Plugin implements gatecall.Plugin and gatecall.Gate.
var (
	_ gatecall.Plugin = (*Plugin)(nil)
	_ gatecall.Gate   = (*Plugin)(nil)
)
