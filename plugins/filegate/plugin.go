// Package filegate provides a gate that is open while a token file exists
// and is non-empty. An application that writes its session token to disk
// once login completes can hold outbound calls until then.
package filegate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/gatecall/pkg/gatecall"
	"github.com/bft-labs/gatecall/pkg/log"
)

// Plugin watches a single file and exposes its presence as a gate.
// The gate value is kept in an atomic flag so IsOpen never touches the disk.
type Plugin struct {
	mu sync.Mutex

	// Configuration
	path          string
	debounceDelay time.Duration

	// Runtime state
	open     atomic.Bool
	logger   gatecall.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// Config holds configuration options for the file gate plugin.
type Config struct {
	// Path is the file whose presence opens the gate. Required.
	Path string

	// DebounceDelay is the delay to wait after a file event before the file
	// is checked again.
	// Default: 50 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults. Path must still be set.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 50 * time.Millisecond,
	}
}

// New creates a new file gate plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 50 * time.Millisecond
	}

	return &Plugin{
		path:          cfg.Path,
		debounceDelay: cfg.DebounceDelay,
		logger:        log.NewNoopLogger(),
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "filegate"
}

// Initialize checks the file once and starts watching its directory.
func (p *Plugin) Initialize(ctx context.Context, cfg gatecall.PluginConfig) error {
	if p.path == "" {
		return errors.New("filegate: path is required")
	}

	p.mu.Lock()
	if cfg.Logger != nil {
		p.logger = cfg.Logger
	}
	p.mu.Unlock()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("filegate: create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("filegate: watch %s: %w", filepath.Dir(p.path), err)
	}

	p.Refresh()

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	p.logger.Info("file gate initialized",
		log.String("path", p.path),
		log.Bool("open", p.IsOpen()))
	return nil
}

// Shutdown stops the watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

// IsOpen reports whether the file existed and was non-empty at the last check.
func (p *Plugin) IsOpen() bool {
	return p.open.Load()
}

// Refresh checks the file now and returns the new gate value.
func (p *Plugin) Refresh() bool {
	info, err := os.Stat(p.path)
	open := err == nil && info.Mode().IsRegular() && info.Size() > 0

	if prev := p.open.Swap(open); prev != open {
		p.mu.Lock()
		logger := p.logger
		p.mu.Unlock()
		logger.Info("file gate changed", log.String("path", p.path), log.Bool("open", open))
	}
	return open
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Clean(p.path)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			p.debounceRefresh()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("file gate watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceRefresh() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		p.Refresh()
	})
}

// Ensure Plugin implements gatecall.Plugin and gatecall.Gate.
var (
	_ gatecall.Plugin = (*Plugin)(nil)
	_ gatecall.Gate   = (*Plugin)(nil)
)
