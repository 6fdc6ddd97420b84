package app

import (
	"context"
	"time"

	"github.com/bft-labs/gatecall/internal/ports"
)

// DefaultPollInterval is the time between scheduler ticks.
const DefaultPollInterval = time.Second

// scheduler owns the single ticker goroutine shared by all pending entries.
// All methods except run must be called with the dispatcher lock held.
type scheduler struct {
	interval time.Duration
	workers  ports.WorkerGroup
	onTick   func(gen uint64)

	cancel context.CancelFunc // non-nil iff running
	gen    uint64
}

func newScheduler(interval time.Duration, workers ports.WorkerGroup, onTick func(gen uint64)) *scheduler {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &scheduler{
		interval: interval,
		workers:  workers,
		onTick:   onTick,
	}
}

// ensureRunningLocked starts the ticker goroutine unless it is already running.
func (s *scheduler) ensureRunningLocked() {
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.gen++

	gen := s.gen
	s.workers.Go(func() { s.run(ctx, gen) })
}

// stopLocked stops the ticker goroutine and clears the handle so the next
// enqueue can start a fresh one.
func (s *scheduler) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
}

// runningLocked reports whether the ticker goroutine is active.
func (s *scheduler) runningLocked() bool {
	return s.cancel != nil
}

// currentLocked reports whether gen belongs to the active ticker goroutine.
// Ticks from a goroutine that was stopped (and maybe replaced) are ignored.
func (s *scheduler) currentLocked(gen uint64) bool {
	return s.cancel != nil && s.gen == gen
}

// generationLocked returns the generation of the active ticker goroutine.
func (s *scheduler) generationLocked() uint64 {
	return s.gen
}

func (s *scheduler) run(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			s.onTick(gen)
		}
	}
}
