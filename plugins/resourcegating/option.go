package resourcegating

import "github.com/bft-labs/gatecall/pkg/gatecall"

// WithResourceGating returns a gatecall Option that enables resource gating.
// While the process is busy, requests wait in the queue instead of adding
// more load.
//
// Usage:
//
//	d, err := gatecall.New(cfg,
//	    resourcegating.WithResourceGating(resourcegating.Config{
//	        CPUThreshold: 0.90,
//	    }),
//	)
func WithResourceGating(cfg Config) gatecall.Option {
	return gatecall.WithPlugin(New(cfg))
}

// WithDefaultResourceGating returns a gatecall Option that enables resource
// gating with default settings (threshold 0.85, 12 goroutines per CPU).
//
// Usage:
//
//	d, err := gatecall.New(cfg, resourcegating.WithDefaultResourceGating())
func WithDefaultResourceGating() gatecall.Option {
	return WithResourceGating(DefaultConfig())
}
