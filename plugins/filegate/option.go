package filegate

import "github.com/bft-labs/gatecall/pkg/gatecall"

// WithFileGate returns a gatecall Option that holds requests until the
// configured file exists and is non-empty.
//
// Usage:
//
//	d, err := gatecall.New(cfg,
//	    filegate.WithFileGate(filegate.Config{Path: "/run/app/token"}),
//	)
func WithFileGate(cfg Config) gatecall.Option {
	return gatecall.WithPlugin(New(cfg))
}
