package breaker

import "github.com/bft-labs/gatecall/pkg/gatecall"

// WithBreaker returns a gatecall Option that enables the circuit breaker.
//
// Usage:
//
//	d, err := gatecall.New(cfg,
//	    breaker.WithBreaker(breaker.Config{
//	        ConsecutiveFailures: 3,
//	        Timeout:             10 * time.Second,
//	    }),
//	)
func WithBreaker(cfg Config) gatecall.Option {
	return gatecall.WithPlugin(New(cfg))
}
