package redisgate

import "github.com/bft-labs/gatecall/pkg/gatecall"

// WithRedisGate returns a gatecall Option that holds requests until the
// configured Redis key exists.
//
// Usage:
//
//	d, err := gatecall.New(cfg,
//	    redisgate.WithRedisGate(redisgate.Config{
//	        Addr: "localhost:6379",
//	        Key:  "session:ready",
//	    }),
//	)
func WithRedisGate(cfg Config) gatecall.Option {
	return gatecall.WithPlugin(New(cfg))
}
