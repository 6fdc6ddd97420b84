// Package log provides the logging abstraction used across gatecall.
//
// The dispatcher and its plugins log through the [Logger] interface so that
// embedding applications can route messages into their own logging setup.
// A zerolog-backed implementation and a no-op logger are provided.
//
// # Usage
//
//	logger := log.NewZerologLogger(zerolog.New(os.Stderr))
//	logger.Info("dispatcher started", log.Duration("poll", time.Second))
//
// Child loggers carry fields into every message:
//
//	reqLog := logger.With(log.RequestID(id))
//
// Use [NewNoopLogger] in tests or when no output is wanted.
package log
