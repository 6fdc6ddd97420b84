// Package ports defines the interfaces (ports) that connect the dispatcher
// core to the outside world.
//
// Ports are the boundaries between the application core and the collaborators
// it does not own: the precondition that decides when requests may leave, the
// transport that performs them, and the observers that hear about failures.
//
// # Port Interfaces
//
//   - [Gate]: Decides whether requests may be sent right now
//   - [Transport]: Performs one request and classifies the result
//   - [ErrorHook]: Observes every failure before the caller does
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//   - [WorkerGroup]: Tracks goroutines so shutdown can wait for them
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) and plugins implement them.
package ports
