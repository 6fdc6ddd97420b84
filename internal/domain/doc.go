// Package domain contains the core domain entities and value objects for gatecall.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (HTTP clients, timers, logging) and
// contains only the rules for building requests and classifying results.
//
// # Entities
//
//   - [Request]: An immutable outbound call (method, url, payload, headers, retry budget)
//   - [Params]: An ordered key/value payload that keeps insertion order on the wire
//   - [Outcome]: The classified result of one call, either [Success] or [*Failure]
//   - [Future]: The completion handle a caller waits on; resolved exactly once
//
// # Failures
//
// Every unsuccessful outcome is a [*Failure] carrying the request URL and method
// merged with whatever the transport reported. Use errors.Is with the sentinel
// errors in errors.go to tell the kinds apart.
package domain
