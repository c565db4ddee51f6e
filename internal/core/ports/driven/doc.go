// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
//
// These interfaces are defined by the core and implemented by adapters in
// internal/adapters/driven. Services depend on these abstractions, never
// on concrete adapters.
package driven
