// Package driving provides interfaces for external actors (primary/inbound ports).
//
// These interfaces are implemented by the services in
// internal/core/services and consumed by driving adapters such as the
// REST API.
package driving
