// Package sqlite provides SQLite-backed implementations of the driven
// store ports. A single Store owns the database handle; per-port
// wrapper types expose it through the store interfaces.
package sqlite
