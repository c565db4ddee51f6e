// Package memory provides in-memory implementations of the driven
// store ports, used by service tests and as a lightweight backend when
// persistence is not needed.
package memory
