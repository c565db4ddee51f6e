// Package services implements the driving port interfaces. Services
// hold the application logic and depend only on domain types and
// driven ports.
package services
