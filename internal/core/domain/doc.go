// Package domain defines the core business entities for Retain.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies beyond the standard library and the
// uuid generator, and defines the fundamental types:
//
//   - KnowledgeBase: A named collection of learning materials
//   - Document: An uploaded file with its extracted text
//   - Question / Answer: One AI quiz exchange
//   - ReviewSession: A batch of questions revisited from history
//   - AIConfig: The active AI provider configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
package domain
