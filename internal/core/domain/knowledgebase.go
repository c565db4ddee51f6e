package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Name and description limits for knowledge bases.
const (
	MaxNameLength        = 255
	MaxDescriptionLength = 1000
)

// KnowledgeBase is a named collection of uploaded documents plus the
// questions and answers generated from them.
type KnowledgeBase struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewKnowledgeBase creates a knowledge base with a fresh ID and timestamps.
func NewKnowledgeBase(name, description string) KnowledgeBase {
	now := time.Now().UTC()
	return KnowledgeBase{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Touch bumps the update timestamp.
func (kb *KnowledgeBase) Touch() {
	kb.UpdatedAt = time.Now().UTC()
}

// Validate checks name and description constraints.
func (kb KnowledgeBase) Validate() error {
	if strings.TrimSpace(kb.Name) == "" || len(kb.Name) > MaxNameLength {
		return ErrInvalidInput
	}
	if len(kb.Description) > MaxDescriptionLength {
		return ErrInvalidInput
	}
	return nil
}
