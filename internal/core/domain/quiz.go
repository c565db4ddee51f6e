package domain

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Length limits for quiz text fields.
const (
	MaxQuestionLength = 2000
	MaxAnswerLength   = 5000
	MaxSnippetLength  = 1000
)

// Question is one AI-generated comprehension question for a knowledge base.
// ContextSnippet preserves the opening of the material the question was
// generated from, for display alongside the question.
type Question struct {
	ID              string
	KnowledgeBaseID string
	Text            string
	ContextSnippet  string
	GeneratedAt     time.Time
}

// NewQuestion creates a question record with a fresh ID and timestamp.
func NewQuestion(kbID, text, contextSnippet string) Question {
	return Question{
		ID:              uuid.New().String(),
		KnowledgeBaseID: kbID,
		Text:            text,
		ContextSnippet:  contextSnippet,
		GeneratedAt:     time.Now().UTC(),
	}
}

// Validate checks question text constraints.
func (q Question) Validate() error {
	if q.Text == "" || len(q.Text) > MaxQuestionLength {
		return ErrInvalidInput
	}
	if utf8.RuneCountInString(q.ContextSnippet) > MaxSnippetLength {
		return ErrInvalidInput
	}
	return nil
}

// Answer is one user response to a question, together with the AI grading
// once available. Score, Feedback and Suggestions are nil until the answer
// has been evaluated.
type Answer struct {
	ID          string
	QuestionID  string
	UserAnswer  string
	Score       *int
	Feedback    *string
	Suggestions []string
	AnsweredAt  time.Time
}

// NewAnswer creates an ungraded answer record.
func NewAnswer(questionID, userAnswer string) Answer {
	return Answer{
		ID:         uuid.New().String(),
		QuestionID: questionID,
		UserAnswer: userAnswer,
		AnsweredAt: time.Now().UTC(),
	}
}

// Validate checks answer text constraints.
func (a Answer) Validate() error {
	if a.UserAnswer == "" || len(a.UserAnswer) > MaxAnswerLength {
		return ErrInvalidInput
	}
	return nil
}

// Graded returns a copy of the answer with the evaluation applied.
func (a Answer) Graded(eval Evaluation) Answer {
	score := eval.Score
	feedback := eval.Feedback
	a.Score = &score
	a.Feedback = &feedback
	a.Suggestions = eval.Suggestions
	return a
}

// Evaluation is the structured grading result produced by an AI provider.
// It is transient: callers flatten it into an Answer record.
type Evaluation struct {
	Score       int
	Feedback    string
	Suggestions []string
}

// DegradedScore is assigned when a provider's reply cannot be parsed
// into a structured evaluation and the raw reply is kept as feedback.
const DegradedScore = 70

// ClampScore forces a score into the valid [0, 100] range.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// HistoryItem pairs a question with one of its answers, as returned by
// history queries ordered most recent first.
type HistoryItem struct {
	Question Question
	Answer   Answer
}

// HistoryFilter bounds a history query. Nil fields are unconstrained;
// a Limit of zero or less returns everything.
type HistoryFilter struct {
	MinScore  *int
	MaxScore  *int
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// IsZero reports whether no filter bounds are set.
func (f HistoryFilter) IsZero() bool {
	return f.MinScore == nil && f.MaxScore == nil && f.StartDate == nil &&
		f.EndDate == nil && f.Limit <= 0 && f.Offset <= 0
}
