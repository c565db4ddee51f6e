package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/retainhq/retain/internal/core/domain"
	"github.com/retainhq/retain/internal/core/ports/driven"
)

// ==================== Quiz Store ====================

// quizStore implements driven.QuizStore.
type quizStore struct {
	store *Store
}

var _ driven.QuizStore = (*quizStore)(nil)

// SaveQuestion records a generated question.
func (s *quizStore) SaveQuestion(ctx context.Context, q domain.Question) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO questions (id, knowledge_base_id, question_text, context_snippet, generated_at)
		VALUES (?, ?, ?, ?, ?)
	`, q.ID, q.KnowledgeBaseID, q.Text, nullString(q.ContextSnippet), q.GeneratedAt)

	if err != nil {
		return fmt.Errorf("saving question: %w", err)
	}
	return nil
}

// GetQuestion retrieves a question by ID.
func (s *quizStore) GetQuestion(ctx context.Context, id string) (*domain.Question, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, knowledge_base_id, question_text, context_snippet, generated_at
		FROM questions WHERE id = ?
	`, id)

	var q domain.Question
	var snippet sql.NullString
	if err := row.Scan(&q.ID, &q.KnowledgeBaseID, &q.Text, &snippet, &q.GeneratedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning question: %w", err)
	}
	q.ContextSnippet = snippet.String
	return &q, nil
}

// SaveAnswer records a graded answer. Suggestions are stored as a JSON
// array in a text column.
func (s *quizStore) SaveAnswer(ctx context.Context, a domain.Answer) error {
	var suggestions sql.NullString
	if a.Suggestions != nil {
		data, err := json.Marshal(a.Suggestions)
		if err != nil {
			return fmt.Errorf("marshalling suggestions: %w", err)
		}
		suggestions = sql.NullString{String: string(data), Valid: true}
	}

	var score sql.NullInt64
	if a.Score != nil {
		score = sql.NullInt64{Int64: int64(*a.Score), Valid: true}
	}
	var feedback sql.NullString
	if a.Feedback != nil {
		feedback = sql.NullString{String: *a.Feedback, Valid: true}
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO answers (id, question_id, user_answer, ai_score, ai_feedback, ai_suggestions, answered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.QuestionID, a.UserAnswer, score, feedback, suggestions, a.AnsweredAt)

	if err != nil {
		return fmt.Errorf("saving answer: %w", err)
	}
	return nil
}

// History returns question/answer pairs matching the filter, most
// recent first. Filter bounds are applied in SQL with NULL guards so a
// single query serves every combination.
func (s *quizStore) History(ctx context.Context, kbID string, filter domain.HistoryFilter) ([]domain.HistoryItem, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT q.id, q.knowledge_base_id, q.question_text, q.context_snippet, q.generated_at,
		       a.id, a.user_answer, a.ai_score, a.ai_feedback, a.ai_suggestions, a.answered_at
		FROM questions q
		INNER JOIN answers a ON q.id = a.question_id
		WHERE q.knowledge_base_id = ?
		AND (? IS NULL OR a.ai_score >= ?)
		AND (? IS NULL OR a.ai_score <= ?)
		AND (? IS NULL OR a.answered_at >= ?)
		AND (? IS NULL OR a.answered_at <= ?)
		ORDER BY a.answered_at DESC
		LIMIT ? OFFSET ?
	`, kbID,
		nullInt(filter.MinScore), nullInt(filter.MinScore),
		nullInt(filter.MaxScore), nullInt(filter.MaxScore),
		nullTime(filter.StartDate), nullTime(filter.StartDate),
		nullTime(filter.EndDate), nullTime(filter.EndDate),
		sqlLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var history []domain.HistoryItem
	for rows.Next() {
		var item domain.HistoryItem
		var snippet, feedback, suggestions sql.NullString
		var score sql.NullInt64

		if err := rows.Scan(
			&item.Question.ID, &item.Question.KnowledgeBaseID, &item.Question.Text,
			&snippet, &item.Question.GeneratedAt,
			&item.Answer.ID, &item.Answer.UserAnswer, &score, &feedback,
			&suggestions, &item.Answer.AnsweredAt,
		); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}

		item.Question.ContextSnippet = snippet.String
		item.Answer.QuestionID = item.Question.ID
		if score.Valid {
			v := int(score.Int64)
			item.Answer.Score = &v
		}
		if feedback.Valid {
			item.Answer.Feedback = &feedback.String
		}
		if suggestions.Valid && suggestions.String != "" {
			if err := json.Unmarshal([]byte(suggestions.String), &item.Answer.Suggestions); err != nil {
				return nil, fmt.Errorf("unmarshalling suggestions: %w", err)
			}
		}

		history = append(history, item)
	}
	return history, rows.Err()
}

// RandomQuestions returns up to n answered questions in random order.
func (s *quizStore) RandomQuestions(ctx context.Context, kbID string, n int) ([]domain.Question, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT DISTINCT q.id, q.knowledge_base_id, q.question_text, q.context_snippet, q.generated_at
		FROM questions q
		INNER JOIN answers a ON q.id = a.question_id
		WHERE q.knowledge_base_id = ?
		ORDER BY RANDOM()
		LIMIT ?
	`, kbID, n)
	if err != nil {
		return nil, fmt.Errorf("querying random questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		var snippet sql.NullString
		if err := rows.Scan(&q.ID, &q.KnowledgeBaseID, &q.Text, &snippet, &q.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scanning question: %w", err)
		}
		q.ContextSnippet = snippet.String
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// sqlLimit converts the filter convention (zero means everything) into
// SQLite's (negative means everything).
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
