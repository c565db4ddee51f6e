package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/retainhq/retain/internal/core/domain"
	"github.com/retainhq/retain/internal/core/ports/driven"
)

// ==================== Review Store ====================

// reviewStore implements driven.ReviewStore.
type reviewStore struct {
	store *Store
}

var _ driven.ReviewStore = (*reviewStore)(nil)

// SaveSession records a completed review session.
func (s *reviewStore) SaveSession(ctx context.Context, session domain.ReviewSession) error {
	var avg sql.NullFloat64
	if session.AverageScore != nil {
		avg = sql.NullFloat64{Float64: *session.AverageScore, Valid: true}
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO review_sessions (id, knowledge_base_id, questions_count, average_score, session_date)
		VALUES (?, ?, ?, ?, ?)
	`, session.ID, session.KnowledgeBaseID, session.QuestionsCount, avg, session.SessionDate)

	if err != nil {
		return fmt.Errorf("saving review session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *reviewStore) GetSession(ctx context.Context, id string) (*domain.ReviewSession, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, knowledge_base_id, questions_count, average_score, session_date
		FROM review_sessions WHERE id = ?
	`, id)

	var session domain.ReviewSession
	var avg sql.NullFloat64
	if err := row.Scan(&session.ID, &session.KnowledgeBaseID,
		&session.QuestionsCount, &avg, &session.SessionDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning review session: %w", err)
	}
	if avg.Valid {
		session.AverageScore = &avg.Float64
	}
	return &session, nil
}

// UpdateSessionScore sets the average score of a session.
func (s *reviewStore) UpdateSessionScore(ctx context.Context, id string, averageScore float64) error {
	res, err := s.store.db.ExecContext(ctx,
		`UPDATE review_sessions SET average_score = ? WHERE id = ?`, averageScore, id)
	if err != nil {
		return fmt.Errorf("updating review session score: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating review session score: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListSessions returns the sessions of a knowledge base, most recent first.
func (s *reviewStore) ListSessions(ctx context.Context, kbID string) ([]domain.ReviewSession, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, knowledge_base_id, questions_count, average_score, session_date
		FROM review_sessions WHERE knowledge_base_id = ? ORDER BY session_date DESC
	`, kbID)
	if err != nil {
		return nil, fmt.Errorf("listing review sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.ReviewSession
	for rows.Next() {
		var session domain.ReviewSession
		var avg sql.NullFloat64
		if err := rows.Scan(&session.ID, &session.KnowledgeBaseID,
			&session.QuestionsCount, &avg, &session.SessionDate); err != nil {
			return nil, fmt.Errorf("scanning review session: %w", err)
		}
		if avg.Valid {
			session.AverageScore = &avg.Float64
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// CountSessions returns how many sessions a knowledge base has.
func (s *reviewStore) CountSessions(ctx context.Context, kbID string) (int, error) {
	var count int
	row := s.store.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM review_sessions WHERE knowledge_base_id = ?`, kbID)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting review sessions: %w", err)
	}
	return count, nil
}
