package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/retainhq/retain/internal/core/domain"
	"github.com/retainhq/retain/internal/core/ports/driven"
)

// ==================== AI Config Store ====================

// aiConfigStore implements driven.AIConfigStore.
type aiConfigStore struct {
	store *Store
}

var _ driven.AIConfigStore = (*aiConfigStore)(nil)

// Save stores the configuration. Existing rows are cleared first so the
// table only ever holds the current configuration.
func (s *aiConfigStore) Save(ctx context.Context, cfg domain.AIConfig) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ai_config`); err != nil {
		return fmt.Errorf("clearing ai config: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ai_config (provider, api_key, api_url, model_name, max_tokens, temperature, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, string(cfg.Provider), nullString(cfg.APIKey), nullString(cfg.APIURL),
		nullString(cfg.ModelName), cfg.MaxTokens, cfg.Temperature, cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving ai config: %w", err)
	}

	return tx.Commit()
}

// Get retrieves the configuration.
func (s *aiConfigStore) Get(ctx context.Context) (*domain.AIConfig, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT provider, api_key, api_url, model_name, max_tokens, temperature, updated_at
		FROM ai_config ORDER BY updated_at DESC LIMIT 1
	`)

	var cfg domain.AIConfig
	var provider string
	var apiKey, apiURL, modelName sql.NullString
	if err := row.Scan(&provider, &apiKey, &apiURL, &modelName,
		&cfg.MaxTokens, &cfg.Temperature, &cfg.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning ai config: %w", err)
	}

	cfg.Provider = domain.AIProviderType(provider)
	cfg.APIKey = apiKey.String
	cfg.APIURL = apiURL.String
	cfg.ModelName = modelName.String
	return &cfg, nil
}
