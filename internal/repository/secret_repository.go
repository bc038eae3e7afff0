package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Anandhg36/RMIT-Hackathon/internal/models"
)

// SecretRepository persists sealed upstream tokens, one row per user.
type SecretRepository struct {
	db *sqlx.DB
}

// NewSecretRepository creates a new instance of SecretRepository.
func NewSecretRepository(db *sqlx.DB) *SecretRepository {
	return &SecretRepository{db: db}
}

// Upsert inserts or replaces the user's sealed token.
func (r *SecretRepository) Upsert(ctx context.Context, secret *models.UserSecret) error {
	const query = `INSERT INTO user_secrets (user_id, upstream_token_enc, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET upstream_token_enc = EXCLUDED.upstream_token_enc, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, secret.UserID, secret.UpstreamTokenEnc, secret.UpdatedAt); err != nil {
		return fmt.Errorf("upsert user secret: %w", err)
	}
	return nil
}

// FindByUserID returns the sealed token row for a user.
func (r *SecretRepository) FindByUserID(ctx context.Context, userID string) (*models.UserSecret, error) {
	const query = `SELECT user_id, upstream_token_enc, updated_at FROM user_secrets WHERE user_id = $1 LIMIT 1`
	var secret models.UserSecret
	if err := r.db.GetContext(ctx, &secret, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user secret: %w", err)
	}
	return &secret, nil
}
