package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Anandhg36/RMIT-Hackathon/internal/models"
)

// SelectionRepository keeps the per-user dashboard selection in Redis so it
// survives page reloads but expires on its own.
type SelectionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSelectionRepository constructs a selection repository.
func NewSelectionRepository(client *redis.Client, ttl time.Duration) *SelectionRepository {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SelectionRepository{client: client, ttl: ttl}
}

func selectionKey(userID string) string {
	return fmt.Sprintf("sel:user:%s", userID)
}

// Get returns the stored selection, or nil when none is stored.
func (r *SelectionRepository) Get(ctx context.Context, userID string) (*models.Selection, error) {
	if r.client == nil {
		return nil, nil
	}

	raw, err := r.client.Get(ctx, selectionKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get selection: %w", err)
	}

	var sel models.Selection
	if err := json.Unmarshal(raw, &sel); err != nil {
		return nil, fmt.Errorf("unmarshal selection: %w", err)
	}
	return &sel, nil
}

// Set stores the selection with the repository TTL.
func (r *SelectionRepository) Set(ctx context.Context, userID string, sel models.Selection) error {
	if r.client == nil {
		return nil
	}

	payload, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("marshal selection: %w", err)
	}
	if err := r.client.Set(ctx, selectionKey(userID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set selection: %w", err)
	}
	return nil
}
