package source

import (
	"context"

	"github.com/Anandhg36/RMIT-Hackathon/internal/models"
)

// MatchSource fetches the classmate-match results: rows where the matcher
// found classmates, and rows where it found the session but nobody in it.
type MatchSource struct {
	client *Client
}

// NewMatchSource constructs a MatchSource on a shared upstream client.
func NewMatchSource(client *Client) *MatchSource {
	return &MatchSource{client: client}
}

// Results returns both outcome sets for the user.
func (s *MatchSource) Results(ctx context.Context, userID string) (*models.MatchResults, error) {
	var results models.MatchResults
	if err := s.client.getJSON(ctx, userID, "/users/self/classmates", &results); err != nil {
		return nil, err
	}
	return &results, nil
}
