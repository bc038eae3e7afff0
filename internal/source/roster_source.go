package source

import (
	"context"

	"github.com/Anandhg36/RMIT-Hackathon/internal/models"
)

// RosterSource fetches the user's enrolled courses from the LMS.
type RosterSource struct {
	client *Client
}

// NewRosterSource constructs a RosterSource on a shared upstream client.
func NewRosterSource(client *Client) *RosterSource {
	return &RosterSource{client: client}
}

// Courses returns the raw roster, shell and concluded enrollments included.
// Scope filtering happens during reconciliation, not here.
func (s *RosterSource) Courses(ctx context.Context, userID string) ([]models.Course, error) {
	var courses []models.Course
	if err := s.client.getJSON(ctx, userID, "/users/self/courses?per_page=100", &courses); err != nil {
		return nil, err
	}
	return courses, nil
}
