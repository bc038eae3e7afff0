package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/Anandhg36/RMIT-Hackathon/pkg/errors"
)

type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) Token(context.Context, string) (string, error) {
	return s.token, s.err
}

func newTestClient(t *testing.T, handler http.Handler, tokens TokenProvider) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, time.Second, tokens, zap.NewNop()), server
}

func TestRosterSourceFetchesCourses(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/users/self/courses", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 40613, "name": "Algorithms", "course_code": "COSC1234", "end_at": "2026-11-20T08:00:00Z"},
			{"id": "40614", "name": "Shell Course"}
		]`))
	})
	client, _ := newTestClient(t, handler, staticTokens{token: "tok-abc"})
	src := NewRosterSource(client)

	courses, err := src.Courses(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-abc", gotAuth)
	require.Len(t, courses, 2)

	// Numeric and string ids normalise to the same key space.
	assert.EqualValues(t, "40613", courses[0].ID)
	assert.EqualValues(t, "40614", courses[1].ID)
	assert.True(t, courses[0].InScope())
	assert.False(t, courses[1].InScope())
}

func TestMatchSourceFetchesBothOutcomeSets(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/self/classmates", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"matched": [
				{"user_id": 7, "user_name": "Mai", "course_id": 40613, "day_of_course": "Mon", "time_of_day": "09:00", "room_of_course": "B2", "is_theory": true}
			],
			"unmatched": [
				{"course_id": "40614", "day_of_course": "Tue", "time_of_day": "13:00", "room_of_course": "A1", "is_theory": false}
			]
		}`))
	})
	client, _ := newTestClient(t, handler, staticTokens{token: "tok-abc"})
	src := NewMatchSource(client)

	results, err := src.Results(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, results.Matched, 1)
	require.Len(t, results.Unmatched, 1)
	assert.EqualValues(t, "40613", results.Matched[0].CourseID)
	assert.Equal(t, "Mai", results.Matched[0].UserName)
	assert.EqualValues(t, "40614", results.Unmatched[0].CourseID)
	assert.False(t, results.Unmatched[0].IsTheory)
}

func TestClientMapsAuthFailureToTokenNotSet(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	client, _ := newTestClient(t, handler, staticTokens{token: "stale"})
	src := NewRosterSource(client)

	_, err := src.Courses(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTokenNotSet.Code, appErrors.FromError(err).Code)
}

func TestClientSurfacesServerErrors(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	client, _ := newTestClient(t, handler, staticTokens{token: "tok"})
	src := NewMatchSource(client)

	_, err := src.Results(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClientPropagatesTokenProviderError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected when the token cannot be resolved")
	})
	client, _ := newTestClient(t, handler, staticTokens{err: appErrors.Clone(appErrors.ErrTokenNotSet, "")})
	src := NewRosterSource(client)

	_, err := src.Courses(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTokenNotSet.Code, appErrors.FromError(err).Code)
}

func TestClientHonoursContextCancellation(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	client, _ := newTestClient(t, handler, staticTokens{token: "tok"})
	src := NewRosterSource(client)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := src.Courses(ctx, "u1")
	require.Error(t, err)
}
