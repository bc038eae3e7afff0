package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Anandhg36/RMIT-Hackathon/internal/models"
)

func endAt(t *testing.T, value string) *time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return &ts
}

func TestReconcileMatchedRowPopulatesTheory(t *testing.T) {
	svc := NewReconcileService(zap.NewNop())

	roster := []models.Course{{ID: "1", Name: "Algo", EndAt: endAt(t, "2024-01-01")}}
	matched := []models.MatchedRow{{
		UserID: 7, UserName: "A", CourseID: "1",
		Day: "Mon", Time: "10:00", Room: "101",
		CourseName: "Algo", IsTheory: true,
	}}

	out := svc.Reconcile(roster, matched, nil)

	require.Len(t, out, 1)
	assert.Equal(t, models.CourseKey("1"), out[0].ID)
	assert.Equal(t, "Algo", out[0].Name)
	assert.Equal(t, models.Session{Day: "Mon", Time: "10:00", Classroom: "101",
		Attendees: []models.Attendee{{UserID: 7, Name: "A"}}}, out[0].Theory)
	assert.Equal(t, models.Session{Attendees: []models.Attendee{}}, out[0].Practical)
}

func TestReconcileUnmatchedOnlyCourse(t *testing.T) {
	svc := NewReconcileService(zap.NewNop())

	unmatched := []models.NoMatchRow{{
		CourseID: "2", Day: "Tue", Time: "14:00", Room: "B2", IsTheory: false,
	}}

	out := svc.Reconcile(nil, nil, unmatched)

	require.Len(t, out, 1)
	assert.Equal(t, "Course 2", out[0].Name)
	assert.Empty(t, out[0].Theory.Day)
	assert.Equal(t, "Tue", out[0].Practical.Day)
	assert.Equal(t, "14:00", out[0].Practical.Time)
	assert.Equal(t, "B2", out[0].Practical.Classroom)
	assert.Empty(t, out[0].Practical.Attendees)
}

func TestReconcileFirstWriterWinsPerField(t *testing.T) {
	svc := NewReconcileService(zap.NewNop())

	matched := []models.MatchedRow{
		{CourseID: "1", Day: "Mon", Time: "", Room: "101", UserID: 1, UserName: "A", IsTheory: true},
		{CourseID: "1", Day: "Wed", Time: "09:00", Room: "202", UserID: 2, UserName: "B", IsTheory: true},
	}

	out := svc.Reconcile(nil, matched, nil)

	require.Len(t, out, 1)
	// Day and Room stick with the first row; Time was still empty so the
	// second row fills it.
	assert.Equal(t, "Mon", out[0].Theory.Day)
	assert.Equal(t, "09:00", out[0].Theory.Time)
	assert.Equal(t, "101", out[0].Theory.Classroom)
	assert.Equal(t, []models.Attendee{{UserID: 1, Name: "A"}, {UserID: 2, Name: "B"}}, out[0].Theory.Attendees)
}

func TestReconcileUnmatchedNeverOverwritesOrAttends(t *testing.T) {
	svc := NewReconcileService(zap.NewNop())

	matched := []models.MatchedRow{
		{CourseID: "1", Day: "Mon", Time: "10:00", Room: "101", UserID: 1, UserName: "A", IsTheory: true},
	}
	unmatched := []models.NoMatchRow{
		{CourseID: "1", Day: "Fri", Time: "16:00", Room: "999", IsTheory: true},
	}

	out := svc.Reconcile(nil, matched, unmatched)

	require.Len(t, out, 1)
	assert.Equal(t, "Mon", out[0].Theory.Day)
	assert.Len(t, out[0].Theory.Attendees, 1)
}

func TestReconcileAttendeeAlwaysAppended(t *testing.T) {
	svc := NewReconcileService(zap.NewNop())

	// Session fields already populated by the unmatched pass order would not
	// matter; here the second matched row disagrees on every field but its
	// attendee still lands. Duplicate attendees are preserved in order.
	matched := []models.MatchedRow{
		{CourseID: "9", Day: "Mon", Time: "10:00", Room: "1", UserID: 5, UserName: "X", IsTheory: false},
		{CourseID: "9", Day: "Tue", Time: "11:00", Room: "2", UserID: 5, UserName: "X", IsTheory: false},
	}

	out := svc.Reconcile(nil, matched, nil)

	require.Len(t, out, 1)
	assert.Equal(t, []models.Attendee{{UserID: 5, Name: "X"}, {UserID: 5, Name: "X"}}, out[0].Practical.Attendees)
}

func TestReconcileRowNameBeatsFallbackRosterBeatsRow(t *testing.T) {
	svc := NewReconcileService(zap.NewNop())

	roster := []models.Course{
		{ID: "10", Name: "Data Management", Code: "ISYS5678", EndAt: endAt(t, "2025-06-30")},
		// No end_at: out of scope, must not enrich.
		{ID: "11", Name: "Old Shell"},
	}
	matched := []models.MatchedRow{
		{CourseID: "10", CourseName: "DM from row", UserID: 1, UserName: "A", IsTheory: true},
		{CourseID: "11", CourseName: "Networks", UserID: 2, UserName: "B", IsTheory: true},
		{CourseID: "12", UserID: 3, UserName: "C", IsTheory: true},
	}

	out := svc.Reconcile(roster, matched, nil)

	require.Len(t, out, 3)
	assert.Equal(t, "Data Management", out[0].Name)
	assert.Equal(t, "ISYS5678", out[0].Code)
	assert.Equal(t, "Networks", out[1].Name)
	assert.Equal(t, "Course 12", out[2].Name)
}

func TestReconcileRosterOnlyCourseNeverMaterialized(t *testing.T) {
	svc := NewReconcileService(zap.NewNop())

	roster := []models.Course{{ID: "42", Name: "Ghost", EndAt: endAt(t, "2025-01-01")}}

	out := svc.Reconcile(roster, nil, nil)

	assert.Empty(t, out)
}

func TestReconcileOutputOrderIsFirstInsertion(t *testing.T) {
	svc := NewReconcileService(zap.NewNop())

	matched := []models.MatchedRow{
		{CourseID: "b", UserID: 1, UserName: "A", IsTheory: true},
		{CourseID: "a", UserID: 2, UserName: "B", IsTheory: true},
		{CourseID: "b", UserID: 3, UserName: "C", IsTheory: false},
	}
	unmatched := []models.NoMatchRow{
		{CourseID: "c", IsTheory: true},
		{CourseID: "a", IsTheory: false},
	}

	out := svc.Reconcile(nil, matched, unmatched)

	require.Len(t, out, 3)
	assert.Equal(t, models.CourseKey("b"), out[0].ID)
	assert.Equal(t, models.CourseKey("a"), out[1].ID)
	assert.Equal(t, models.CourseKey("c"), out[2].ID)
}

func TestReconcileEachCourseAppearsExactlyOnce(t *testing.T) {
	svc := NewReconcileService(zap.NewNop())

	matched := []models.MatchedRow{
		{CourseID: "1", UserID: 1, UserName: "A", IsTheory: true},
		{CourseID: "2", UserID: 2, UserName: "B", IsTheory: false},
		{CourseID: "1", UserID: 3, UserName: "C", IsTheory: false},
	}
	unmatched := []models.NoMatchRow{
		{CourseID: "2", IsTheory: true},
		{CourseID: "3", IsTheory: true},
	}

	out := svc.Reconcile(nil, matched, unmatched)

	seen := map[models.CourseKey]int{}
	for _, schedule := range out {
		seen[schedule.ID]++
	}
	assert.Equal(t, map[models.CourseKey]int{"1": 1, "2": 1, "3": 1}, seen)
}

func TestReconcileIsIdempotent(t *testing.T) {
	svc := NewReconcileService(zap.NewNop())

	roster := []models.Course{{ID: "1", Name: "Algo", EndAt: endAt(t, "2024-01-01")}}
	matched := []models.MatchedRow{
		{CourseID: "1", Day: "Mon", Time: "10:00", Room: "101", UserID: 7, UserName: "A", IsTheory: true},
		{CourseID: "2", Day: "Tue", Time: "12:00", Room: "B1", UserID: 8, UserName: "B", IsTheory: false},
	}
	unmatched := []models.NoMatchRow{{CourseID: "3", Day: "Wed", IsTheory: true}}

	first := svc.Reconcile(roster, matched, unmatched)
	second := svc.Reconcile(roster, matched, unmatched)

	assert.Equal(t, first, second)
}

func TestReconcileMissingFieldsDegradeToEmpty(t *testing.T) {
	svc := NewReconcileService(zap.NewNop())

	matched := []models.MatchedRow{{CourseID: "1", UserID: 1, IsTheory: true}}

	out := svc.Reconcile(nil, matched, nil)

	require.Len(t, out, 1)
	assert.Equal(t, "", out[0].Theory.Day)
	assert.Equal(t, "", out[0].Theory.Time)
	assert.Equal(t, "", out[0].Theory.Classroom)
	require.Len(t, out[0].Theory.Attendees, 1)
	assert.Equal(t, "", out[0].Theory.Attendees[0].Name)
}
