package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Anandhg36/RMIT-Hackathon/internal/models"
)

// ReconcileService folds the user's course roster and the two
// classmate-match row sets into one deduplicated per-course view.
//
// Reconcile is pure and total: it performs no I/O, never fails, and
// malformed rows degrade to empty fields instead of aborting the pass.
// Callers own the orchestration rule that the engine is never invoked with
// partial inputs.
type ReconcileService struct {
	logger *zap.Logger
}

// NewReconcileService constructs the engine.
func NewReconcileService(logger *zap.Logger) *ReconcileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcileService{logger: logger}
}

// scheduleBuilder accumulates CourseSchedules keyed by course id while
// recording first-insertion order, so the output order is an explicit
// property rather than an accident of map iteration.
type scheduleBuilder struct {
	inScope map[models.CourseKey]models.Course
	byID    map[models.CourseKey]*models.CourseSchedule
	order   []models.CourseKey
}

// Reconcile merges the three inputs into an ordered CourseSchedule list.
//
// The roster serves only as a scope filter and enrichment lookup: courses
// referenced by no row never appear in the output, and courses referenced
// by rows but absent from the in-scope roster are materialized with a
// fallback name. Matched rows are applied first, then unmatched rows, each
// in original order; timetable fields are first-writer-wins and attendees
// are appended unconditionally from matched rows only.
func (s *ReconcileService) Reconcile(roster []models.Course, matched []models.MatchedRow, unmatched []models.NoMatchRow) []models.CourseSchedule {
	b := &scheduleBuilder{
		inScope: make(map[models.CourseKey]models.Course, len(roster)),
		byID:    make(map[models.CourseKey]*models.CourseSchedule),
	}
	for _, course := range roster {
		if course.InScope() {
			b.inScope[course.ID] = course
		}
	}

	for _, row := range matched {
		s.noteDegradedMatch(row)
		schedule := b.materialize(row.CourseID, row.CourseName)
		session := sessionFor(schedule, row.IsTheory)
		fillSession(session, row.Day, row.Time, row.Room)
		session.Attendees = append(session.Attendees, models.Attendee{
			UserID: row.UserID,
			Name:   row.UserName,
		})
	}

	for _, row := range unmatched {
		s.noteDegradedNoMatch(row)
		schedule := b.materialize(row.CourseID, row.CourseName)
		session := sessionFor(schedule, row.IsTheory)
		fillSession(session, row.Day, row.Time, row.Room)
	}

	out := make([]models.CourseSchedule, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, *b.byID[id])
	}
	return out
}

// materialize returns the schedule for the course id, creating it on first
// reference. Name precedence: in-scope roster entry, then the row's own
// course name, then a synthesized fallback.
func (b *scheduleBuilder) materialize(id models.CourseKey, rowName string) *models.CourseSchedule {
	if schedule, ok := b.byID[id]; ok {
		return schedule
	}

	name := ""
	code := ""
	if course, ok := b.inScope[id]; ok {
		name = course.Name
		code = course.Code
	}
	if name == "" {
		name = rowName
	}
	if name == "" {
		name = fmt.Sprintf("Course %s", id)
	}

	schedule := &models.CourseSchedule{
		ID:        id,
		Name:      name,
		Code:      code,
		Theory:    emptySession(),
		Practical: emptySession(),
	}
	b.byID[id] = schedule
	b.order = append(b.order, id)
	return schedule
}

func sessionFor(schedule *models.CourseSchedule, isTheory bool) *models.Session {
	if isTheory {
		return &schedule.Theory
	}
	return &schedule.Practical
}

// fillSession sets each timetable field at most once; later rows never
// overwrite an already-populated field even when they disagree.
func fillSession(session *models.Session, day, timeOfDay, room string) {
	if session.Day == "" {
		session.Day = day
	}
	if session.Time == "" {
		session.Time = timeOfDay
	}
	if session.Classroom == "" {
		session.Classroom = room
	}
}

func emptySession() models.Session {
	return models.Session{Attendees: []models.Attendee{}}
}

func (s *ReconcileService) noteDegradedMatch(row models.MatchedRow) {
	if row.Day == "" || row.Time == "" || row.Room == "" || row.UserName == "" {
		s.logger.Debug("matched row missing fields",
			zap.String("course_id", string(row.CourseID)),
			zap.Bool("is_theory", row.IsTheory),
		)
	}
}

func (s *ReconcileService) noteDegradedNoMatch(row models.NoMatchRow) {
	if row.Day == "" || row.Time == "" || row.Room == "" {
		s.logger.Debug("unmatched row missing fields",
			zap.String("course_id", string(row.CourseID)),
			zap.Bool("is_theory", row.IsTheory),
		)
	}
}
