package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// CourseKey is the normalized course identifier. Upstream payloads key
// courses inconsistently (string in the roster, number in match rows), so
// every ingestion path coerces the id through this type and all lookups
// compare normalized strings.
type CourseKey string

// UnmarshalJSON accepts both string and numeric course ids.
func (k *CourseKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*k = CourseKey(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("course id must be a string or number, got %s", string(data))
	}
	*k = CourseKey(n.String())
	return nil
}

// Course is one enrollment returned by the roster upstream. EndAt presence
// is the sole signal that the course belongs to the current timetabled set.
type Course struct {
	ID        CourseKey  `json:"id"`
	Name      string     `json:"name"`
	Code      string     `json:"course_code,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	StartAt   *time.Time `json:"start_at,omitempty"`
	EndAt     *time.Time `json:"end_at,omitempty"`
}

// InScope reports whether the course passes the scope filter used for
// name/metadata enrichment.
func (c Course) InScope() bool {
	return c.EndAt != nil
}

// MatchedRow is one classmate confirmed to share one session of one course.
type MatchedRow struct {
	UserID     int64     `json:"user_id"`
	UserName   string    `json:"user_name"`
	CourseID   CourseKey `json:"course_id"`
	Day        string    `json:"day_of_course"`
	Time       string    `json:"time_of_day"`
	Room       string    `json:"room_of_course"`
	CourseName string    `json:"course_name,omitempty"`
	IsTheory   bool      `json:"is_theory"`
}

// NoMatchRow is a known timetable slot with no confirmed classmates.
type NoMatchRow struct {
	CourseID   CourseKey `json:"course_id"`
	Day        string    `json:"day_of_course"`
	Time       string    `json:"time_of_day"`
	Room       string    `json:"room_of_course"`
	CourseName string    `json:"course_name,omitempty"`
	IsTheory   bool      `json:"is_theory"`
}

// MatchResults is the classmate-match upstream response: two disjoint row
// sets, one per outcome.
type MatchResults struct {
	Matched   []MatchedRow `json:"matched"`
	Unmatched []NoMatchRow `json:"unmatched"`
}

// Attendee is a classmate on a session roster. Duplicates from the source
// are preserved in arrival order.
type Attendee struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

// Session holds timetable facts for one theory or practical slot. Empty
// string means unknown.
type Session struct {
	Day       string     `json:"day"`
	Time      string     `json:"time"`
	Classroom string     `json:"classroom"`
	Attendees []Attendee `json:"attendees"`
}

// CourseSchedule is the merged per-course view: descriptive fields plus one
// theory and one practical session.
type CourseSchedule struct {
	ID        CourseKey `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"course_code,omitempty"`
	Theory    Session   `json:"theory"`
	Practical Session   `json:"practical"`
}

// SessionTab identifies which session pane the dashboard shows.
type SessionTab string

const (
	TabTheory    SessionTab = "theory"
	TabPractical SessionTab = "practical"
)

// Valid reports whether the tab is one of the two known panes.
func (t SessionTab) Valid() bool {
	return t == TabTheory || t == TabPractical
}

// Selection tracks which course and session tab the dashboard displays.
// A nil Index means nothing is selected.
type Selection struct {
	Index *int       `json:"selected_index"`
	Tab   SessionTab `json:"selected_tab"`
}

// SelectCourseRequest updates the selected course.
type SelectCourseRequest struct {
	Index int `json:"index" validate:"gte=0"`
}

// SwitchTabRequest updates the selected session tab.
type SwitchTabRequest struct {
	Tab SessionTab `json:"tab" validate:"required"`
}
