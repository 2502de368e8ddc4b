package models

import "time"

// Timetable entry statuses. The generator only ever writes drafts; an admin
// activates a reviewed draft explicitly.
const (
	TimetableStatusDraft  = "draft"
	TimetableStatusActive = "active"
)

// TimeSlot is one cell of the school's fixed weekly grid.
type TimeSlot struct {
	ID        string `db:"id" json:"id"`
	DayOfWeek int    `db:"day_of_week" json:"day_of_week"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
	IsBreak   bool   `db:"is_break" json:"is_break"`
}

// TimetableEntry is one persisted (class, subject, teacher, slot) placement.
type TimetableEntry struct {
	ID           string    `db:"id" json:"id"`
	ClassID      string    `db:"class_id" json:"class_id"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	TeacherID    string    `db:"teacher_id" json:"teacher_id"`
	TimeSlotID   string    `db:"time_slot_id" json:"time_slot_id"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// TimetableEntryDetail joins an entry with its slot and display names for
// listings and exports.
type TimetableEntryDetail struct {
	TimetableEntry
	SubjectName string `db:"subject_name" json:"subject_name"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	DayOfWeek   int    `db:"day_of_week" json:"day_of_week"`
	StartTime   string `db:"start_time" json:"start_time"`
	EndTime     string `db:"end_time" json:"end_time"`
}
