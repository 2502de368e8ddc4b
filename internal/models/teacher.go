package models

import "time"

// Teacher represents an instructor record.
type Teacher struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherAssignment pairs a teacher with a subject for one class: the
// teacher is qualified and assigned to teach that subject there.
type TeacherAssignment struct {
	ID        string    `db:"id" json:"id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TeacherAssignmentDetail joins the assignment with display names.
type TeacherAssignmentDetail struct {
	TeacherAssignment
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	SubjectName string `db:"subject_name" json:"subject_name"`
}

// TeacherAvailability is one contiguous weekly window in which a teacher may
// be scheduled. Days are 1-7 Monday-first; times are "HH:MM" 24-hour strings.
type TeacherAvailability struct {
	ID        string `db:"id" json:"id"`
	TeacherID string `db:"teacher_id" json:"teacher_id"`
	DayOfWeek int    `db:"day_of_week" json:"day_of_week"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
}
