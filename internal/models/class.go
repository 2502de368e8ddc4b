package models

import "time"

// Class represents an academic class or section.
type Class struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Grade     string    `db:"grade" json:"grade"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClassSubject maps a subject onto a class with its weekly-hour quota.
type ClassSubject struct {
	ID          string    `db:"id" json:"id"`
	ClassID     string    `db:"class_id" json:"class_id"`
	SubjectID   string    `db:"subject_id" json:"subject_id"`
	WeeklyHours int       `db:"weekly_hours" json:"weekly_hours"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ClassSubjectDetail joins the class-subject row with the subject name.
type ClassSubjectDetail struct {
	ClassSubject
	SubjectName string `db:"subject_name" json:"subject_name"`
}
