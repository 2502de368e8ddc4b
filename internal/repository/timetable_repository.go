package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classgrid/classgrid-api/internal/models"
)

// TimetableRepository persists timetable entries. Write operations run inside
// a caller-supplied transaction so a generate-and-replace stays atomic.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository creates a new repository instance.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// ListByClass returns the class timetable for one academic year, joined with
// subject, teacher and slot details for display.
func (r *TimetableRepository) ListByClass(ctx context.Context, classID, academicYear string) ([]models.TimetableEntryDetail, error) {
	const query = `
SELECT te.id, te.class_id, te.subject_id, te.teacher_id, te.time_slot_id,
       te.academic_year, te.status, te.created_at, te.updated_at,
       s.name AS subject_name, t.full_name AS teacher_name,
       ts.day_of_week, ts.start_time, ts.end_time
FROM timetable_entries te
JOIN subjects s ON s.id = te.subject_id
JOIN teachers t ON t.id = te.teacher_id
JOIN time_slots ts ON ts.id = te.time_slot_id
WHERE te.class_id = $1 AND te.academic_year = $2
ORDER BY ts.day_of_week ASC, ts.start_time ASC`
	var entries []models.TimetableEntryDetail
	if err := r.db.SelectContext(ctx, &entries, query, classID, academicYear); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}

// ListByClassTx is ListByClass without joins, for use inside a write
// transaction.
func (r *TimetableRepository) ListByClassTx(ctx context.Context, tx *sqlx.Tx, classID, academicYear string) ([]models.TimetableEntry, error) {
	const query = `
SELECT id, class_id, subject_id, teacher_id, time_slot_id, academic_year, status, created_at, updated_at
FROM timetable_entries
WHERE class_id = $1 AND academic_year = $2`
	var entries []models.TimetableEntry
	if err := tx.SelectContext(ctx, &entries, query, classID, academicYear); err != nil {
		return nil, fmt.Errorf("list timetable entries in tx: %w", err)
	}
	return entries, nil
}

// LockClassTx takes a transaction-scoped advisory lock keyed on the class id.
// Concurrent writers for the same class serialize here; writers for other
// classes proceed unblocked. The lock releases on commit or rollback.
func (r *TimetableRepository) LockClassTx(ctx context.Context, tx *sqlx.Tx, classID string) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, classID); err != nil {
		return fmt.Errorf("lock class %s: %w", classID, err)
	}
	return nil
}

// ReplaceDraftTx deletes the class's draft entries for the year and inserts
// the given set in their place.
func (r *TimetableRepository) ReplaceDraftTx(ctx context.Context, tx *sqlx.Tx, classID, academicYear string, entries []models.TimetableEntry) error {
	const deleteQuery = `DELETE FROM timetable_entries WHERE class_id = $1 AND academic_year = $2 AND status = $3`
	if _, err := tx.ExecContext(ctx, deleteQuery, classID, academicYear, models.TimetableStatusDraft); err != nil {
		return fmt.Errorf("delete draft entries: %w", err)
	}

	const insertQuery = `INSERT INTO timetable_entries
		(id, class_id, subject_id, teacher_id, time_slot_id, academic_year, status, created_at, updated_at)
		VALUES (:id, :class_id, :subject_id, :teacher_id, :time_slot_id, :academic_year, :status, :created_at, :updated_at)`
	now := time.Now().UTC()
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		entries[i].CreatedAt = now
		entries[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, insertQuery, entries[i]); err != nil {
			return fmt.Errorf("insert timetable entry: %w", err)
		}
	}
	return nil
}

// UpdateTeacherTx reassigns the teacher on one draft slot of the class.
func (r *TimetableRepository) UpdateTeacherTx(ctx context.Context, tx *sqlx.Tx, classID, academicYear, timeSlotID, teacherID string) error {
	const query = `UPDATE timetable_entries
		SET teacher_id = $1, updated_at = $2
		WHERE class_id = $3 AND academic_year = $4 AND time_slot_id = $5 AND status = $6`
	if _, err := tx.ExecContext(ctx, query, teacherID, time.Now().UTC(), classID, academicYear, timeSlotID, models.TimetableStatusDraft); err != nil {
		return fmt.Errorf("update entry teacher: %w", err)
	}
	return nil
}

// ActivateDraftTx promotes the class's draft to active, replacing any
// previously active timetable for the year. Returns the number of entries
// promoted.
func (r *TimetableRepository) ActivateDraftTx(ctx context.Context, tx *sqlx.Tx, classID, academicYear string) (int64, error) {
	const deleteQuery = `DELETE FROM timetable_entries WHERE class_id = $1 AND academic_year = $2 AND status = $3`
	if _, err := tx.ExecContext(ctx, deleteQuery, classID, academicYear, models.TimetableStatusActive); err != nil {
		return 0, fmt.Errorf("delete active entries: %w", err)
	}

	const promoteQuery = `UPDATE timetable_entries
		SET status = $1, updated_at = $2
		WHERE class_id = $3 AND academic_year = $4 AND status = $5`
	result, err := tx.ExecContext(ctx, promoteQuery, models.TimetableStatusActive, time.Now().UTC(), classID, academicYear, models.TimetableStatusDraft)
	if err != nil {
		return 0, fmt.Errorf("promote draft entries: %w", err)
	}
	promoted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count promoted entries: %w", err)
	}
	return promoted, nil
}
