package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classgrid/classgrid-api/internal/models"
)

// TeacherAssignmentRepository persists teacher-subject assignments per class.
type TeacherAssignmentRepository struct {
	db *sqlx.DB
}

// NewTeacherAssignmentRepository constructs the repository.
func NewTeacherAssignmentRepository(db *sqlx.DB) *TeacherAssignmentRepository {
	return &TeacherAssignmentRepository{db: db}
}

// ListByClass returns qualified teacher-subject pairs for one class, with
// display names, in creation order so auto-picks stay stable across runs.
func (r *TeacherAssignmentRepository) ListByClass(ctx context.Context, classID string) ([]models.TeacherAssignmentDetail, error) {
	const query = `
SELECT ta.id, ta.teacher_id, ta.class_id, ta.subject_id, ta.created_at,
       t.full_name AS teacher_name, s.name AS subject_name
FROM teacher_assignments ta
JOIN teachers t ON t.id = ta.teacher_id
JOIN subjects s ON s.id = ta.subject_id
WHERE ta.class_id = $1
ORDER BY ta.created_at ASC, ta.id ASC`
	var assignments []models.TeacherAssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, classID); err != nil {
		return nil, fmt.Errorf("list teacher assignments: %w", err)
	}
	return assignments, nil
}

// Create inserts a new assignment.
func (r *TeacherAssignmentRepository) Create(ctx context.Context, assignment *models.TeacherAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO teacher_assignments (id, teacher_id, class_id, subject_id, created_at)
		VALUES (:id, :teacher_id, :class_id, :subject_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create teacher assignment: %w", err)
	}
	return nil
}
