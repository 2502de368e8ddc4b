package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/classgrid/classgrid-api/internal/models"
)

// ClassSubjectRepository reads the subject quotas attached to classes.
type ClassSubjectRepository struct {
	db *sqlx.DB
}

// NewClassSubjectRepository creates a new repository instance.
func NewClassSubjectRepository(db *sqlx.DB) *ClassSubjectRepository {
	return &ClassSubjectRepository{db: db}
}

// ListByClass returns the class's required subjects with weekly-hour quotas.
func (r *ClassSubjectRepository) ListByClass(ctx context.Context, classID string) ([]models.ClassSubjectDetail, error) {
	const query = `
SELECT cs.id, cs.class_id, cs.subject_id, cs.weekly_hours, cs.created_at,
       s.name AS subject_name
FROM class_subjects cs
JOIN subjects s ON s.id = cs.subject_id
WHERE cs.class_id = $1
ORDER BY cs.weekly_hours DESC, s.name ASC`
	var subjects []models.ClassSubjectDetail
	if err := r.db.SelectContext(ctx, &subjects, query, classID); err != nil {
		return nil, fmt.Errorf("list class subjects: %w", err)
	}
	return subjects, nil
}
