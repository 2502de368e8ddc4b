package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/classgrid/classgrid-api/internal/models"
)

// AvailabilityRepository reads teacher weekly availability windows.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository creates a new repository instance.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// ListByTeacher returns one teacher's availability windows.
func (r *AvailabilityRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.TeacherAvailability, error) {
	const query = `
SELECT id, teacher_id, day_of_week, start_time, end_time
FROM teacher_availability
WHERE teacher_id = $1
ORDER BY day_of_week ASC, start_time ASC`
	var windows []models.TeacherAvailability
	if err := r.db.SelectContext(ctx, &windows, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher availability: %w", err)
	}
	return windows, nil
}

// ListByTeachers returns availability windows for a set of teachers.
func (r *AvailabilityRepository) ListByTeachers(ctx context.Context, teacherIDs []string) ([]models.TeacherAvailability, error) {
	if len(teacherIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`
SELECT id, teacher_id, day_of_week, start_time, end_time
FROM teacher_availability
WHERE teacher_id IN (?)
ORDER BY teacher_id ASC, day_of_week ASC, start_time ASC`, teacherIDs)
	if err != nil {
		return nil, fmt.Errorf("build availability query: %w", err)
	}
	query = r.db.Rebind(query)

	var windows []models.TeacherAvailability
	if err := r.db.SelectContext(ctx, &windows, query, args...); err != nil {
		return nil, fmt.Errorf("list availability by teachers: %w", err)
	}
	return windows, nil
}
