package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/classgrid/classgrid-api/internal/models"
)

// TimeSlotRepository reads the school's weekly slot grid.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository creates a new repository instance.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// List returns the full weekly grid ordered by day then start time.
func (r *TimeSlotRepository) List(ctx context.Context) ([]models.TimeSlot, error) {
	const query = `
SELECT id, day_of_week, start_time, end_time, is_break
FROM time_slots
ORDER BY day_of_week ASC, start_time ASC`
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}
