package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/classgrid/classgrid-api/internal/models"
)

// ClassRepository handles persistence for classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new repository instance.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// FindByID loads a single class.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	const query = `SELECT id, name, grade, created_at, updated_at FROM classes WHERE id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// ListIDs returns every class id, ordered by grade then name.
func (r *ClassRepository) ListIDs(ctx context.Context) ([]string, error) {
	const query = `SELECT id FROM classes ORDER BY grade ASC, name ASC`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("list class ids: %w", err)
	}
	return ids, nil
}
