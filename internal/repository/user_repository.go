package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/classgrid/classgrid-api/internal/models"
)

// UserRepository handles persistence for staff accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail loads an account by email. Returns sql.ErrNoRows when absent.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `
SELECT id, email, password_hash, full_name, role, active, last_login_at, created_at, updated_at
FROM users
WHERE email = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin stamps the account's last successful login time.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string) error {
	const query = `UPDATE users SET last_login_at = $1, updated_at = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}
