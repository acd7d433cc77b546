package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushub/activity-points-api/internal/models"
)

// AdminRepository manages persistence for admin accounts.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository constructs an AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// Create inserts a new admin account.
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO admins (id, admin_id, name, pass_hash, created_at)
        VALUES (:id, :admin_id, :name, :pass_hash, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

// FindByAdminID fetches an admin account by its login identifier.
func (r *AdminRepository) FindByAdminID(ctx context.Context, adminID string) (*models.Admin, error) {
	const query = `SELECT id, admin_id, name, pass_hash, created_at FROM admins WHERE admin_id = $1`
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, adminID); err != nil {
		return nil, err
	}
	return &admin, nil
}

// ExistsByAdminID checks whether a login identifier is already taken.
func (r *AdminRepository) ExistsByAdminID(ctx context.Context, adminID string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM admins WHERE admin_id = $1 LIMIT 1", adminID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check admin id: %w", err)
	}
	return true, nil
}
