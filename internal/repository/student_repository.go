package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campushub/activity-points-api/internal/models"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO students (usn, name, college, password_hash, created_at)
        VALUES (:usn, :name, :college, :password_hash, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// FindByUSN fetches a student by enrollment number.
func (r *StudentRepository) FindByUSN(ctx context.Context, usn string) (*models.Student, error) {
	const query = `SELECT usn, name, college, password_hash, created_at FROM students WHERE usn = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, usn); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByUSN checks whether an enrollment number is already taken.
func (r *StudentRepository) ExistsByUSN(ctx context.Context, usn string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM students WHERE usn = $1 LIMIT 1", usn)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check usn: %w", err)
	}
	return true, nil
}

// ListUSNs returns every registered enrollment number in ascending order.
func (r *StudentRepository) ListUSNs(ctx context.Context) ([]string, error) {
	var usns []string
	if err := r.db.SelectContext(ctx, &usns, "SELECT usn FROM students ORDER BY usn ASC"); err != nil {
		return nil, fmt.Errorf("list usns: %w", err)
	}
	return usns, nil
}
