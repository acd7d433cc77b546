package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushub/activity-points-api/internal/models"
)

// submissionColumns is the shared projection. Points may be NULL in storage;
// COALESCE keeps the aggregate arithmetic total even for damaged rows.
const submissionColumns = `id, usn, event_name, COALESCE(points, 0) AS points, COALESCE(description, '') AS description,
        status, approved, certificate, certificate_type, created_at, updated_at`

// SubmissionRepository manages persistence for event submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs a SubmissionRepository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create inserts a new submission row. New submissions always start pending
// with the approved mirror cleared.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = now
	}
	submission.UpdatedAt = now
	const query = `INSERT INTO submissions (id, usn, event_name, points, description, status, approved, certificate, certificate_type, created_at, updated_at)
        VALUES (:id, :usn, :event_name, :points, :description, :status, :approved, :certificate, :certificate_type, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// FindByID fetches a submission by identifier.
func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	query := fmt.Sprintf("SELECT %s FROM submissions WHERE id = $1", submissionColumns)
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, id); err != nil {
		return nil, err
	}
	return &submission, nil
}

// ListAll returns every submission, newest first.
func (r *SubmissionRepository) ListAll(ctx context.Context) ([]models.Submission, error) {
	query := fmt.Sprintf("SELECT %s FROM submissions ORDER BY created_at DESC", submissionColumns)
	var submissions []models.Submission
	if err := r.db.SelectContext(ctx, &submissions, query); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, nil
}

// ListByUSN returns all submissions owned by the given student.
func (r *SubmissionRepository) ListByUSN(ctx context.Context, usn string) ([]models.Submission, error) {
	query := fmt.Sprintf("SELECT %s FROM submissions WHERE usn = $1 ORDER BY created_at DESC", submissionColumns)
	var submissions []models.Submission
	if err := r.db.SelectContext(ctx, &submissions, query, usn); err != nil {
		return nil, fmt.Errorf("list submissions for %s: %w", usn, err)
	}
	return submissions, nil
}

// ListByStatus returns submissions in the given review state.
func (r *SubmissionRepository) ListByStatus(ctx context.Context, status models.SubmissionStatus) ([]models.Submission, error) {
	query := fmt.Sprintf("SELECT %s FROM submissions WHERE status = $1 ORDER BY created_at ASC", submissionColumns)
	var submissions []models.Submission
	if err := r.db.SelectContext(ctx, &submissions, query, status); err != nil {
		return nil, fmt.Errorf("list %s submissions: %w", status, err)
	}
	return submissions, nil
}

// ListByUSNAndStatus returns the student's submissions in the given state.
// The aggregation query uses this with the approved status.
func (r *SubmissionRepository) ListByUSNAndStatus(ctx context.Context, usn string, status models.SubmissionStatus) ([]models.Submission, error) {
	query := fmt.Sprintf("SELECT %s FROM submissions WHERE usn = $1 AND status = $2 ORDER BY created_at ASC", submissionColumns)
	var submissions []models.Submission
	if err := r.db.SelectContext(ctx, &submissions, query, usn, status); err != nil {
		return nil, fmt.Errorf("list %s submissions for %s: %w", status, usn, err)
	}
	return submissions, nil
}

// ApprovedTotals aggregates approved points per student, ordered by USN.
// Students with no approved submissions produce no row.
func (r *SubmissionRepository) ApprovedTotals(ctx context.Context) ([]models.StudentPoints, error) {
	const query = `SELECT usn, COALESCE(SUM(COALESCE(points, 0)), 0) AS total_points
        FROM submissions WHERE status = 'approved' GROUP BY usn ORDER BY usn ASC`
	var totals []models.StudentPoints
	if err := r.db.SelectContext(ctx, &totals, query); err != nil {
		return nil, fmt.Errorf("aggregate approved totals: %w", err)
	}
	return totals, nil
}

// UpdateStatus sets the review state and its boolean mirror in one row
// update. There is no transition guard: any state may overwrite any other.
// Returns the updated row, or sql.ErrNoRows when the id does not resolve.
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id string, status models.SubmissionStatus, approved bool) (*models.Submission, error) {
	query := fmt.Sprintf(`UPDATE submissions SET status = $2, approved = $3, updated_at = $4 WHERE id = $1
        RETURNING %s`, submissionColumns)
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, id, status, approved, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &submission, nil
}
