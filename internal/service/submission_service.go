package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushub/activity-points-api/internal/dto"
	"github.com/campushub/activity-points-api/internal/models"
	appErrors "github.com/campushub/activity-points-api/pkg/errors"
)

type submissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	ListAll(ctx context.Context) ([]models.Submission, error)
	ListByUSN(ctx context.Context, usn string) ([]models.Submission, error)
	ListByStatus(ctx context.Context, status models.SubmissionStatus) ([]models.Submission, error)
	UpdateStatus(ctx context.Context, id string, status models.SubmissionStatus, approved bool) (*models.Submission, error)
}

// SubmissionService owns the submission lifecycle: creation into the pending
// state and adjudication into approved or rejected.
type SubmissionService struct {
	repo      submissionRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubmissionService constructs the submission service.
func NewSubmissionService(repo submissionRepository, validate *validator.Validate, logger *zap.Logger) *SubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{repo: repo, validator: validate, logger: logger}
}

// Create persists a new submission. It always starts pending with the
// approved mirror cleared, whatever the caller sent. The certificate bytes
// and declared media type are stored verbatim when provided.
func (s *SubmissionService) Create(ctx context.Context, req dto.CreateSubmissionRequest, upload *dto.CertificateUpload) (*models.Submission, error) {
	eventName := strings.TrimSpace(req.EventName)
	usn := strings.TrimSpace(req.USN)
	if eventName == "" || usn == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "eventName and usn are required")
	}
	points, err := strconv.ParseFloat(strings.TrimSpace(req.Points), 64)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "point must be a number")
	}

	submission := &models.Submission{
		USN:         usn,
		EventName:   eventName,
		Points:      points,
		Description: req.Description,
		Status:      models.SubmissionPending,
		Approved:    false,
	}
	if upload != nil && len(upload.Content) > 0 {
		submission.Certificate = upload.Content
		if upload.MediaType != "" {
			mediaType := upload.MediaType
			submission.CertificateType = &mediaType
		}
	}

	if err := s.repo.Create(ctx, submission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}

	s.logger.Info("submission created",
		zap.String("id", submission.ID),
		zap.String("usn", submission.USN),
		zap.Float64("points", submission.Points),
	)
	return submission, nil
}

// Adjudicate sets the review decision on a submission. The transition is a
// plain overwrite: re-adjudicating an already decided submission replaces
// the prior decision, in either direction. The approved mirror always equals
// status == approved afterwards.
func (s *SubmissionService) Adjudicate(ctx context.Context, id string, decision models.SubmissionStatus) (*models.Submission, error) {
	if !decision.ValidDecision() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Invalid status")
	}

	submission, err := s.repo.UpdateStatus(ctx, id, decision, decision == models.SubmissionApproved)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event status")
	}

	s.logger.Info("submission adjudicated",
		zap.String("id", submission.ID),
		zap.String("status", string(submission.Status)),
	)
	return submission, nil
}

// List returns every submission as a list projection.
func (s *SubmissionService) List(ctx context.Context) ([]dto.SubmissionView, error) {
	submissions, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch events")
	}
	return projectSubmissions(submissions), nil
}

// ListByStudent returns a student's submissions with the derived
// has_certificate flag in place of the raw bytes.
func (s *SubmissionService) ListByStudent(ctx context.Context, usn string) ([]dto.SubmissionView, error) {
	submissions, err := s.repo.ListByUSN(ctx, usn)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user's events")
	}
	return projectSubmissions(submissions), nil
}

// ListPending returns submissions awaiting review, oldest first.
func (s *SubmissionService) ListPending(ctx context.Context) ([]dto.SubmissionView, error) {
	submissions, err := s.repo.ListByStatus(ctx, models.SubmissionPending)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch pending events")
	}
	return projectSubmissions(submissions), nil
}

// Attachment returns the stored certificate bytes and declared media type.
// Missing submission and missing attachment are both NotFound.
func (s *SubmissionService) Attachment(ctx context.Context, id string) (*dto.Attachment, error) {
	submission, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Certificate image not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if !submission.HasCertificate() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Certificate image not found")
	}
	return &dto.Attachment{
		Content:   submission.Certificate,
		MediaType: submission.MediaType(),
	}, nil
}

func projectSubmissions(submissions []models.Submission) []dto.SubmissionView {
	views := make([]dto.SubmissionView, 0, len(submissions))
	for _, submission := range submissions {
		views = append(views, dto.NewSubmissionView(submission))
	}
	return views
}
