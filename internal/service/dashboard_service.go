package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/campushub/activity-points-api/internal/dto"
	"github.com/campushub/activity-points-api/internal/models"
	appErrors "github.com/campushub/activity-points-api/pkg/errors"
)

type dashboardSubmissionRepository interface {
	ListByUSN(ctx context.Context, usn string) ([]models.Submission, error)
	ListByUSNAndStatus(ctx context.Context, usn string, status models.SubmissionStatus) ([]models.Submission, error)
}

// DashboardService derives the per-student dashboard projection. The total
// is recomputed from the store on every call; there is no cached counter to
// maintain or invalidate, so it always reflects the latest adjudications.
type DashboardService struct {
	repo   dashboardSubmissionRepository
	logger *zap.Logger
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(repo dashboardSubmissionRepository, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, logger: logger}
}

// Dashboard returns the student's full submission list plus the sum of
// point values across submissions currently approved. A student with no
// submissions gets an empty list and a zero total.
func (s *DashboardService) Dashboard(ctx context.Context, usn string) (*dto.DashboardResponse, error) {
	submissions, err := s.repo.ListByUSN(ctx, usn)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch submissions")
	}

	approved, err := s.repo.ListByUSNAndStatus(ctx, usn, models.SubmissionApproved)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch approved submissions")
	}

	var total float64
	for _, submission := range approved {
		total += submission.Points
	}

	return &dto.DashboardResponse{
		Submissions: projectSubmissions(submissions),
		TotalPoints: total,
	}, nil
}
