package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushub/activity-points-api/internal/dto"
	"github.com/campushub/activity-points-api/internal/models"
	appErrors "github.com/campushub/activity-points-api/pkg/errors"
)

type submissionRepoStub struct {
	byID        map[string]*models.Submission
	order       []string
	createErr   error
	updateCalls int
}

func newSubmissionRepoStub() *submissionRepoStub {
	return &submissionRepoStub{byID: map[string]*models.Submission{}}
}

func (r *submissionRepoStub) Create(ctx context.Context, submission *models.Submission) error {
	if r.createErr != nil {
		return r.createErr
	}
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	copied := *submission
	r.byID[submission.ID] = &copied
	r.order = append(r.order, submission.ID)
	return nil
}

func (r *submissionRepoStub) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	submission, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *submission
	return &copied, nil
}

func (r *submissionRepoStub) ListAll(ctx context.Context) ([]models.Submission, error) {
	all := make([]models.Submission, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, *r.byID[id])
	}
	return all, nil
}

func (r *submissionRepoStub) ListByUSN(ctx context.Context, usn string) ([]models.Submission, error) {
	var out []models.Submission
	for _, id := range r.order {
		if r.byID[id].USN == usn {
			out = append(out, *r.byID[id])
		}
	}
	return out, nil
}

func (r *submissionRepoStub) ListByStatus(ctx context.Context, status models.SubmissionStatus) ([]models.Submission, error) {
	var out []models.Submission
	for _, id := range r.order {
		if r.byID[id].Status == status {
			out = append(out, *r.byID[id])
		}
	}
	return out, nil
}

func (r *submissionRepoStub) ListByUSNAndStatus(ctx context.Context, usn string, status models.SubmissionStatus) ([]models.Submission, error) {
	var out []models.Submission
	for _, id := range r.order {
		if r.byID[id].USN == usn && r.byID[id].Status == status {
			out = append(out, *r.byID[id])
		}
	}
	return out, nil
}

func (r *submissionRepoStub) ApprovedTotals(ctx context.Context) ([]models.StudentPoints, error) {
	totals := map[string]float64{}
	var usns []string
	for _, id := range r.order {
		s := r.byID[id]
		if s.Status != models.SubmissionApproved {
			continue
		}
		if _, seen := totals[s.USN]; !seen {
			usns = append(usns, s.USN)
		}
		totals[s.USN] += s.Points
	}
	out := make([]models.StudentPoints, 0, len(usns))
	for _, usn := range usns {
		out = append(out, models.StudentPoints{USN: usn, TotalPoints: totals[usn]})
	}
	return out, nil
}

func (r *submissionRepoStub) UpdateStatus(ctx context.Context, id string, status models.SubmissionStatus, approved bool) (*models.Submission, error) {
	r.updateCalls++
	submission, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	submission.Status = status
	submission.Approved = approved
	copied := *submission
	return &copied, nil
}

func newSubmissionServiceForTest() (*SubmissionService, *submissionRepoStub) {
	repo := newSubmissionRepoStub()
	return NewSubmissionService(repo, nil, zap.NewNop()), repo
}

func TestSubmissionServiceCreateStartsPending(t *testing.T) {
	svc, repo := newSubmissionServiceForTest()

	submission, err := svc.Create(context.Background(), dto.CreateSubmissionRequest{
		EventName:   "Hackathon",
		Points:      "12.5",
		Description: "24h event",
		USN:         "1BY21CS001",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, models.SubmissionPending, submission.Status)
	assert.False(t, submission.Approved)
	assert.Equal(t, 12.5, submission.Points)
	assert.NotEmpty(t, submission.ID)
	assert.Len(t, repo.byID, 1)
}

func TestSubmissionServiceCreateStoresCertificateVerbatim(t *testing.T) {
	svc, repo := newSubmissionServiceForTest()

	content := []byte{0xFF, 0xD8, 0x00, 0x01}
	submission, err := svc.Create(context.Background(), dto.CreateSubmissionRequest{
		EventName: "Sports Meet",
		Points:    "5",
		USN:       "1BY21CS002",
	}, &dto.CertificateUpload{Content: content, MediaType: "image/jpeg"})
	require.NoError(t, err)

	stored := repo.byID[submission.ID]
	assert.Equal(t, content, stored.Certificate)
	require.NotNil(t, stored.CertificateType)
	assert.Equal(t, "image/jpeg", *stored.CertificateType)
}

func TestSubmissionServiceCreateRejectsNonNumericPoints(t *testing.T) {
	svc, repo := newSubmissionServiceForTest()

	_, err := svc.Create(context.Background(), dto.CreateSubmissionRequest{
		EventName: "Quiz",
		Points:    "ten",
		USN:       "1BY21CS001",
	}, nil)
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, repo.byID)
}

func TestSubmissionServiceCreateRequiresEventNameAndUSN(t *testing.T) {
	svc, _ := newSubmissionServiceForTest()

	_, err := svc.Create(context.Background(), dto.CreateSubmissionRequest{
		EventName: "   ",
		Points:    "5",
		USN:       "1BY21CS001",
	}, nil)
	require.Error(t, err)

	_, err = svc.Create(context.Background(), dto.CreateSubmissionRequest{
		EventName: "Quiz",
		Points:    "5",
		USN:       "",
	}, nil)
	require.Error(t, err)
}

func TestSubmissionServiceAdjudicateRejectsUnknownDecision(t *testing.T) {
	svc, repo := newSubmissionServiceForTest()

	_, err := svc.Adjudicate(context.Background(), "some-id", models.SubmissionStatus("bogus"))
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "Invalid status", appErr.Message)
	assert.Zero(t, repo.updateCalls, "store must not be touched for an invalid decision")
}

func TestSubmissionServiceAdjudicatePendingIsNotADecision(t *testing.T) {
	svc, repo := newSubmissionServiceForTest()

	_, err := svc.Adjudicate(context.Background(), "some-id", models.SubmissionPending)
	require.Error(t, err)
	assert.Zero(t, repo.updateCalls)
}

func TestSubmissionServiceAdjudicateUnknownID(t *testing.T) {
	svc, _ := newSubmissionServiceForTest()

	_, err := svc.Adjudicate(context.Background(), "missing", models.SubmissionApproved)
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "Event not found", appErr.Message)
}

func TestSubmissionServiceAdjudicateOverwritesPriorDecision(t *testing.T) {
	svc, _ := newSubmissionServiceForTest()

	submission, err := svc.Create(context.Background(), dto.CreateSubmissionRequest{
		EventName: "Hackathon",
		Points:    "10",
		USN:       "1BY21CS001",
	}, nil)
	require.NoError(t, err)

	approved, err := svc.Adjudicate(context.Background(), submission.ID, models.SubmissionApproved)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionApproved, approved.Status)
	assert.True(t, approved.Approved)

	rejected, err := svc.Adjudicate(context.Background(), submission.ID, models.SubmissionRejected)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionRejected, rejected.Status)
	assert.False(t, rejected.Approved)
}

func TestSubmissionServiceListByStudentProjectsCertificateFlag(t *testing.T) {
	svc, _ := newSubmissionServiceForTest()

	_, err := svc.Create(context.Background(), dto.CreateSubmissionRequest{
		EventName: "With cert",
		Points:    "3",
		USN:       "1BY21CS001",
	}, &dto.CertificateUpload{Content: []byte("img"), MediaType: "image/png"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), dto.CreateSubmissionRequest{
		EventName: "Without cert",
		Points:    "4",
		USN:       "1BY21CS001",
	}, nil)
	require.NoError(t, err)

	views, err := svc.ListByStudent(context.Background(), "1BY21CS001")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.True(t, views[0].HasCertificate)
	assert.False(t, views[1].HasCertificate)
}

func TestSubmissionServiceAttachment(t *testing.T) {
	svc, _ := newSubmissionServiceForTest()

	submission, err := svc.Create(context.Background(), dto.CreateSubmissionRequest{
		EventName: "Hackathon",
		Points:    "10",
		USN:       "1BY21CS001",
	}, &dto.CertificateUpload{Content: []byte("certificate-bytes")})
	require.NoError(t, err)

	attachment, err := svc.Attachment(context.Background(), submission.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("certificate-bytes"), attachment.Content)
	assert.Equal(t, "image/png", attachment.MediaType, "declared type missing falls back to image/png")
}

func TestSubmissionServiceAttachmentMissing(t *testing.T) {
	svc, _ := newSubmissionServiceForTest()

	submission, err := svc.Create(context.Background(), dto.CreateSubmissionRequest{
		EventName: "No cert",
		Points:    "2",
		USN:       "1BY21CS001",
	}, nil)
	require.NoError(t, err)

	for _, id := range []string{submission.ID, "unknown-id"} {
		_, err := svc.Attachment(context.Background(), id)
		require.Error(t, err)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
		assert.Equal(t, "Certificate image not found", appErr.Message)
	}
}
