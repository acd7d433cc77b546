package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushub/activity-points-api/internal/dto"
	"github.com/campushub/activity-points-api/internal/models"
	"github.com/campushub/activity-points-api/internal/repository"
	appErrors "github.com/campushub/activity-points-api/pkg/errors"
	"github.com/campushub/activity-points-api/pkg/jobs"
)

type reportRepoStub struct {
	jobs map[string]*models.ReportJob
}

func newReportRepoStub() *reportRepoStub {
	return &reportRepoStub{jobs: map[string]*models.ReportJob{}}
}

func (r *reportRepoStub) Create(ctx context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	r.jobs[job.ID] = job
	return nil
}

func (r *reportRepoStub) GetByID(ctx context.Context, id string) (*models.ReportJob, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return job, nil
}

func (r *reportRepoStub) Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error {
	job, ok := r.jobs[id]
	if !ok {
		return errors.New("not found")
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (r *reportRepoStub) ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error) {
	var queued []models.ReportJob
	for _, job := range r.jobs {
		if job.Status == models.ReportStatusQueued {
			queued = append(queued, *job)
		}
	}
	return queued, nil
}

func (r *reportRepoStub) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error) {
	return nil, nil
}

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func newReportServiceForTest(t *testing.T) (*ReportService, *reportRepoStub, *queueStub, *ExportService) {
	t.Helper()
	repo := newReportRepoStub()
	queue := &queueStub{}
	exporter := newExportServiceForTest(t, seedExportData(t))
	svc := NewReportService(repo, queue, exporter, zap.NewNop(), ReportServiceConfig{
		ResultTTL:       time.Hour,
		CleanupInterval: time.Hour,
		MaxRetries:      3,
	})
	return svc, repo, queue, exporter
}

func TestReportServiceCreateJob(t *testing.T) {
	svc, repo, queue, _ := newReportServiceForTest(t)

	resp, err := svc.CreateJob(context.Background(), dto.CreateReportRequest{
		Type:   models.ReportTypeApprovedPoints,
		Format: models.ReportFormatCSV,
	}, "rootadmin")
	require.NoError(t, err)

	assert.Equal(t, models.ReportStatusQueued, resp.Status)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, resp.ID, queue.jobs[0].ID)
	assert.Equal(t, "rootadmin", repo.jobs[resp.ID].CreatedBy)
}

func TestReportServiceCreateJobValidation(t *testing.T) {
	svc, _, queue, _ := newReportServiceForTest(t)
	ctx := context.Background()

	cases := []dto.CreateReportRequest{
		{Type: models.ReportType("unknown"), Format: models.ReportFormatCSV},
		{Type: models.ReportTypeApprovedPoints, Format: models.ReportFormat("xlsx")},
		{Type: models.ReportTypeStudentActivity, Format: models.ReportFormatCSV},
	}
	for _, req := range cases {
		_, err := svc.CreateJob(ctx, req, "rootadmin")
		require.Error(t, err)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	}
	assert.Empty(t, queue.jobs)
}

func TestReportServiceEnqueueFailureMarksJobFailed(t *testing.T) {
	svc, repo, queue, _ := newReportServiceForTest(t)
	queue.err = errors.New("queue full")

	_, err := svc.CreateJob(context.Background(), dto.CreateReportRequest{
		Type:   models.ReportTypeApprovedPoints,
		Format: models.ReportFormatCSV,
	}, "rootadmin")
	require.Error(t, err)

	require.Len(t, repo.jobs, 1)
	for _, job := range repo.jobs {
		assert.Equal(t, models.ReportStatusFailed, job.Status)
		require.NotNil(t, job.ErrorMessage)
	}
}

func TestReportWorkerFinishesJob(t *testing.T) {
	svc, repo, queue, exporter := newReportServiceForTest(t)
	ctx := context.Background()

	resp, err := svc.CreateJob(ctx, dto.CreateReportRequest{
		Type:   models.ReportTypeApprovedPoints,
		Format: models.ReportFormatCSV,
	}, "rootadmin")
	require.NoError(t, err)

	worker := NewReportWorker(repo, exporter, 3, zap.NewNop())
	require.NoError(t, worker.Handle(ctx, queue.jobs[0]))

	job := repo.jobs[resp.ID]
	assert.Equal(t, models.ReportStatusFinished, job.Status)
	assert.Equal(t, 100, job.Progress)
	require.NotNil(t, job.ResultURL)
	require.NotNil(t, job.FinishedAt)

	status, err := svc.GetStatus(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFinished, status.Status)
	require.NotNil(t, status.ResultURL)
}

func TestReportWorkerRequeuesOnEarlyFailure(t *testing.T) {
	repo := newReportRepoStub()
	exporter := newExportServiceForTest(t, seedExportData(t))
	job := &models.ReportJob{
		Type:   models.ReportTypeStudentActivity,
		Params: models.ReportJobParams{Format: models.ReportFormatCSV}, // missing usn
		Status: models.ReportStatusQueued,
	}
	require.NoError(t, repo.Create(context.Background(), job))

	worker := NewReportWorker(repo, exporter, 3, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: job.ID, Attempt: 0})
	require.Error(t, err)
	assert.Equal(t, models.ReportStatusQueued, repo.jobs[job.ID].Status)

	err = worker.Handle(context.Background(), jobs.Job{ID: job.ID, Attempt: 3})
	require.Error(t, err)
	assert.Equal(t, models.ReportStatusFailed, repo.jobs[job.ID].Status)
}

func TestReportServiceResolveDownload(t *testing.T) {
	svc, repo, queue, exporter := newReportServiceForTest(t)
	ctx := context.Background()

	resp, err := svc.CreateJob(ctx, dto.CreateReportRequest{
		Type:   models.ReportTypeApprovedPoints,
		Format: models.ReportFormatCSV,
	}, "rootadmin")
	require.NoError(t, err)

	worker := NewReportWorker(repo, exporter, 3, zap.NewNop())
	require.NoError(t, worker.Handle(ctx, queue.jobs[0]))

	token := extractToken(*repo.jobs[resp.ID].ResultURL)
	download, err := svc.ResolveDownload(ctx, token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, models.ReportFormatCSV, download.Format)
	assert.NotEmpty(t, download.Filename)

	_, err = svc.ResolveDownload(ctx, token+"x")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestReportServiceResolveDownloadRejectsUnfinished(t *testing.T) {
	svc, repo, _, exporter := newReportServiceForTest(t)
	ctx := context.Background()

	resp, err := svc.CreateJob(ctx, dto.CreateReportRequest{
		Type:   models.ReportTypeApprovedPoints,
		Format: models.ReportFormatCSV,
	}, "rootadmin")
	require.NoError(t, err)

	// A token can exist before the worker runs; a still-queued job must not
	// serve a file even with a valid signature.
	result, err := exporter.Generate(ctx, repo.jobs[resp.ID])
	require.NoError(t, err)
	url := result.URL
	repo.jobs[resp.ID].ResultURL = &url

	_, err = svc.ResolveDownload(ctx, result.Token)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestReportServiceRecoverPendingJobs(t *testing.T) {
	svc, repo, queue, _ := newReportServiceForTest(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.ReportJob{
		Type:   models.ReportTypeApprovedPoints,
		Params: models.ReportJobParams{Format: models.ReportFormatCSV},
		Status: models.ReportStatusQueued,
	}))

	svc.RecoverPendingJobs(ctx)
	assert.Len(t, queue.jobs, 1)
}
