package dto

import "github.com/campushub/activity-points-api/internal/models"

// CreateReportRequest enqueues an asynchronous activity report.
type CreateReportRequest struct {
	Type   models.ReportType   `json:"type" binding:"required"`
	Format models.ReportFormat `json:"format" binding:"required"`
	USN    *string             `json:"usn,omitempty"`
}

// ReportJobResponse acknowledges an accepted report job.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress and, once finished, the signed
// download URL.
type ReportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ReportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"result_url,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
