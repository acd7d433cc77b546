package dto

import (
	"time"

	"github.com/campushub/activity-points-api/internal/models"
)

// CreateSubmissionRequest contains form fields submitted alongside an
// optional certificate upload. Points arrive as a raw form value and are
// parsed by the service so unparseable input fails validation, not storage.
type CreateSubmissionRequest struct {
	EventName   string `form:"eventName" json:"eventName"`
	Points      string `form:"point" json:"point"`
	Description string `form:"description" json:"description"`
	USN         string `form:"usn" json:"usn"`
}

// CertificateUpload carries the raw attachment as received.
type CertificateUpload struct {
	Content   []byte
	MediaType string
}

// SubmissionView is the list projection: the certificate bytes are replaced
// by a derived has_certificate flag.
type SubmissionView struct {
	ID             string                  `json:"id"`
	USN            string                  `json:"usn"`
	EventName      string                  `json:"event_name"`
	Points         float64                 `json:"points"`
	Description    string                  `json:"description,omitempty"`
	Status         models.SubmissionStatus `json:"status"`
	Approved       bool                    `json:"approved"`
	HasCertificate bool                    `json:"has_certificate"`
	CreatedAt      time.Time               `json:"created_at"`
}

// NewSubmissionView projects a submission for listing.
func NewSubmissionView(s models.Submission) SubmissionView {
	return SubmissionView{
		ID:             s.ID,
		USN:            s.USN,
		EventName:      s.EventName,
		Points:         s.Points,
		Description:    s.Description,
		Status:         s.Status,
		Approved:       s.Approved,
		HasCertificate: s.HasCertificate(),
		CreatedAt:      s.CreatedAt,
	}
}

// UpdateStatusRequest carries the adjudication decision.
type UpdateStatusRequest struct {
	Status models.SubmissionStatus `json:"status"`
}

// Attachment is the raw certificate payload served to clients.
type Attachment struct {
	Content   []byte
	MediaType string
}
