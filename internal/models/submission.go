package models

import "time"

// SubmissionStatus is the review state of an event submission.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// ValidDecision reports whether the status is an acceptable adjudication
// outcome. Pending is not a decision; it is only the initial state.
func (s SubmissionStatus) ValidDecision() bool {
	return s == SubmissionApproved || s == SubmissionRejected
}

// Submission is a student's claimed extracurricular event record. The
// Approved flag mirrors status == approved for older consumers and is kept
// in sync on every adjudication. The certificate bytes are stored verbatim
// alongside the declared media type; neither is ever validated or re-encoded.
type Submission struct {
	ID              string           `db:"id" json:"id"`
	USN             string           `db:"usn" json:"usn"`
	EventName       string           `db:"event_name" json:"event_name"`
	Points          float64          `db:"points" json:"points"`
	Description     string           `db:"description" json:"description,omitempty"`
	Status          SubmissionStatus `db:"status" json:"status"`
	Approved        bool             `db:"approved" json:"approved"`
	Certificate     []byte           `db:"certificate" json:"-"`
	CertificateType *string          `db:"certificate_type" json:"-"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}

// StudentPoints is one row of the approved-points aggregate.
type StudentPoints struct {
	USN         string  `db:"usn" json:"usn"`
	TotalPoints float64 `db:"total_points" json:"total_points"`
}

// HasCertificate reports whether an attachment was stored at creation time.
func (s Submission) HasCertificate() bool {
	return len(s.Certificate) > 0
}

// MediaType returns the declared certificate media type, defaulting to a
// generic image type when none was recorded. It is never inferred from the
// stored bytes.
func (s Submission) MediaType() string {
	if s.CertificateType != nil && *s.CertificateType != "" {
		return *s.CertificateType
	}
	return "image/png"
}
