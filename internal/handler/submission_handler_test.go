package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushub/activity-points-api/internal/models"
	"github.com/campushub/activity-points-api/internal/service"
	"github.com/campushub/activity-points-api/pkg/response"
)

type submissionStoreStub struct {
	byID  map[string]*models.Submission
	order []string
}

func newSubmissionStoreStub() *submissionStoreStub {
	return &submissionStoreStub{byID: map[string]*models.Submission{}}
}

func (r *submissionStoreStub) Create(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	copied := *submission
	r.byID[submission.ID] = &copied
	r.order = append(r.order, submission.ID)
	return nil
}

func (r *submissionStoreStub) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	submission, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return submission, nil
}

func (r *submissionStoreStub) ListAll(ctx context.Context) ([]models.Submission, error) {
	out := make([]models.Submission, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out, nil
}

func (r *submissionStoreStub) ListByUSN(ctx context.Context, usn string) ([]models.Submission, error) {
	var out []models.Submission
	for _, id := range r.order {
		if r.byID[id].USN == usn {
			out = append(out, *r.byID[id])
		}
	}
	return out, nil
}

func (r *submissionStoreStub) ListByStatus(ctx context.Context, status models.SubmissionStatus) ([]models.Submission, error) {
	var out []models.Submission
	for _, id := range r.order {
		if r.byID[id].Status == status {
			out = append(out, *r.byID[id])
		}
	}
	return out, nil
}

func (r *submissionStoreStub) UpdateStatus(ctx context.Context, id string, status models.SubmissionStatus, approved bool) (*models.Submission, error) {
	submission, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	submission.Status = status
	submission.Approved = approved
	return submission, nil
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func multipartSubmission(t *testing.T, fields map[string]string, certificate []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if certificate != nil {
		part, err := writer.CreateFormFile("certificateImage", "cert.png")
		require.NoError(t, err)
		_, err = part.Write(certificate)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return buf, writer.FormDataContentType()
}

func TestSubmissionHandlerCreateMultipart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newSubmissionStoreStub()
	handler := NewSubmissionHandler(service.NewSubmissionService(repo, nil, zap.NewNop()))

	body, contentType := multipartSubmission(t, map[string]string{
		"eventName": "Hackathon",
		"point":     "10",
		"usn":       "1BY21CS001",
	}, []byte("png-bytes"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/events", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	data := envelope.Data.(map[string]interface{})
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, true, data["has_certificate"])
	require.Len(t, repo.byID, 1)
}

func TestSubmissionHandlerCreateRejectsBadPoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newSubmissionStoreStub()
	handler := NewSubmissionHandler(service.NewSubmissionService(repo, nil, zap.NewNop()))

	body, contentType := multipartSubmission(t, map[string]string{
		"eventName": "Hackathon",
		"point":     "ten",
		"usn":       "1BY21CS001",
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/events", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, repo.byID)
}

func TestSubmissionHandlerCertificateInline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newSubmissionStoreStub()
	mediaType := "image/jpeg"
	repo.byID["sub-1"] = &models.Submission{
		ID:              "sub-1",
		USN:             "1BY21CS001",
		Certificate:     []byte("jpeg-bytes"),
		CertificateType: &mediaType,
	}
	repo.order = append(repo.order, "sub-1")
	handler := NewSubmissionHandler(service.NewSubmissionService(repo, nil, zap.NewNop()))

	c, w := newGinContext(http.MethodGet, "/events/certificate/sub-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "sub-1"}}

	handler.Certificate(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Empty(t, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "jpeg-bytes", w.Body.String())
}

func TestSubmissionHandlerCertificateDownloadDisposition(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newSubmissionStoreStub()
	repo.byID["sub-1"] = &models.Submission{
		ID:          "sub-1",
		USN:         "1BY21CS001",
		Certificate: []byte("png-bytes"),
	}
	repo.order = append(repo.order, "sub-1")
	handler := NewSubmissionHandler(service.NewSubmissionService(repo, nil, zap.NewNop()))

	c, w := newGinContext(http.MethodGet, "/events/certificate/sub-1?download=1", nil)
	c.Params = gin.Params{{Key: "id", Value: "sub-1"}}

	handler.Certificate(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=certificate-sub-1.png", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
}

func TestSubmissionHandlerCertificateMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newSubmissionStoreStub()
	handler := NewSubmissionHandler(service.NewSubmissionService(repo, nil, zap.NewNop()))

	c, w := newGinContext(http.MethodGet, "/events/certificate/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Certificate(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}
