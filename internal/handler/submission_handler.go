package handler

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campushub/activity-points-api/internal/dto"
	"github.com/campushub/activity-points-api/internal/service"
	appErrors "github.com/campushub/activity-points-api/pkg/errors"
	"github.com/campushub/activity-points-api/pkg/response"
)

// SubmissionHandler exposes event submission endpoints.
type SubmissionHandler struct {
	service *service.SubmissionService
}

// NewSubmissionHandler creates a new handler.
func NewSubmissionHandler(svc *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{service: svc}
}

// Create godoc
// @Summary Submit an event record
// @Description Record an extracurricular event with an optional certificate image
// @Tags Submissions
// @Accept multipart/form-data
// @Produce json
// @Param eventName formData string true "Event name"
// @Param point formData string true "Claimed points"
// @Param description formData string false "Description"
// @Param usn formData string true "Student USN"
// @Param certificateImage formData file false "Certificate image"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /events [post]
func (h *SubmissionHandler) Create(c *gin.Context) {
	var req dto.CreateSubmissionRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid submission payload"))
		return
	}

	var upload *dto.CertificateUpload
	if fileHeader, err := c.FormFile("certificateImage"); err == nil {
		src, openErr := fileHeader.Open()
		if openErr != nil {
			response.Error(c, appErrors.Wrap(openErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open certificate"))
			return
		}
		defer src.Close()

		content, readErr := io.ReadAll(src)
		if readErr != nil {
			response.Error(c, appErrors.Wrap(readErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read certificate"))
			return
		}
		upload = &dto.CertificateUpload{
			Content:   content,
			MediaType: fileHeader.Header.Get("Content-Type"),
		}
	}

	submission, err := h.service.Create(c.Request.Context(), req, upload)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewSubmissionView(*submission))
}

// ListByStudent godoc
// @Summary List a student's submissions
// @Tags Submissions
// @Produce json
// @Param usn path string true "Student USN"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /events/{usn} [get]
func (h *SubmissionHandler) ListByStudent(c *gin.Context) {
	views, err := h.service.ListByStudent(c.Request.Context(), c.Param("usn"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// Certificate godoc
// @Summary Fetch a submission's certificate image
// @Description Serve the stored certificate bytes; ?download=1 forces an attachment disposition
// @Tags Submissions
// @Produce octet-stream
// @Param id path string true "Submission ID"
// @Param download query string false "Force download"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /events/certificate/{id} [get]
func (h *SubmissionHandler) Certificate(c *gin.Context) {
	id := c.Param("id")
	attachment, err := h.service.Attachment(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	if c.Query("download") == "1" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=certificate-%s.%s", id, extensionFor(attachment.MediaType)))
	}
	c.Data(http.StatusOK, attachment.MediaType, attachment.Content)
}

// extensionFor derives a file extension from the mime subtype, e.g.
// image/png -> png. Unrecognised values fall back to the subtype verbatim.
func extensionFor(mediaType string) string {
	if idx := strings.Index(mediaType, "/"); idx >= 0 && idx+1 < len(mediaType) {
		sub := mediaType[idx+1:]
		if semi := strings.Index(sub, ";"); semi >= 0 {
			sub = sub[:semi]
		}
		if sub != "" {
			return sub
		}
	}
	return "png"
}
