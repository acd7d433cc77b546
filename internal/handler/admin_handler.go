package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushub/activity-points-api/internal/dto"
	"github.com/campushub/activity-points-api/internal/service"
	appErrors "github.com/campushub/activity-points-api/pkg/errors"
	"github.com/campushub/activity-points-api/pkg/response"
)

// AdminHandler exposes the review console endpoints.
type AdminHandler struct {
	submissions *service.SubmissionService
	roster      *service.RosterService
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(submissions *service.SubmissionService, roster *service.RosterService) *AdminHandler {
	return &AdminHandler{submissions: submissions, roster: roster}
}

// Users godoc
// @Summary List registered student USNs
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/users [get]
func (h *AdminHandler) Users(c *gin.Context) {
	usns, cacheHit, err := h.roster.ListUSNs(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, usns, map[string]interface{}{"cache_hit": cacheHit})
}

// PendingEvents godoc
// @Summary List submissions awaiting review
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/events/pending [get]
func (h *AdminHandler) PendingEvents(c *gin.Context) {
	views, err := h.submissions.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// Events godoc
// @Summary List every submission
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/events [get]
func (h *AdminHandler) Events(c *gin.Context) {
	views, err := h.submissions.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// StudentEvents godoc
// @Summary List one student's submissions
// @Tags Admin
// @Produce json
// @Param usn path string true "Student USN"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/events/user/{usn} [get]
func (h *AdminHandler) StudentEvents(c *gin.Context) {
	views, err := h.submissions.ListByStudent(c.Request.Context(), c.Param("usn"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// UpdateStatus godoc
// @Summary Adjudicate a submission
// @Description Set a submission to approved or rejected; any decision may overwrite any earlier one
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body dto.UpdateStatusRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/events/{id}/status [patch]
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid status payload"))
		return
	}

	submission, err := h.submissions.Adjudicate(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dto.NewSubmissionView(*submission), nil)
}
