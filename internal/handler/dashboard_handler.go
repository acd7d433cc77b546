package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushub/activity-points-api/internal/service"
	"github.com/campushub/activity-points-api/pkg/response"
)

// DashboardHandler exposes the per-student aggregate view.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Dashboard godoc
// @Summary Student dashboard
// @Description Full submission history plus the approved point total, recomputed on every read
// @Tags Dashboard
// @Produce json
// @Param usn path string true "Student USN"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /dashboard/{usn} [get]
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	res, err := h.service.Dashboard(c.Request.Context(), c.Param("usn"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
