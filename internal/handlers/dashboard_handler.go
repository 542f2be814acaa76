package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Willysmile/cash-stuffing/internal/services"
)

// DashboardHandler serves the money overview.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboard returns balance totals for the authenticated user
// @Summary     Dashboard
// @Description Total of active account balances, total held in envelopes and the unallocated rest
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.Dashboard "Dashboard"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	dashboard, err := h.dashboardService.GetDashboard(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
