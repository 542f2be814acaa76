package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Willysmile/cash-stuffing/internal/logger"
	"github.com/Willysmile/cash-stuffing/internal/services"
)

// PipelineHandler serves machine-to-machine maintenance endpoints.
type PipelineHandler struct {
	reconcileService services.ReconcileServicer
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(reconcileService services.ReconcileServicer) *PipelineHandler {
	return &PipelineHandler{reconcileService: reconcileService}
}

// Reconcile recalculates the balance of every active bank account
// @Summary     Reconcile balances
// @Description Rebuild every active account balance from its ledger and report how many drifted
// @Tags        pipeline
// @Produce     json
// @Param       X-API-Key header string true "Pipeline API key"
// @Success     200 {object} services.ReconcileResult "Reconciliation result"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /pipeline/reconcile [post]
func (h *PipelineHandler) Reconcile(c *gin.Context) {
	result, err := h.reconcileService.ReconcileAll()
	if err != nil {
		respondWithError(c, err)
		return
	}

	if result.AccountsCorrected > 0 {
		logger.Get().Warnw("Reconciliation corrected drifted balances",
			"accounts_checked", result.AccountsChecked,
			"accounts_corrected", result.AccountsCorrected,
			"client_ip", c.ClientIP(),
		)
	}

	c.JSON(http.StatusOK, result)
}
