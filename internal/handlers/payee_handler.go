package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Willysmile/cash-stuffing/internal/services"
)

// PayeeHandler handles payee-related requests.
type PayeeHandler struct {
	payeeService services.PayeeServicer
	auditService services.AuditServicer
}

// NewPayeeHandler creates a new PayeeHandler.
func NewPayeeHandler(payeeService services.PayeeServicer, auditService services.AuditServicer) *PayeeHandler {
	return &PayeeHandler{payeeService: payeeService, auditService: auditService}
}

// PayeeRequest is the payload for creating or renaming a payee.
type PayeeRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// CreatePayee creates a payee
// @Summary     Create payee
// @Description Create a payee. Names are unique per user, ignoring case.
// @Tags        payees
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body PayeeRequest true "Payee name"
// @Success     201 {object} models.Payee "Payee created"
// @Failure     400 {object} ErrorResponse "Invalid input or duplicate payee"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /payees [post]
func (h *PayeeHandler) CreatePayee(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PayeeRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	payee, err := h.payeeService.CreatePayee(userID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"payee": payee})
}

// GetPayees lists payees
// @Summary     List payees
// @Tags        payees
// @Produce     json
// @Security    BearerAuth
// @Param       skip   query int    false "Items to skip"
// @Param       limit  query int    false "Items to return (max 500)"
// @Param       search query string false "Search by name"
// @Success     200 {object} pagination.PageResponse[models.Payee] "Paginated payees"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /payees [get]
func (h *PayeeHandler) GetPayees(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.payeeService.GetUserPayees(userID, page, c.Query("search"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPayeeByID returns one payee
// @Summary     Get payee
// @Tags        payees
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Payee ID"
// @Success     200 {object} models.Payee "Payee"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Payee not found"
// @Router      /payees/{id} [get]
func (h *PayeeHandler) GetPayeeByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	payeeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	payee, err := h.payeeService.GetPayeeByID(userID, payeeID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payee": payee})
}

// UpdatePayee renames a payee
// @Summary     Rename payee
// @Tags        payees
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string       true "Payee ID"
// @Param       request body PayeeRequest true "New name"
// @Success     200 {object} models.Payee "Updated payee"
// @Failure     400 {object} ErrorResponse "Invalid input or duplicate payee"
// @Failure     404 {object} ErrorResponse "Payee not found"
// @Router      /payees/{id} [put]
func (h *PayeeHandler) UpdatePayee(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	payeeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PayeeRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	payee, err := h.payeeService.UpdatePayee(userID, payeeID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payee": payee})
}

// DeletePayee deletes a payee
// @Summary     Delete payee
// @Description Delete a payee. Transactions that referenced it keep existing without a payee.
// @Tags        payees
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Payee ID"
// @Success     200 {object} MessageResponse "Payee deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Payee not found"
// @Router      /payees/{id} [delete]
func (h *PayeeHandler) DeletePayee(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	payeeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.payeeService.DeletePayee(userID, payeeID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDeletePayee, "payee", payeeID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Payee deleted successfully"})
}
