package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/Willysmile/cash-stuffing/internal/errors"
	"github.com/Willysmile/cash-stuffing/internal/services"
)

// EnvelopeHandler handles envelope-related requests.
type EnvelopeHandler struct {
	envelopeService services.EnvelopeServicer
	auditService    services.AuditServicer
}

// NewEnvelopeHandler creates a new EnvelopeHandler.
func NewEnvelopeHandler(envelopeService services.EnvelopeServicer, auditService services.AuditServicer) *EnvelopeHandler {
	return &EnvelopeHandler{envelopeService: envelopeService, auditService: auditService}
}

// CreateEnvelopeRequest represents the request payload for creating an envelope.
// Leave bank_account_id empty for a cash envelope.
type CreateEnvelopeRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=100"`
	Description   string          `json:"description" binding:"max=500"`
	BankAccountID *string         `json:"bank_account_id"`
	CategoryID    *string         `json:"category_id"`
	TargetAmount  decimal.Decimal `json:"target_amount" binding:"gte=0"`
	Color         string          `json:"color" binding:"omitempty,hex_color"`
	Icon          string          `json:"icon" binding:"max=50"`
}

// UpdateEnvelopeRequest represents the request payload for updating an envelope.
// An empty bank_account_id turns the envelope into a cash envelope.
type UpdateEnvelopeRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Description   *string          `json:"description" binding:"omitempty,max=500"`
	BankAccountID *string          `json:"bank_account_id"`
	CategoryID    *string          `json:"category_id"`
	TargetAmount  *decimal.Decimal `json:"target_amount" binding:"omitempty,gte=0"`
	Color         *string          `json:"color" binding:"omitempty,hex_color"`
	Icon          *string          `json:"icon" binding:"omitempty,max=50"`
	IsActive      *bool            `json:"is_active"`
}

// AdjustEnvelopeRequest represents the request payload for a manual deposit or withdrawal.
type AdjustEnvelopeRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"gt=0"`
	Direction int             `json:"direction" binding:"required,oneof=1 -1"`
}

// ReallocateRequest represents the request payload for moving money between envelopes.
type ReallocateRequest struct {
	FromEnvelopeID string          `json:"from_envelope_id" binding:"required"`
	ToEnvelopeID   string          `json:"to_envelope_id" binding:"required"`
	Amount         decimal.Decimal `json:"amount" binding:"gt=0"`
	Description    string          `json:"description" binding:"max=255"`
}

// CreateEnvelope handles the creation of a new envelope
// @Summary     Create envelope
// @Description Create a budget envelope, bound to a bank account or held as cash. It starts empty.
// @Tags        envelopes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateEnvelopeRequest true "Envelope details"
// @Success     201 {object} models.Envelope "Envelope created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Bank account or category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /envelopes [post]
func (h *EnvelopeHandler) CreateEnvelope(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateEnvelopeRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := optionalID(req.BankAccountID, "bank_account_id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	categoryID, err := optionalID(req.CategoryID, "category_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	envelope, err := h.envelopeService.CreateEnvelope(userID, services.EnvelopeInput{
		Name:          req.Name,
		Description:   req.Description,
		BankAccountID: accountID,
		CategoryID:    categoryID,
		TargetAmount:  req.TargetAmount,
		Color:         req.Color,
		Icon:          req.Icon,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"envelope": envelope})
}

// GetEnvelopes lists the user's envelopes
// @Summary     List envelopes
// @Tags        envelopes
// @Produce     json
// @Security    BearerAuth
// @Param       skip            query int    false "Items to skip"
// @Param       limit           query int    false "Items to return (max 500)"
// @Param       bank_account_id query string false "Only envelopes bound to this account"
// @Param       cash_only       query bool   false "Only cash envelopes"
// @Param       category_id     query string false "Filter by category"
// @Param       is_active       query bool   false "Filter by active flag"
// @Param       search          query string false "Search by name"
// @Success     200 {object} pagination.PageResponse[models.Envelope] "Paginated envelopes"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /envelopes [get]
func (h *EnvelopeHandler) GetEnvelopes(c *gin.Context) {
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

	filter := services.EnvelopeFilter{Search: c.Query("search")}
	if filter.BankAccountID, err = queryID(c, "bank_account_id"); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.CategoryID, err = queryID(c, "category_id"); err != nil {
		respondWithError(c, err)
		return
	}
	if v := c.Query("cash_only"); v != "" {
		cash, parseErr := strconv.ParseBool(v)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid cash_only"))
			return
		}
		filter.CashOnly = cash
	}
	if v := c.Query("is_active"); v != "" {
		active, parseErr := strconv.ParseBool(v)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid is_active"))
			return
		}
		filter.IsActive = &active
	}

	result, err := h.envelopeService.GetUserEnvelopes(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetEnvelopeByID returns one envelope
// @Summary     Get envelope
// @Tags        envelopes
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Envelope ID"
// @Success     200 {object} models.Envelope "Envelope"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Envelope not found"
// @Router      /envelopes/{id} [get]
func (h *EnvelopeHandler) GetEnvelopeByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	envelopeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	envelope, err := h.envelopeService.GetEnvelopeByID(userID, envelopeID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"envelope": envelope})
}

// UpdateEnvelope updates an envelope's settings
// @Summary     Update envelope
// @Description Update an envelope. The balance only moves through transactions, adjustments and reallocations.
// @Tags        envelopes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Envelope ID"
// @Param       request body UpdateEnvelopeRequest true "Fields to update"
// @Success     200 {object} models.Envelope "Updated envelope"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Envelope not found"
// @Router      /envelopes/{id} [put]
func (h *EnvelopeHandler) UpdateEnvelope(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	envelopeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateEnvelopeRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := clearableID(req.BankAccountID, "bank_account_id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	categoryID, err := clearableID(req.CategoryID, "category_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	envelope, err := h.envelopeService.UpdateEnvelope(userID, envelopeID, services.EnvelopeUpdateFields{
		Name:          req.Name,
		Description:   req.Description,
		BankAccountID: accountID,
		CategoryID:    categoryID,
		TargetAmount:  req.TargetAmount,
		Color:         req.Color,
		Icon:          req.Icon,
		IsActive:      req.IsActive,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"envelope": envelope})
}

// DeleteEnvelope deletes an envelope without transactions
// @Summary     Delete envelope
// @Tags        envelopes
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Envelope ID"
// @Success     200 {object} MessageResponse "Envelope deleted"
// @Failure     400 {object} ErrorResponse "Envelope in use"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Envelope not found"
// @Router      /envelopes/{id} [delete]
func (h *EnvelopeHandler) DeleteEnvelope(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	envelopeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.envelopeService.DeleteEnvelope(userID, envelopeID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDeleteEnvelope, "envelope", envelopeID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Envelope deleted successfully"})
}

// AdjustEnvelope deposits into or withdraws from an envelope
// @Summary     Adjust envelope
// @Description Move money into (direction 1) or out of (direction -1) an envelope and record a history entry
// @Tags        envelopes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Envelope ID"
// @Param       request body AdjustEnvelopeRequest true "Amount and direction"
// @Success     200 {object} models.Envelope "Adjusted envelope and history entry"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient funds"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Envelope not found"
// @Router      /envelopes/{id}/adjust [post]
func (h *EnvelopeHandler) AdjustEnvelope(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	envelopeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AdjustEnvelopeRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	envelope, entry, err := h.envelopeService.AdjustEnvelope(userID, envelopeID, req.Amount, req.Direction)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditAdjustEnvelope, "envelope", envelopeID, c.ClientIP(),
		map[string]interface{}{
			"amount":    req.Amount.StringFixed(2),
			"direction": req.Direction,
		})

	c.JSON(http.StatusOK, gin.H{"envelope": envelope, "history": entry})
}

// GetEnvelopeHistory returns the latest balance changes of an envelope
// @Summary     Envelope history
// @Tags        envelopes
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string true  "Envelope ID"
// @Param       limit query int    false "Entries to return (default 10, max 100)"
// @Success     200 {array}  models.EnvelopeHistory "History, newest first"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Envelope not found"
// @Router      /envelopes/{id}/history [get]
func (h *EnvelopeHandler) GetEnvelopeHistory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	envelopeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	limit := 0
	if v := c.Query("limit"); v != "" {
		n, parseErr := strconv.Atoi(v)
		if parseErr != nil || n < 0 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid limit"))
			return
		}
		limit = n
	}

	history, err := h.envelopeService.GetEnvelopeHistory(userID, envelopeID, limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

// Reallocate moves money from one envelope to another
// @Summary     Reallocate between envelopes
// @Description Move an amount from one envelope to another atomically. Fails if the source lacks funds.
// @Tags        envelopes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ReallocateRequest true "Reallocation details"
// @Success     200 {object} services.Reallocation "Both envelopes after the move"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient funds"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Envelope not found"
// @Router      /envelopes/reallocate [post]
func (h *EnvelopeHandler) Reallocate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ReallocateRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	fromID, err := requiredID(req.FromEnvelopeID, "from_envelope_id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	toID, err := requiredID(req.ToEnvelopeID, "to_envelope_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.envelopeService.Reallocate(userID, fromID, toID, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditReallocateEnvelope, "envelope", fromID, c.ClientIP(),
		map[string]interface{}{
			"to_envelope_id": toID,
			"amount":         req.Amount.StringFixed(2),
			"description":    req.Description,
		})

	c.JSON(http.StatusOK, result)
}
