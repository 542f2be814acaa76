package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/Willysmile/cash-stuffing/internal/errors"
	"github.com/Willysmile/cash-stuffing/internal/models"
	"github.com/Willysmile/cash-stuffing/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the request payload for creating a transaction.
// Amount is a magnitude; the type decides which way money moves.
type CreateTransactionRequest struct {
	BankAccountID   string                      `json:"bank_account_id" binding:"required"`
	ToBankAccountID *string                     `json:"to_bank_account_id"`
	EnvelopeID      *string                     `json:"envelope_id"`
	CategoryID      string                      `json:"category_id" binding:"required"`
	PayeeID         *string                     `json:"payee_id"`
	Amount          decimal.Decimal             `json:"amount" binding:"gte=0"`
	TransactionType models.TransactionType      `json:"transaction_type" binding:"required,transaction_type"`
	Date            *string                     `json:"date"`
	Description     string                      `json:"description" binding:"max=500"`
	Priority        *models.TransactionPriority `json:"priority" binding:"omitempty,transaction_priority"`
	IsRecurring     bool                        `json:"is_recurring"`
}

// UpdateTransactionRequest represents the request payload for updating a transaction.
// For the nullable references an empty string clears the value.
type UpdateTransactionRequest struct {
	BankAccountID   *string                 `json:"bank_account_id"`
	ToBankAccountID *string                 `json:"to_bank_account_id"`
	EnvelopeID      *string                 `json:"envelope_id"`
	CategoryID      *string                 `json:"category_id"`
	PayeeID         *string                 `json:"payee_id"`
	Amount          *decimal.Decimal        `json:"amount" binding:"omitempty,gte=0"`
	TransactionType *models.TransactionType `json:"transaction_type" binding:"omitempty,transaction_type"`
	Date            *string                 `json:"date"`
	Description     *string                 `json:"description" binding:"omitempty,max=500"`
	Priority        *string                 `json:"priority"`
	IsRecurring     *bool                   `json:"is_recurring"`
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record an income, expense or transfer and apply it to the account and envelope balances
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Referenced entity not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	input := services.TransactionInput{
		Amount:          req.Amount,
		TransactionType: req.TransactionType,
		Description:     req.Description,
		Priority:        req.Priority,
		IsRecurring:     req.IsRecurring,
	}
	if input.BankAccountID, err = requiredID(req.BankAccountID, "bank_account_id"); err != nil {
		respondWithError(c, err)
		return
	}
	if input.CategoryID, err = requiredID(req.CategoryID, "category_id"); err != nil {
		respondWithError(c, err)
		return
	}
	if input.ToBankAccountID, err = optionalID(req.ToBankAccountID, "to_bank_account_id"); err != nil {
		respondWithError(c, err)
		return
	}
	if input.EnvelopeID, err = optionalID(req.EnvelopeID, "envelope_id"); err != nil {
		respondWithError(c, err)
		return
	}
	if input.PayeeID, err = optionalID(req.PayeeID, "payee_id"); err != nil {
		respondWithError(c, err)
		return
	}
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if date != nil {
		input.Date = *date
	}

	transaction, err := h.transactionService.CreateTransaction(userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditCreateTransaction, "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{
			"type":            req.TransactionType,
			"amount":          req.Amount.StringFixed(2),
			"bank_account_id": input.BankAccountID,
		})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// GetUserTransactions handles the retrieval of all transactions for the authenticated user
// @Summary     List transactions
// @Description Get a paginated list of transactions, newest first, with optional filters combined with AND
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       skip             query int    false "Items to skip"
// @Param       limit            query int    false "Items to return (default 100, max 500)"
// @Param       bank_account_id  query string false "Source or transfer destination account"
// @Param       envelope_id      query string false "Filter by envelope"
// @Param       category_id      query string false "Filter by category"
// @Param       payee_id         query string false "Filter by payee"
// @Param       transaction_type query string false "income, expense, transfer or adjustment"
// @Param       priority         query string false "vital, comfort or pleasure"
// @Param       is_recurring     query bool   false "Filter by recurring flag"
// @Param       date_from        query string false "Start date (RFC3339 or YYYY-MM-DD), inclusive"
// @Param       date_to          query string false "End date (RFC3339 or YYYY-MM-DD), inclusive"
// @Param       min_amount       query string false "Minimum amount, inclusive"
// @Param       max_amount       query string false "Maximum amount, inclusive"
// @Param       search           query string false "Search description and payee name"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
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

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if filter.BankAccountID, err = queryID(c, "bank_account_id"); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	filter := services.TransactionFilter{Search: c.Query("search")}
	var err error

	if filter.EnvelopeID, err = queryID(c, "envelope_id"); err != nil {
		return filter, err
	}
	if filter.CategoryID, err = queryID(c, "category_id"); err != nil {
		return filter, err
	}
	if filter.PayeeID, err = queryID(c, "payee_id"); err != nil {
		return filter, err
	}

	if v := c.Query("date_from"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date_from format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}

	if v := c.Query("date_to"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date_to format, use RFC3339 or YYYY-MM-DD")
		}
		filter.ToDate = &t
	}

	if v := c.Query("transaction_type"); v != "" {
		txType := models.TransactionType(v)
		switch txType {
		case models.TransactionTypeIncome, models.TransactionTypeExpense,
			models.TransactionTypeTransfer, models.TransactionTypeAdjustment:
			filter.Type = &txType
		default:
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid transaction_type, must be income, expense, transfer, or adjustment")
		}
	}

	if v := c.Query("priority"); v != "" {
		if filter.Priority, err = parsePriority(v); err != nil {
			return filter, err
		}
	}

	if v := c.Query("is_recurring"); v != "" {
		recurring, err := strconv.ParseBool(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid is_recurring")
		}
		filter.IsRecurring = &recurring
	}

	if v := c.Query("min_amount"); v != "" {
		amt, err := decimal.NewFromString(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid min_amount")
		}
		filter.MinAmount = &amt
	}

	if v := c.Query("max_amount"); v != "" {
		amt, err := decimal.NewFromString(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid max_amount")
		}
		filter.MaxAmount = &amt
	}

	return filter, nil
}

func parsePriority(v string) (*models.TransactionPriority, error) {
	priority := models.TransactionPriority(v)
	switch priority {
	case models.PriorityVital, models.PriorityComfort, models.PriorityPleasure:
		return &priority, nil
	}
	return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid priority, must be vital, comfort, or pleasure")
}

// GetSummary returns income and expense totals
// @Summary     Transaction summary
// @Description Total income, total expense and their difference over an optional inclusive date range
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       date_from query string false "Start date (RFC3339 or YYYY-MM-DD)"
// @Param       date_to   query string false "End date (RFC3339 or YYYY-MM-DD)"
// @Success     200 {object} services.TransactionSummary "Summary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions/summary [get]
func (h *TransactionHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var from, to *time.Time
	if v := c.Query("date_from"); v != "" {
		if from, err = parseOptionalDate(&v); err != nil {
			respondWithError(c, err)
			return
		}
	}
	if v := c.Query("date_to"); v != "" {
		if to, err = parseOptionalDate(&v); err != nil {
			respondWithError(c, err)
			return
		}
	}

	summary, err := h.transactionService.GetSummary(userID, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransaction handles updating an existing transaction
// @Summary     Update transaction
// @Description Partially update a transaction. The old effect on balances is reversed and the new one applied in one step.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	txID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	fields := services.TransactionUpdateFields{
		Amount:          req.Amount,
		TransactionType: req.TransactionType,
		Description:     req.Description,
		IsRecurring:     req.IsRecurring,
	}
	if req.BankAccountID != nil {
		id, err := requiredID(*req.BankAccountID, "bank_account_id")
		if err != nil {
			respondWithError(c, err)
			return
		}
		fields.BankAccountID = &id
	}
	if req.CategoryID != nil {
		id, err := requiredID(*req.CategoryID, "category_id")
		if err != nil {
			respondWithError(c, err)
			return
		}
		fields.CategoryID = &id
	}
	if fields.ToBankAccountID, err = clearableID(req.ToBankAccountID, "to_bank_account_id"); err != nil {
		respondWithError(c, err)
		return
	}
	if fields.EnvelopeID, err = clearableID(req.EnvelopeID, "envelope_id"); err != nil {
		respondWithError(c, err)
		return
	}
	if fields.PayeeID, err = clearableID(req.PayeeID, "payee_id"); err != nil {
		respondWithError(c, err)
		return
	}
	if req.Priority != nil {
		var priority *models.TransactionPriority
		if *req.Priority != "" {
			if priority, err = parsePriority(*req.Priority); err != nil {
				respondWithError(c, err)
				return
			}
		}
		fields.Priority = &priority
	}
	if req.Date != nil {
		date, err := parseFlexibleTime(*req.Date)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
		fields.Date = &date
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, txID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditUpdateTransaction, "transaction", txID, c.ClientIP(),
		map[string]interface{}{
			"type":   transaction.TransactionType,
			"amount": transaction.Amount.StringFixed(2),
		})

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles deleting a transaction
// @Summary     Delete transaction
// @Description Delete a transaction and reverse its effect on account and envelope balances
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	txID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, txID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDeleteTransaction, "transaction", txID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}
