package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/Willysmile/cash-stuffing/internal/errors"
	"github.com/Willysmile/cash-stuffing/internal/services"
)

// BankAccountHandler handles bank-account-related requests.
type BankAccountHandler struct {
	bankAccountService services.BankAccountServicer
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewBankAccountHandler creates a new BankAccountHandler.
func NewBankAccountHandler(
	bankAccountService services.BankAccountServicer,
	transactionService services.TransactionServicer,
	auditService services.AuditServicer,
) *BankAccountHandler {
	return &BankAccountHandler{
		bankAccountService: bankAccountService,
		transactionService: transactionService,
		auditService:       auditService,
	}
}

// CreateBankAccountRequest represents the request payload for creating a bank account
type CreateBankAccountRequest struct {
	Name           string          `json:"name" binding:"required,min=1,max=100"`
	AccountType    string          `json:"account_type" binding:"required,max=50"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Currency       string          `json:"currency" binding:"omitempty,len=3"`
	Color          string          `json:"color" binding:"omitempty,hex_color"`
	Icon           string          `json:"icon" binding:"max=50"`
}

// UpdateBankAccountRequest represents the request payload for updating a bank account.
// Balances cannot be changed here; use the adjust endpoint.
type UpdateBankAccountRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	AccountType *string `json:"account_type" binding:"omitempty,max=50"`
	Color       *string `json:"color" binding:"omitempty,hex_color"`
	Icon        *string `json:"icon" binding:"omitempty,max=50"`
	IsActive    *bool   `json:"is_active"`
}

// AdjustBalanceRequest represents the request payload for setting an account balance.
type AdjustBalanceRequest struct {
	NewBalance decimal.Decimal `json:"new_balance"`
	Reason     string          `json:"reason" binding:"max=255"`
}

// CreateBankAccount handles the creation of a new bank account
// @Summary     Create bank account
// @Description Create a bank account. The current balance starts at the initial balance.
// @Tags        bank-accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBankAccountRequest true "Bank account details"
// @Success     201 {object} models.BankAccount "Bank account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /bank-accounts [post]
func (h *BankAccountHandler) CreateBankAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBankAccountRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.bankAccountService.CreateBankAccount(userID, services.BankAccountInput{
		Name:           req.Name,
		AccountType:    req.AccountType,
		InitialBalance: req.InitialBalance,
		Currency:       req.Currency,
		Color:          req.Color,
		Icon:           req.Icon,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"bank_account": account})
}

// GetBankAccounts lists the user's bank accounts
// @Summary     List bank accounts
// @Description Get a paginated list of bank accounts with optional filters
// @Tags        bank-accounts
// @Produce     json
// @Security    BearerAuth
// @Param       skip         query int    false "Items to skip (default 0)"
// @Param       limit        query int    false "Items to return (default 100, max 500)"
// @Param       account_type query string false "Filter by account type"
// @Param       currency     query string false "Filter by currency code"
// @Param       is_active    query bool   false "Filter by active flag"
// @Param       search       query string false "Search by name"
// @Success     200 {object} pagination.PageResponse[models.BankAccount] "Paginated bank accounts"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /bank-accounts [get]
func (h *BankAccountHandler) GetBankAccounts(c *gin.Context) {
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

	filter := services.BankAccountFilter{Search: c.Query("search")}
	if v := c.Query("account_type"); v != "" {
		filter.AccountType = &v
	}
	if v := c.Query("currency"); v != "" {
		filter.Currency = &v
	}
	if v := c.Query("is_active"); v != "" {
		active, parseErr := strconv.ParseBool(v)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid is_active"))
			return
		}
		filter.IsActive = &active
	}

	result, err := h.bankAccountService.GetUserBankAccounts(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBankAccountByID returns one bank account
// @Summary     Get bank account
// @Tags        bank-accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Bank account ID"
// @Success     200 {object} models.BankAccount "Bank account"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Bank account not found"
// @Router      /bank-accounts/{id} [get]
func (h *BankAccountHandler) GetBankAccountByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.bankAccountService.GetBankAccountByID(userID, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bank_account": account})
}

// UpdateBankAccount updates a bank account's descriptive fields
// @Summary     Update bank account
// @Description Update name, type, color, icon or active flag. Balances are not editable here.
// @Tags        bank-accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Bank account ID"
// @Param       request body UpdateBankAccountRequest true "Fields to update"
// @Success     200 {object} models.BankAccount "Updated bank account"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Bank account not found"
// @Router      /bank-accounts/{id} [put]
func (h *BankAccountHandler) UpdateBankAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBankAccountRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.bankAccountService.UpdateBankAccount(userID, accountID, services.BankAccountUpdateFields{
		Name:        req.Name,
		AccountType: req.AccountType,
		Color:       req.Color,
		Icon:        req.Icon,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bank_account": account})
}

// AdjustBalance sets an account's current balance directly
// @Summary     Adjust bank account balance
// @Description Overwrite the current balance, e.g. after comparing with a bank statement. The change is audit logged.
// @Tags        bank-accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Bank account ID"
// @Param       request body AdjustBalanceRequest true "New balance"
// @Success     200 {object} services.BalanceChange "Balance adjusted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Bank account not found"
// @Router      /bank-accounts/{id}/adjust [post]
func (h *BankAccountHandler) AdjustBalance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AdjustBalanceRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	change, err := h.bankAccountService.AdjustBalance(userID, accountID, req.NewBalance)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditAdjustBalance, "bank_account", accountID, c.ClientIP(),
		map[string]interface{}{
			"old_balance": change.PreviousBalance.StringFixed(2),
			"new_balance": change.Account.CurrentBalance.StringFixed(2),
			"reason":      req.Reason,
		})

	c.JSON(http.StatusOK, change)
}

// RecalculateBalance recomputes an account balance from its ledger
// @Summary     Recalculate bank account balance
// @Description Rebuild the current balance from the initial balance and every transaction. Returns the drift that was corrected.
// @Tags        bank-accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Bank account ID"
// @Success     200 {object} services.BalanceChange "Balance recalculated"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Bank account not found"
// @Router      /bank-accounts/{id}/recalculate [post]
func (h *BankAccountHandler) RecalculateBalance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	change, err := h.bankAccountService.RecalculateBalance(userID, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if !change.Difference.IsZero() {
		h.auditService.Log(userID, services.AuditRecalculateBalance, "bank_account", accountID, c.ClientIP(),
			map[string]interface{}{
				"old_balance": change.PreviousBalance.StringFixed(2),
				"new_balance": change.Account.CurrentBalance.StringFixed(2),
			})
	}

	c.JSON(http.StatusOK, change)
}

// DeleteBankAccount deletes an unused bank account
// @Summary     Delete bank account
// @Description Delete a bank account. Fails when envelopes or transactions still reference it.
// @Tags        bank-accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Bank account ID"
// @Success     200 {object} MessageResponse "Bank account deleted"
// @Failure     400 {object} ErrorResponse "Bank account in use"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Bank account not found"
// @Router      /bank-accounts/{id} [delete]
func (h *BankAccountHandler) DeleteBankAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.bankAccountService.DeleteBankAccount(userID, accountID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDeleteBankAccount, "bank_account", accountID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Bank account deleted successfully"})
}

// GetBankAccountTransactions lists transactions touching one account
// @Summary     List bank account transactions
// @Description Transactions where the account is the source or the transfer destination, newest first
// @Tags        bank-accounts,transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id               path  string true  "Bank account ID"
// @Param       skip             query int    false "Items to skip"
// @Param       limit            query int    false "Items to return (max 500)"
// @Param       transaction_type query string false "income, expense, transfer or adjustment"
// @Param       date_from        query string false "Start date (RFC3339 or YYYY-MM-DD), inclusive"
// @Param       date_to          query string false "End date (RFC3339 or YYYY-MM-DD), inclusive"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Bank account not found"
// @Router      /bank-accounts/{id}/transactions [get]
func (h *BankAccountHandler) GetBankAccountTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
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

	result, err := h.transactionService.GetBankAccountTransactions(userID, accountID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
