package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "github.com/Willysmile/cash-stuffing/internal/errors"
	"github.com/Willysmile/cash-stuffing/internal/ledger"
	"github.com/Willysmile/cash-stuffing/internal/models"
	"github.com/Willysmile/cash-stuffing/internal/pagination"
)

// transactionService handles transaction-related business logic. Rows are
// written only through the ledger so balances follow every change.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// CreateTransaction records a transaction and applies it to the balances it touches.
func (s *transactionService) CreateTransaction(userID string, input TransactionInput) (*models.Transaction, error) {
	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	transaction := &models.Transaction{
		UserID:          userID,
		BankAccountID:   input.BankAccountID,
		ToBankAccountID: input.ToBankAccountID,
		EnvelopeID:      input.EnvelopeID,
		CategoryID:      input.CategoryID,
		PayeeID:         input.PayeeID,
		Amount:          input.Amount,
		TransactionType: input.TransactionType,
		Date:            normalizeDate(date),
		Description:     input.Description,
		Priority:        input.Priority,
		IsRecurring:     input.IsRecurring,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := checkTransaction(tx, userID, transaction); err != nil {
			return err
		}
		return ledger.Record(tx, transaction)
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// GetUserTransactions retrieves a filtered page of the user's transactions, newest first.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Normalize()

	base := applyTransactionFilters(s.db.Model(&models.Transaction{}).Where("user_id = ?", userID), filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Preload("Payee").
		Order("date DESC, id DESC").
		Scopes(pagination.Paginate(page)).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page, totalItems)
	return &result, nil
}

// GetBankAccountTransactions lists transactions touching one account, on either side of a transfer.
func (s *transactionService) GetBankAccountTransactions(userID, accountID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if _, err := findBankAccount(s.db, userID, accountID); err != nil {
		return nil, err
	}
	filter.BankAccountID = &accountID
	return s.GetUserTransactions(userID, page, filter)
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	return findTransaction(s.db.Preload("Payee"), userID, transactionID)
}

// UpdateTransaction applies a partial update. The old effects are reversed
// and the new ones applied in the same database transaction.
func (s *transactionService) UpdateTransaction(userID, transactionID string, fields TransactionUpdateFields) (*models.Transaction, error) {
	var next models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		current, err := findTransaction(ledger.ForUpdate(tx), userID, transactionID)
		if err != nil {
			return err
		}

		next = *current
		applyTransactionUpdate(&next, fields)
		if err := checkTransaction(tx, userID, &next); err != nil {
			return err
		}
		return ledger.Amend(tx, current, &next)
	})
	if err != nil {
		return nil, err
	}
	return s.GetTransactionByID(userID, next.ID)
}

// DeleteTransaction removes a transaction and reverses its effects.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		transaction, err := findTransaction(ledger.ForUpdate(tx), userID, transactionID)
		if err != nil {
			return err
		}
		return ledger.Remove(tx, transaction)
	})
}

// GetSummary totals income and expenses between from and to, both inclusive and optional.
func (s *transactionService) GetSummary(userID string, from, to *time.Time) (*TransactionSummary, error) {
	filter := TransactionFilter{FromDate: from, ToDate: to}
	query := func() *gorm.DB {
		return applyTransactionFilters(s.db.Model(&models.Transaction{}).Where("user_id = ?", userID), filter)
	}

	var summary TransactionSummary
	if err := query().Count(&summary.TransactionCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var totals []struct {
		TransactionType models.TransactionType
		Total           decimal.Decimal
	}
	if err := query().Select("transaction_type, COALESCE(SUM(amount), 0) AS total").
		Group("transaction_type").
		Scan(&totals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, t := range totals {
		switch t.TransactionType {
		case models.TransactionTypeIncome:
			summary.TotalIncome = t.Total.Round(2)
		case models.TransactionTypeExpense:
			summary.TotalExpense = t.Total.Round(2)
		}
	}
	summary.Balance = summary.TotalIncome.Sub(summary.TotalExpense)
	return &summary, nil
}

// checkTransaction validates the type and that every referenced row belongs to userID.
func checkTransaction(tx *gorm.DB, userID string, t *models.Transaction) error {
	switch t.TransactionType {
	case models.TransactionTypeIncome, models.TransactionTypeExpense:
		if t.ToBankAccountID != nil {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "Only transfers have a destination account")
		}
	case models.TransactionTypeTransfer:
	case models.TransactionTypeAdjustment:
		return apperrors.WithMessage(apperrors.ErrInvalidTransactionType,
			"Adjustments are made by setting the account balance, not by recording a transaction")
	default:
		return apperrors.ErrInvalidTransactionType
	}
	if t.Amount.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount cannot be negative")
	}

	if _, err := findBankAccount(tx, userID, t.BankAccountID); err != nil {
		return err
	}
	if t.ToBankAccountID != nil {
		if _, err := findBankAccount(tx, userID, *t.ToBankAccountID); err != nil {
			return err
		}
	}
	if t.EnvelopeID != nil {
		if _, err := findEnvelope(tx, userID, *t.EnvelopeID); err != nil {
			return err
		}
	}
	if _, err := findCategory(tx, userID, t.CategoryID); err != nil {
		return err
	}
	if t.PayeeID != nil {
		if _, err := findPayee(tx, userID, *t.PayeeID); err != nil {
			return err
		}
	}
	return nil
}

func applyTransactionUpdate(t *models.Transaction, f TransactionUpdateFields) {
	if f.BankAccountID != nil {
		t.BankAccountID = *f.BankAccountID
	}
	if f.ToBankAccountID != nil {
		t.ToBankAccountID = *f.ToBankAccountID
	}
	if f.EnvelopeID != nil {
		t.EnvelopeID = *f.EnvelopeID
	}
	if f.CategoryID != nil {
		t.CategoryID = *f.CategoryID
	}
	if f.PayeeID != nil {
		t.PayeeID = *f.PayeeID
	}
	if f.Amount != nil {
		t.Amount = *f.Amount
	}
	if f.TransactionType != nil {
		t.TransactionType = *f.TransactionType
	}
	if f.Date != nil {
		t.Date = normalizeDate(*f.Date)
	}
	if f.Description != nil {
		t.Description = *f.Description
	}
	if f.Priority != nil {
		t.Priority = *f.Priority
	}
	if f.IsRecurring != nil {
		t.IsRecurring = *f.IsRecurring
	}
	t.Payee = nil
}

// normalizeDate keeps the calendar day of d as midnight UTC.
func normalizeDate(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func findTransaction(db *gorm.DB, userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(apperrors.ErrTransactionNotFound, "Transaction", transactionID)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}
