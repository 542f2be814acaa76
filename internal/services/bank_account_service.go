package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "github.com/Willysmile/cash-stuffing/internal/errors"
	"github.com/Willysmile/cash-stuffing/internal/ledger"
	"github.com/Willysmile/cash-stuffing/internal/models"
	"github.com/Willysmile/cash-stuffing/internal/pagination"
)

// bankAccountService handles bank-account business logic.
type bankAccountService struct {
	db *gorm.DB
}

// NewBankAccountService creates a new BankAccountServicer.
func NewBankAccountService(db *gorm.DB) BankAccountServicer {
	return &bankAccountService{db: db}
}

// CreateBankAccount opens an account whose current balance starts at the initial balance.
func (s *bankAccountService) CreateBankAccount(userID string, input BankAccountInput) (*models.BankAccount, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if strings.TrimSpace(input.AccountType) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account type is required")
	}
	if err := ledger.CheckCents(input.InitialBalance, "initial balance"); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(input.Currency)
	if currency == "" {
		currency = models.DefaultCurrency
	}

	account := &models.BankAccount{
		UserID:         userID,
		Name:           name,
		AccountType:    input.AccountType,
		InitialBalance: input.InitialBalance,
		CurrentBalance: input.InitialBalance,
		Currency:       currency,
		Color:          input.Color,
		Icon:           input.Icon,
		IsActive:       true,
	}

	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// GetUserBankAccounts retrieves a filtered page of the user's accounts, ordered by name.
func (s *bankAccountService) GetUserBankAccounts(userID string, page pagination.PageRequest, filter BankAccountFilter) (*pagination.PageResponse[models.BankAccount], error) {
	page.Normalize()

	base := applyBankAccountFilters(s.db.Model(&models.BankAccount{}).Where("user_id = ?", userID), filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.BankAccount
	if err := base.Order("name, id").Scopes(pagination.Paginate(page)).Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page, totalItems)
	return &result, nil
}

// GetBankAccountByID retrieves one of the user's accounts.
func (s *bankAccountService) GetBankAccountByID(userID, accountID string) (*models.BankAccount, error) {
	return findBankAccount(s.db, userID, accountID)
}

// UpdateBankAccount changes descriptive fields. Balances are left alone.
func (s *bankAccountService) UpdateBankAccount(userID, accountID string, fields BankAccountUpdateFields) (*models.BankAccount, error) {
	account, err := s.GetBankAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil {
		name := strings.TrimSpace(*fields.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name cannot be empty")
		}
		updates["name"] = name
	}
	if fields.AccountType != nil {
		updates["account_type"] = *fields.AccountType
	}
	if fields.Color != nil {
		updates["color"] = *fields.Color
	}
	if fields.Icon != nil {
		updates["icon"] = *fields.Icon
	}
	if fields.IsActive != nil {
		updates["is_active"] = *fields.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(account).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.GetBankAccountByID(userID, accountID)
}

// AdjustBalance overwrites the current balance, for example after counting
// cash. No transaction is recorded, so a later recalculation reverts it.
func (s *bankAccountService) AdjustBalance(userID, accountID string, newBalance decimal.Decimal) (*BalanceChange, error) {
	if err := ledger.CheckCents(newBalance, "new balance"); err != nil {
		return nil, err
	}
	var change *BalanceChange
	err := s.db.Transaction(func(tx *gorm.DB) error {
		account, err := findBankAccount(ledger.ForUpdate(tx), userID, accountID)
		if err != nil {
			return err
		}

		previous := account.CurrentBalance
		if err := tx.Model(account).Update("current_balance", newBalance).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		account.CurrentBalance = newBalance

		change = &BalanceChange{
			Account:         account,
			PreviousBalance: previous,
			Difference:      newBalance.Sub(previous),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// RecalculateBalance rebuilds the current balance from the initial balance
// and the account's transactions.
func (s *bankAccountService) RecalculateBalance(userID, accountID string) (*BalanceChange, error) {
	var change *BalanceChange
	err := s.db.Transaction(func(tx *gorm.DB) error {
		account, err := findBankAccount(ledger.ForUpdate(tx), userID, accountID)
		if err != nil {
			return err
		}

		previous := account.CurrentBalance
		drift, err := ledger.Recalculate(tx, account)
		if err != nil {
			return err
		}

		change = &BalanceChange{
			Account:         account,
			PreviousBalance: previous,
			Difference:      drift,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// DeleteBankAccount soft-deletes an account that nothing references.
func (s *bankAccountService) DeleteBankAccount(userID, accountID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		account, err := findBankAccount(tx, userID, accountID)
		if err != nil {
			return err
		}

		var envelopeCount int64
		if err := tx.Model(&models.Envelope{}).Where("bank_account_id = ?", accountID).Count(&envelopeCount).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		var transactionCount int64
		if err := tx.Model(&models.Transaction{}).
			Where("bank_account_id = ? OR to_bank_account_id = ?", accountID, accountID).
			Count(&transactionCount).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if envelopeCount > 0 || transactionCount > 0 {
			return apperrors.ErrBankAccountInUse
		}

		if err := tx.Delete(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// findBankAccount loads an account owned by userID using db, which may be a transaction.
func findBankAccount(db *gorm.DB, userID, accountID string) (*models.BankAccount, error) {
	var account models.BankAccount
	if err := db.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(apperrors.ErrBankAccountNotFound, "Bank account", accountID)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}
