package ledger

import (
	apperrors "github.com/Willysmile/cash-stuffing/internal/errors"
	"github.com/Willysmile/cash-stuffing/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type typeTotal struct {
	TransactionType models.TransactionType
	Total           decimal.Decimal
}

// ExpectedBalance derives what account's current balance should be from its
// initial balance and every live transaction touching it.
func ExpectedBalance(tx *gorm.DB, account *models.BankAccount) (decimal.Decimal, error) {
	var totals []typeTotal
	if err := tx.Model(&models.Transaction{}).
		Select("transaction_type, COALESCE(SUM(amount), 0) AS total").
		Where("bank_account_id = ?", account.ID).
		Group("transaction_type").
		Scan(&totals).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var incoming typeTotal
	if err := tx.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("to_bank_account_id = ? AND transaction_type = ?", account.ID, models.TransactionTypeTransfer).
		Scan(&incoming).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	balance := account.InitialBalance.Add(incoming.Total.Round(2))
	for _, t := range totals {
		switch t.TransactionType {
		case models.TransactionTypeIncome:
			balance = balance.Add(t.Total.Round(2))
		case models.TransactionTypeExpense, models.TransactionTypeTransfer:
			balance = balance.Sub(t.Total.Round(2))
		}
	}
	return balance, nil
}

// Recalculate rewrites account's current balance from the ledger and
// returns the drift that was corrected (new minus old).
func Recalculate(tx *gorm.DB, account *models.BankAccount) (decimal.Decimal, error) {
	expected, err := ExpectedBalance(tx, account)
	if err != nil {
		return decimal.Zero, err
	}
	drift := expected.Sub(account.CurrentBalance)
	if drift.IsZero() {
		return drift, nil
	}
	if err := tx.Model(account).Update("current_balance", expected).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	account.CurrentBalance = expected
	return drift, nil
}
