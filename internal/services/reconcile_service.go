package services

import (
	"gorm.io/gorm"

	apperrors "github.com/Willysmile/cash-stuffing/internal/errors"
	"github.com/Willysmile/cash-stuffing/internal/ledger"
	"github.com/Willysmile/cash-stuffing/internal/logger"
	"github.com/Willysmile/cash-stuffing/internal/metrics"
	"github.com/Willysmile/cash-stuffing/internal/models"
)

// reconcileService repairs balance drift across every user.
type reconcileService struct {
	db *gorm.DB
}

// NewReconcileService creates a new ReconcileServicer.
func NewReconcileService(db *gorm.DB) ReconcileServicer {
	return &reconcileService{db: db}
}

// ReconcileAll recalculates every active bank account, one database
// transaction per account. It stops at the first failure and reports what
// was done so far.
func (s *reconcileService) ReconcileAll() (*ReconcileResult, error) {
	var accountIDs []string
	if err := s.db.Model(&models.BankAccount{}).
		Where("is_active = ?", true).
		Order("id").
		Pluck("id", &accountIDs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &ReconcileResult{}
	for _, id := range accountIDs {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			var account models.BankAccount
			if err := ledger.ForUpdate(tx).Where("id = ?", id).First(&account).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}

			drift, err := ledger.Recalculate(tx, &account)
			if err != nil {
				return err
			}
			result.AccountsChecked++
			if !drift.IsZero() {
				result.AccountsCorrected++
				metrics.BalanceCorrections.Inc()
				logger.Get().Warnw("corrected bank account balance drift",
					"bank_account_id", account.ID,
					"user_id", account.UserID,
					"drift", drift.StringFixed(2),
				)
			}
			return nil
		})
		if err != nil {
			return result, err
		}
	}
	return result, nil
}
