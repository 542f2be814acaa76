package services

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "github.com/Willysmile/cash-stuffing/internal/errors"
	"github.com/Willysmile/cash-stuffing/internal/models"
)

// dashboardService computes the money overview of a user.
type dashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(db *gorm.DB) DashboardServicer {
	return &dashboardService{db: db}
}

// GetDashboard sums active account and envelope balances. Unallocated is
// the money in accounts not yet assigned to an envelope.
func (s *dashboardService) GetDashboard(userID string) (*Dashboard, error) {
	var accounts struct {
		Total decimal.Decimal
		Count int64
	}
	if err := s.db.Model(&models.BankAccount{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Select("COALESCE(SUM(current_balance), 0) AS total, COUNT(*) AS count").
		Scan(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var envelopes struct {
		Total decimal.Decimal
		Count int64
	}
	if err := s.db.Model(&models.Envelope{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Select("COALESCE(SUM(current_balance), 0) AS total, COUNT(*) AS count").
		Scan(&envelopes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactionCount int64
	if err := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID).Count(&transactionCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totalBalance := accounts.Total.Round(2)
	totalEnvelopes := envelopes.Total.Round(2)
	return &Dashboard{
		TotalBalance:         totalBalance,
		TotalEnvelopeBalance: totalEnvelopes,
		Unallocated:          totalBalance.Sub(totalEnvelopes),
		AccountCount:         accounts.Count,
		EnvelopeCount:        envelopes.Count,
		TransactionCount:     transactionCount,
	}, nil
}
