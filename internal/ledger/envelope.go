package ledger

import (
	"errors"
	"fmt"

	apperrors "github.com/Willysmile/cash-stuffing/internal/errors"
	"github.com/Willysmile/cash-stuffing/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Direction of a manual envelope adjustment.
const (
	Deposit    = 1
	Withdrawal = -1
)

// Reallocate moves amount from one of the user's envelopes to another.
// Both balances change together or not at all.
func Reallocate(tx *gorm.DB, userID, fromID, toID string, amount decimal.Decimal) (*models.Envelope, *models.Envelope, error) {
	if fromID == toID {
		return nil, nil, apperrors.ErrSameEnvelopeReallocation
	}
	if !amount.IsPositive() {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must be greater than zero")
	}
	if err := CheckCents(amount, "Amount"); err != nil {
		return nil, nil, err
	}

	var envelopes []models.Envelope
	if err := ForUpdate(tx).
		Where("id IN ? AND user_id = ?", []string{fromID, toID}, userID).
		Order("id").
		Find(&envelopes).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(envelopes) != 2 {
		return nil, nil, apperrors.WithMessage(apperrors.ErrEnvelopeNotFound, "One or both envelopes not found")
	}

	from, to := &envelopes[0], &envelopes[1]
	if from.ID != fromID {
		from, to = to, from
	}

	if from.CurrentBalance.LessThan(amount) {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInsufficientFunds,
			fmt.Sprintf("Insufficient funds in source envelope. Available: %s", from.CurrentBalance.StringFixed(2)))
	}

	from.CurrentBalance = from.CurrentBalance.Sub(amount)
	to.CurrentBalance = to.CurrentBalance.Add(amount)
	for _, e := range []*models.Envelope{from, to} {
		if err := tx.Model(e).Update("current_balance", e.CurrentBalance).Error; err != nil {
			return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return from, to, nil
}

// Adjust deposits into or withdraws from an envelope and appends a history
// row. A withdrawal may not take the balance below zero.
func Adjust(tx *gorm.DB, userID, envelopeID string, amount decimal.Decimal, direction int) (*models.Envelope, *models.EnvelopeHistory, error) {
	if direction != Deposit && direction != Withdrawal {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Direction must be 1 or -1")
	}
	if !amount.IsPositive() {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must be greater than zero")
	}
	if err := CheckCents(amount, "Amount"); err != nil {
		return nil, nil, err
	}

	var envelope models.Envelope
	if err := ForUpdate(tx).Where("id = ? AND user_id = ?", envelopeID, userID).First(&envelope).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.NotFound(apperrors.ErrEnvelopeNotFound, "Envelope", envelopeID)
		}
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	signed := amount.Mul(decimal.NewFromInt(int64(direction)))
	next := envelope.CurrentBalance.Add(signed)
	if signed.IsNegative() && next.IsNegative() {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInsufficientFunds,
			fmt.Sprintf("Insufficient funds. Available: %s", envelope.CurrentBalance.StringFixed(2)))
	}

	envelope.CurrentBalance = next
	if err := tx.Model(&envelope).Update("current_balance", next).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	entry := &models.EnvelopeHistory{
		EnvelopeID:   envelope.ID,
		Amount:       signed,
		BalanceAfter: next,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &envelope, entry, nil
}
