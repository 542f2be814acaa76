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

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

// envelopeService handles envelope-related business logic.
type envelopeService struct {
	db *gorm.DB
}

// NewEnvelopeService creates a new EnvelopeServicer.
func NewEnvelopeService(db *gorm.DB) EnvelopeServicer {
	return &envelopeService{db: db}
}

// CreateEnvelope creates an empty envelope. A nil bank account makes it a cash envelope.
func (s *envelopeService) CreateEnvelope(userID string, input EnvelopeInput) (*models.Envelope, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "envelope name is required")
	}
	if input.TargetAmount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount cannot be negative")
	}
	if err := ledger.CheckCents(input.TargetAmount, "target amount"); err != nil {
		return nil, err
	}
	if err := s.checkReferences(userID, input.BankAccountID, input.CategoryID); err != nil {
		return nil, err
	}

	envelope := &models.Envelope{
		UserID:         userID,
		BankAccountID:  input.BankAccountID,
		CategoryID:     input.CategoryID,
		Name:           name,
		Description:    input.Description,
		TargetAmount:   input.TargetAmount,
		CurrentBalance: decimal.Zero,
		Color:          input.Color,
		Icon:           input.Icon,
		IsActive:       true,
	}

	if err := s.db.Create(envelope).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return envelope, nil
}

// GetUserEnvelopes retrieves a filtered page of the user's envelopes, ordered by name.
func (s *envelopeService) GetUserEnvelopes(userID string, page pagination.PageRequest, filter EnvelopeFilter) (*pagination.PageResponse[models.Envelope], error) {
	page.Normalize()

	base := applyEnvelopeFilters(s.db.Model(&models.Envelope{}).Where("user_id = ?", userID), filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var envelopes []models.Envelope
	if err := base.Order("name, id").Scopes(pagination.Paginate(page)).Find(&envelopes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(envelopes, page, totalItems)
	return &result, nil
}

// GetEnvelopeByID retrieves one of the user's envelopes.
func (s *envelopeService) GetEnvelopeByID(userID, envelopeID string) (*models.Envelope, error) {
	return findEnvelope(s.db, userID, envelopeID)
}

// UpdateEnvelope changes descriptive fields and links. The balance is not editable here.
func (s *envelopeService) UpdateEnvelope(userID, envelopeID string, fields EnvelopeUpdateFields) (*models.Envelope, error) {
	envelope, err := s.GetEnvelopeByID(userID, envelopeID)
	if err != nil {
		return nil, err
	}

	var accountID, categoryID *string
	if fields.BankAccountID != nil {
		accountID = *fields.BankAccountID
	}
	if fields.CategoryID != nil {
		categoryID = *fields.CategoryID
	}
	if err := s.checkReferences(userID, accountID, categoryID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil {
		name := strings.TrimSpace(*fields.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "envelope name cannot be empty")
		}
		updates["name"] = name
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.BankAccountID != nil {
		updates["bank_account_id"] = accountID
	}
	if fields.CategoryID != nil {
		updates["category_id"] = categoryID
	}
	if fields.TargetAmount != nil {
		if fields.TargetAmount.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount cannot be negative")
		}
		if err := ledger.CheckCents(*fields.TargetAmount, "target amount"); err != nil {
			return nil, err
		}
		updates["target_amount"] = *fields.TargetAmount
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
		if err := s.db.Model(envelope).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.GetEnvelopeByID(userID, envelopeID)
}

// DeleteEnvelope soft-deletes an envelope no transaction points at.
func (s *envelopeService) DeleteEnvelope(userID, envelopeID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		envelope, err := findEnvelope(tx, userID, envelopeID)
		if err != nil {
			return err
		}

		var transactionCount int64
		if err := tx.Model(&models.Transaction{}).Where("envelope_id = ?", envelopeID).Count(&transactionCount).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if transactionCount > 0 {
			return apperrors.ErrEnvelopeInUse
		}

		if err := tx.Delete(envelope).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// AdjustEnvelope deposits (direction 1) or withdraws (direction -1) and records history.
func (s *envelopeService) AdjustEnvelope(userID, envelopeID string, amount decimal.Decimal, direction int) (*models.Envelope, *models.EnvelopeHistory, error) {
	var (
		envelope *models.Envelope
		entry    *models.EnvelopeHistory
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		envelope, entry, err = ledger.Adjust(tx, userID, envelopeID, amount, direction)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return envelope, entry, nil
}

// GetEnvelopeHistory returns the newest adjustments first. limit defaults
// to 10 and is capped at 100.
func (s *envelopeService) GetEnvelopeHistory(userID, envelopeID string, limit int) ([]models.EnvelopeHistory, error) {
	if _, err := s.GetEnvelopeByID(userID, envelopeID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	history := make([]models.EnvelopeHistory, 0)
	if err := s.db.Where("envelope_id = ?", envelopeID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&history).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return history, nil
}

// Reallocate moves amount between two of the user's envelopes atomically.
func (s *envelopeService) Reallocate(userID, fromID, toID string, amount decimal.Decimal) (*Reallocation, error) {
	result := &Reallocation{Amount: amount}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		result.From, result.To, err = ledger.Reallocate(tx, userID, fromID, toID, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// checkReferences verifies that non-nil account and category ids belong to the user.
func (s *envelopeService) checkReferences(userID string, accountID, categoryID *string) error {
	if accountID != nil {
		if _, err := findBankAccount(s.db, userID, *accountID); err != nil {
			return err
		}
	}
	if categoryID != nil {
		if _, err := findCategory(s.db, userID, *categoryID); err != nil {
			return err
		}
	}
	return nil
}

func findEnvelope(db *gorm.DB, userID, envelopeID string) (*models.Envelope, error) {
	var envelope models.Envelope
	if err := db.Where("id = ? AND user_id = ?", envelopeID, userID).First(&envelope).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(apperrors.ErrEnvelopeNotFound, "Envelope", envelopeID)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &envelope, nil
}
