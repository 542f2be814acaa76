package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/Willysmile/cash-stuffing/internal/errors"
	"github.com/Willysmile/cash-stuffing/internal/models"
	"github.com/Willysmile/cash-stuffing/internal/pagination"
)

// payeeService handles payee-related business logic.
type payeeService struct {
	db *gorm.DB
}

// NewPayeeService creates a new PayeeServicer.
func NewPayeeService(db *gorm.DB) PayeeServicer {
	return &payeeService{db: db}
}

// CreatePayee adds a payee. Names are unique per user, ignoring case.
func (s *payeeService) CreatePayee(userID, name string) (*models.Payee, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "payee name is required")
	}
	if err := s.checkDuplicateName(userID, name, ""); err != nil {
		return nil, err
	}

	payee := &models.Payee{UserID: userID, Name: name}
	if err := s.db.Create(payee).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return payee, nil
}

// GetUserPayees retrieves a page of the user's payees ordered by name.
func (s *payeeService) GetUserPayees(userID string, page pagination.PageRequest, search string) (*pagination.PageResponse[models.Payee], error) {
	page.Normalize()

	base := s.db.Model(&models.Payee{}).Where("user_id = ?", userID)
	if strings.TrimSpace(search) != "" {
		base = base.Where(containsClause("name"), containsPattern(search))
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var payees []models.Payee
	if err := base.Order("name, id").Scopes(pagination.Paginate(page)).Find(&payees).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(payees, page, totalItems)
	return &result, nil
}

// GetPayeeByID retrieves one of the user's payees.
func (s *payeeService) GetPayeeByID(userID, payeeID string) (*models.Payee, error) {
	return findPayee(s.db, userID, payeeID)
}

// UpdatePayee renames a payee.
func (s *payeeService) UpdatePayee(userID, payeeID, name string) (*models.Payee, error) {
	payee, err := s.GetPayeeByID(userID, payeeID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "payee name is required")
	}
	if err := s.checkDuplicateName(userID, name, payeeID); err != nil {
		return nil, err
	}

	if err := s.db.Model(payee).Update("name", name).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	payee.Name = name
	return payee, nil
}

// DeletePayee removes a payee and unlinks it from the user's transactions.
func (s *payeeService) DeletePayee(userID, payeeID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		payee, err := findPayee(tx, userID, payeeID)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.Transaction{}).
			Where("payee_id = ? AND user_id = ?", payeeID, userID).
			Update("payee_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(payee).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

func (s *payeeService) checkDuplicateName(userID, name, excludeID string) error {
	q := s.db.Model(&models.Payee{}).Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(name))
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicatePayee
	}
	return nil
}

func findPayee(db *gorm.DB, userID, payeeID string) (*models.Payee, error) {
	var payee models.Payee
	if err := db.Where("id = ? AND user_id = ?", payeeID, userID).First(&payee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(apperrors.ErrPayeeNotFound, "Payee", payeeID)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &payee, nil
}
