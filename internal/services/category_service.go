package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/Willysmile/cash-stuffing/internal/errors"
	"github.com/Willysmile/cash-stuffing/internal/models"
	"github.com/Willysmile/cash-stuffing/internal/pagination"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a new category
func (s *categoryService) CreateCategory(userID string, input CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	if input.ParentID != nil {
		if _, err := findCategory(s.db, userID, *input.ParentID); err != nil {
			return nil, err
		}
	}
	if err := s.checkDuplicateName(userID, name, input.ParentID, ""); err != nil {
		return nil, err
	}

	category := &models.Category{
		UserID:    userID,
		ParentID:  input.ParentID,
		Name:      name,
		Color:     input.Color,
		Icon:      input.Icon,
		IsDefault: input.IsDefault,
		SortOrder: input.SortOrder,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetUserCategories retrieves a paginated list of categories for a user.
func (s *categoryService) GetUserCategories(userID string, page pagination.PageRequest, filter CategoryFilter) (*pagination.PageResponse[models.Category], error) {
	page.Normalize()

	base := applyCategoryFilters(s.db.Model(&models.Category{}).Where("user_id = ?", userID), filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Order("sort_order, name, id").Scopes(pagination.Paginate(page)).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page, totalItems)
	return &result, nil
}

// GetCategoryTree returns every category of the user arranged as a forest.
func (s *categoryService) GetCategoryTree(userID string) ([]*CategoryNode, error) {
	var categories []models.Category
	if err := s.db.Where("user_id = ?", userID).Order("sort_order, name, id").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return BuildCategoryTree(categories), nil
}

// GetCategoryByID retrieves a category by ID for a specific user
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	return findCategory(s.db, userID, categoryID)
}

// UpdateCategory updates an existing category
func (s *categoryService) UpdateCategory(userID, categoryID string, fields CategoryUpdateFields) (*models.Category, error) {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	name := category.Name
	parentID := category.ParentID

	if fields.Name != nil {
		name = strings.TrimSpace(*fields.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name cannot be empty")
		}
		updates["name"] = name
	}
	if fields.ParentID != nil {
		parentID = *fields.ParentID
		if parentID != nil {
			if err := s.checkParent(userID, categoryID, *parentID); err != nil {
				return nil, err
			}
		}
		updates["parent_id"] = parentID
	}
	if fields.Name != nil || fields.ParentID != nil {
		if err := s.checkDuplicateName(userID, name, parentID, categoryID); err != nil {
			return nil, err
		}
	}
	if fields.Color != nil {
		updates["color"] = *fields.Color
	}
	if fields.Icon != nil {
		updates["icon"] = *fields.Icon
	}
	if fields.IsDefault != nil {
		updates["is_default"] = *fields.IsDefault
	}
	if fields.SortOrder != nil {
		updates["sort_order"] = *fields.SortOrder
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetCategoryByID(userID, categoryID)
}

// DeleteCategory deletes a category that has no children and no transactions.
// Envelopes filed under it lose their category.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		category, err := findCategory(tx, userID, categoryID)
		if err != nil {
			return err
		}

		var childCount int64
		if err := tx.Model(&models.Category{}).Where("parent_id = ?", categoryID).Count(&childCount).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if childCount > 0 {
			return apperrors.ErrCategoryHasChildren
		}

		var transactionCount int64
		if err := tx.Model(&models.Transaction{}).Where("category_id = ?", categoryID).Count(&transactionCount).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if transactionCount > 0 {
			return apperrors.ErrCategoryInUse
		}

		if err := tx.Model(&models.Envelope{}).
			Where("category_id = ?", categoryID).
			Update("category_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// checkParent rejects a parent that is missing, the category itself, or
// one of its descendants.
func (s *categoryService) checkParent(userID, categoryID, parentID string) error {
	if parentID == categoryID {
		return apperrors.ErrSelfParentCategory
	}

	var categories []models.Category
	if err := s.db.Select("id", "parent_id").Where("user_id = ?", userID).Find(&categories).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	parents := make(map[string]*string, len(categories))
	for _, c := range categories {
		parents[c.ID] = c.ParentID
	}
	if _, ok := parents[parentID]; !ok {
		return apperrors.NotFound(apperrors.ErrCategoryNotFound, "Parent category", parentID)
	}

	// Walk up from the new parent; reaching categoryID means a cycle.
	seen := make(map[string]bool)
	for id := &parentID; id != nil && !seen[*id]; id = parents[*id] {
		if *id == categoryID {
			return apperrors.ErrCategoryCycle
		}
		seen[*id] = true
	}
	return nil
}

func (s *categoryService) checkDuplicateName(userID, name string, parentID *string, excludeID string) error {
	q := s.db.Model(&models.Category{}).Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(name))
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateCategory
	}
	return nil
}

func findCategory(db *gorm.DB, userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(apperrors.ErrCategoryNotFound, "Category", categoryID)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}
