package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "github.com/Willysmile/cash-stuffing/internal/errors"
	"github.com/Willysmile/cash-stuffing/internal/ledger"
	"github.com/Willysmile/cash-stuffing/internal/models"
	"github.com/Willysmile/cash-stuffing/internal/pagination"
)

// wishListService handles wish lists and their items.
type wishListService struct {
	db *gorm.DB
}

// NewWishListService creates a new WishListServicer.
func NewWishListService(db *gorm.DB) WishListServicer {
	return &wishListService{db: db}
}

// CreateWishList creates an active wish list.
func (s *wishListService) CreateWishList(userID string, input WishListInput) (*models.WishList, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "wish list name is required")
	}
	if input.BudgetAllocated.Valid && input.BudgetAllocated.Decimal.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget cannot be negative")
	}
	if err := ledger.CheckCents(input.BudgetAllocated.Decimal, "budget"); err != nil {
		return nil, err
	}
	listType := input.ListType
	if listType == "" {
		listType = models.WishListTypeMixed
	}

	list := &models.WishList{
		UserID:          userID,
		Name:            name,
		Description:     input.Description,
		ListType:        listType,
		TargetDate:      input.TargetDate,
		BudgetAllocated: input.BudgetAllocated,
		Status:          models.WishListStatusActive,
	}
	if err := s.db.Create(list).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return list, nil
}

// GetUserWishLists retrieves a filtered page of wish lists, newest first.
func (s *wishListService) GetUserWishLists(userID string, page pagination.PageRequest, filter WishListFilter) (*pagination.PageResponse[models.WishList], error) {
	page.Normalize()

	base := applyWishListFilters(s.db.Model(&models.WishList{}).Where("user_id = ?", userID), filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var lists []models.WishList
	if err := base.Order("created_at DESC, id DESC").Scopes(pagination.Paginate(page)).Find(&lists).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(lists, page, totalItems)
	return &result, nil
}

// GetWishList returns a list with its items and cost totals.
func (s *wishListService) GetWishList(userID, wishListID string) (*WishListDetail, error) {
	var list models.WishList
	if err := s.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, created_at, id") }).
		Where("id = ? AND user_id = ?", wishListID, userID).
		First(&list).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(apperrors.ErrWishListNotFound, "Wish list", wishListID)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if list.Items == nil {
		list.Items = []models.WishListItem{}
	}
	return &WishListDetail{WishList: &list, Totals: ComputeWishListTotals(list.Items)}, nil
}

// UpdateWishList changes list fields.
func (s *wishListService) UpdateWishList(userID, wishListID string, fields WishListUpdateFields) (*models.WishList, error) {
	list, err := findWishList(s.db, userID, wishListID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil {
		name := strings.TrimSpace(*fields.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "wish list name cannot be empty")
		}
		updates["name"] = name
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.ListType != nil {
		updates["list_type"] = *fields.ListType
	}
	if fields.Status != nil {
		updates["status"] = *fields.Status
	}
	if fields.TargetDate != nil {
		updates["target_date"] = *fields.TargetDate
	}
	if fields.BudgetAllocated != nil {
		if fields.BudgetAllocated.Valid && fields.BudgetAllocated.Decimal.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget cannot be negative")
		}
		if err := ledger.CheckCents(fields.BudgetAllocated.Decimal, "budget"); err != nil {
			return nil, err
		}
		updates["budget_allocated"] = *fields.BudgetAllocated
	}

	if len(updates) > 0 {
		if err := s.db.Model(list).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return findWishList(s.db, userID, wishListID)
}

// DeleteWishList removes a list together with its items.
func (s *wishListService) DeleteWishList(userID, wishListID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		list, err := findWishList(tx, userID, wishListID)
		if err != nil {
			return err
		}
		if err := tx.Where("wish_list_id = ?", list.ID).Delete(&models.WishListItem{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(list).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// AddItem appends an item to one of the user's lists.
func (s *wishListService) AddItem(userID, wishListID string, input WishListItemInput) (*models.WishListItem, error) {
	if _, err := findWishList(s.db, userID, wishListID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "item name is required")
	}
	if input.Price.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "price cannot be negative")
	}
	if err := ledger.CheckCents(input.Price, "price"); err != nil {
		return nil, err
	}
	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "quantity must be at least 1")
	}
	priority := input.Priority
	if priority == "" {
		priority = models.ItemPriorityWanted
	}

	item := &models.WishListItem{
		WishListID:  wishListID,
		Name:        name,
		Description: input.Description,
		Price:       input.Price,
		Quantity:    quantity,
		URL:         input.URL,
		ImageURL:    input.ImageURL,
		Priority:    priority,
		Status:      models.ItemStatusToBuy,
		Recipient:   input.Recipient,
		SortOrder:   input.SortOrder,
	}
	if err := s.db.Create(item).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return item, nil
}

// GetItems lists a wish list's items, optionally restricted to one status.
func (s *wishListService) GetItems(userID, wishListID string, status *models.ItemStatus) ([]models.WishListItem, error) {
	if _, err := findWishList(s.db, userID, wishListID); err != nil {
		return nil, err
	}

	q := s.db.Where("wish_list_id = ?", wishListID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	items := make([]models.WishListItem, 0)
	if err := q.Order("sort_order, created_at, id").Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return items, nil
}

// UpdateItem changes an item reached through a list the user owns.
func (s *wishListService) UpdateItem(userID, itemID string, fields WishListItemUpdateFields) (*models.WishListItem, error) {
	item, err := findWishListItem(s.db, userID, itemID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil {
		name := strings.TrimSpace(*fields.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "item name cannot be empty")
		}
		updates["name"] = name
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.Price != nil {
		if fields.Price.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "price cannot be negative")
		}
		if err := ledger.CheckCents(*fields.Price, "price"); err != nil {
			return nil, err
		}
		updates["price"] = *fields.Price
	}
	if fields.Quantity != nil {
		if *fields.Quantity < 1 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "quantity must be at least 1")
		}
		updates["quantity"] = *fields.Quantity
	}
	if fields.URL != nil {
		updates["url"] = *fields.URL
	}
	if fields.ImageURL != nil {
		updates["image_url"] = *fields.ImageURL
	}
	if fields.Priority != nil {
		updates["priority"] = *fields.Priority
	}
	if fields.Status != nil {
		updates["status"] = *fields.Status
	}
	if fields.Recipient != nil {
		updates["recipient"] = *fields.Recipient
	}
	if fields.SortOrder != nil {
		updates["sort_order"] = *fields.SortOrder
	}
	if fields.PurchasedDate != nil {
		updates["purchased_date"] = *fields.PurchasedDate
	}

	if len(updates) > 0 {
		if err := s.db.Model(item).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return findWishListItem(s.db, userID, itemID)
}

// DeleteItem removes one item.
func (s *wishListService) DeleteItem(userID, itemID string) error {
	item, err := findWishListItem(s.db, userID, itemID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(item).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// MarkPurchased flags an item as bought on purchasedDate (today when nil),
// optionally linking the transaction that paid for it.
func (s *wishListService) MarkPurchased(userID, itemID string, purchasedDate *time.Time, transactionID *string) (*models.WishListItem, error) {
	item, err := findWishListItem(s.db, userID, itemID)
	if err != nil {
		return nil, err
	}
	if transactionID != nil {
		if _, err := findTransaction(s.db, userID, *transactionID); err != nil {
			return nil, err
		}
	}

	date := time.Now()
	if purchasedDate != nil {
		date = *purchasedDate
	}
	date = normalizeDate(date)

	updates := map[string]interface{}{
		"status":         models.ItemStatusPurchased,
		"purchased_date": date,
	}
	if transactionID != nil {
		updates["transaction_id"] = *transactionID
	}
	if err := s.db.Model(item).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return findWishListItem(s.db, userID, itemID)
}

// ComputeWishListTotals derives cost figures from items. Cost is price
// times quantity; completion is the share of purchased items.
func ComputeWishListTotals(items []models.WishListItem) WishListTotals {
	totals := WishListTotals{
		TotalCost:     decimal.Zero,
		PurchasedCost: decimal.Zero,
		TotalItems:    len(items),
	}
	for i := range items {
		cost := items[i].Cost()
		totals.TotalCost = totals.TotalCost.Add(cost)
		if items[i].Status == models.ItemStatusPurchased {
			totals.PurchasedCost = totals.PurchasedCost.Add(cost)
			totals.PurchasedItems++
		}
	}
	totals.RemainingCost = totals.TotalCost.Sub(totals.PurchasedCost)
	if totals.TotalItems > 0 {
		pct := decimal.NewFromInt(int64(totals.PurchasedItems)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(totals.TotalItems))).
			Round(1)
		totals.CompletionPercent = pct.InexactFloat64()
	}
	return totals
}

func findWishList(db *gorm.DB, userID, wishListID string) (*models.WishList, error) {
	var list models.WishList
	if err := db.Where("id = ? AND user_id = ?", wishListID, userID).First(&list).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(apperrors.ErrWishListNotFound, "Wish list", wishListID)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &list, nil
}

// findWishListItem resolves an item through its list so ownership is enforced.
func findWishListItem(db *gorm.DB, userID, itemID string) (*models.WishListItem, error) {
	var item models.WishListItem
	if err := db.
		Joins("JOIN wish_lists ON wish_lists.id = wish_list_items.wish_list_id AND wish_lists.deleted_at IS NULL").
		Where("wish_list_items.id = ? AND wish_lists.user_id = ?", itemID, userID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(apperrors.ErrWishListItemNotFound, "Wish list item", itemID)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &item, nil
}
