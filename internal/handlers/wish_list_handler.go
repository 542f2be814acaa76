package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/Willysmile/cash-stuffing/internal/errors"
	"github.com/Willysmile/cash-stuffing/internal/models"
	"github.com/Willysmile/cash-stuffing/internal/services"
)

// WishListHandler handles wish-list-related requests.
type WishListHandler struct {
	wishListService services.WishListServicer
	auditService    services.AuditServicer
}

// NewWishListHandler creates a new WishListHandler.
func NewWishListHandler(wishListService services.WishListServicer, auditService services.AuditServicer) *WishListHandler {
	return &WishListHandler{wishListService: wishListService, auditService: auditService}
}

// CreateWishListRequest represents the request payload for creating a wish list.
type CreateWishListRequest struct {
	Name            string              `json:"name" binding:"required,min=1,max=100"`
	Description     string              `json:"description" binding:"max=500"`
	ListType        models.WishListType `json:"list_type" binding:"omitempty,wish_list_type"`
	TargetDate      *string             `json:"target_date"`
	BudgetAllocated *decimal.Decimal    `json:"budget_allocated" binding:"omitempty,gte=0"`
}

// UpdateWishListRequest represents the request payload for updating a wish list.
// An empty target_date or budget_allocated clears it.
type UpdateWishListRequest struct {
	Name            *string                `json:"name" binding:"omitempty,min=1,max=100"`
	Description     *string                `json:"description" binding:"omitempty,max=500"`
	ListType        *models.WishListType   `json:"list_type" binding:"omitempty,wish_list_type"`
	Status          *models.WishListStatus `json:"status" binding:"omitempty,wish_list_status"`
	TargetDate      *string                `json:"target_date"`
	BudgetAllocated *string                `json:"budget_allocated"`
}

// WishListItemRequest represents the request payload for adding an item.
type WishListItemRequest struct {
	Name        string              `json:"name" binding:"required,min=1,max=200"`
	Description string              `json:"description" binding:"max=500"`
	Price       decimal.Decimal     `json:"price" binding:"gte=0"`
	Quantity    int                 `json:"quantity" binding:"gte=0"`
	URL         string              `json:"url" binding:"omitempty,url,max=500"`
	ImageURL    string              `json:"image_url" binding:"omitempty,url,max=500"`
	Priority    models.ItemPriority `json:"priority" binding:"omitempty,item_priority"`
	Recipient   string              `json:"recipient" binding:"max=100"`
	SortOrder   int                 `json:"sort_order" binding:"gte=0"`
}

// UpdateWishListItemRequest represents the request payload for updating an item.
type UpdateWishListItemRequest struct {
	Name          *string              `json:"name" binding:"omitempty,min=1,max=200"`
	Description   *string              `json:"description" binding:"omitempty,max=500"`
	Price         *decimal.Decimal     `json:"price" binding:"omitempty,gte=0"`
	Quantity      *int                 `json:"quantity" binding:"omitempty,gte=1"`
	URL           *string              `json:"url" binding:"omitempty,url,max=500"`
	ImageURL      *string              `json:"image_url" binding:"omitempty,url,max=500"`
	Priority      *models.ItemPriority `json:"priority" binding:"omitempty,item_priority"`
	Status        *models.ItemStatus   `json:"status" binding:"omitempty,item_status"`
	Recipient     *string              `json:"recipient" binding:"omitempty,max=100"`
	SortOrder     *int                 `json:"sort_order" binding:"omitempty,gte=0"`
	PurchasedDate *string              `json:"purchased_date"`
}

// PurchaseItemRequest represents the request payload for marking an item purchased.
type PurchaseItemRequest struct {
	PurchasedDate *string `json:"purchased_date"`
	TransactionID *string `json:"transaction_id"`
}

// CreateWishList creates a wish list
// @Summary     Create wish list
// @Tags        wish-lists
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateWishListRequest true "Wish list details"
// @Success     201 {object} models.WishList "Wish list created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /wish-lists [post]
func (h *WishListHandler) CreateWishList(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateWishListRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	targetDate, err := parseOptionalDate(req.TargetDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	input := services.WishListInput{
		Name:        req.Name,
		Description: req.Description,
		ListType:    req.ListType,
		TargetDate:  targetDate,
	}
	if req.BudgetAllocated != nil {
		input.BudgetAllocated = decimal.NewNullDecimal(*req.BudgetAllocated)
	}

	list, err := h.wishListService.CreateWishList(userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"wish_list": list})
}

// GetWishLists lists wish lists
// @Summary     List wish lists
// @Tags        wish-lists
// @Produce     json
// @Security    BearerAuth
// @Param       skip      query int    false "Items to skip"
// @Param       limit     query int    false "Items to return (max 500)"
// @Param       list_type query string false "to_receive, to_give or mixed"
// @Param       status    query string false "active or archived"
// @Success     200 {object} pagination.PageResponse[models.WishList] "Paginated wish lists"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /wish-lists [get]
func (h *WishListHandler) GetWishLists(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var filter services.WishListFilter
	if v := c.Query("list_type"); v != "" {
		listType := models.WishListType(v)
		switch listType {
		case models.WishListTypeToReceive, models.WishListTypeToGive, models.WishListTypeMixed:
			filter.ListType = &listType
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid list_type"))
			return
		}
	}
	if v := c.Query("status"); v != "" {
		status := models.WishListStatus(v)
		switch status {
		case models.WishListStatusActive, models.WishListStatusArchived:
			filter.Status = &status
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid status"))
			return
		}
	}

	result, err := h.wishListService.GetUserWishLists(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetWishList returns a wish list with its items and totals
// @Summary     Get wish list
// @Tags        wish-lists
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Wish list ID"
// @Success     200 {object} services.WishListDetail "Wish list with items and totals"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Wish list not found"
// @Router      /wish-lists/{id} [get]
func (h *WishListHandler) GetWishList(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	listID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	detail, err := h.wishListService.GetWishList(userID, listID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"wish_list": detail})
}

// UpdateWishList updates a wish list
// @Summary     Update wish list
// @Tags        wish-lists
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Wish list ID"
// @Param       request body UpdateWishListRequest true "Fields to update"
// @Success     200 {object} models.WishList "Updated wish list"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Wish list not found"
// @Router      /wish-lists/{id} [put]
func (h *WishListHandler) UpdateWishList(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	listID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateWishListRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	fields := services.WishListUpdateFields{
		Name:        req.Name,
		Description: req.Description,
		ListType:    req.ListType,
		Status:      req.Status,
	}
	if req.TargetDate != nil {
		date, err := parseOptionalDate(req.TargetDate)
		if err != nil {
			respondWithError(c, err)
			return
		}
		fields.TargetDate = &date
	}
	if req.BudgetAllocated != nil {
		var budget decimal.NullDecimal
		if *req.BudgetAllocated != "" {
			amount, err := decimal.NewFromString(*req.BudgetAllocated)
			if err != nil || amount.IsNegative() {
				respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid budget_allocated"))
				return
			}
			budget = decimal.NewNullDecimal(amount)
		}
		fields.BudgetAllocated = &budget
	}

	list, err := h.wishListService.UpdateWishList(userID, listID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"wish_list": list})
}

// DeleteWishList deletes a wish list and its items
// @Summary     Delete wish list
// @Tags        wish-lists
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Wish list ID"
// @Success     200 {object} MessageResponse "Wish list deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Wish list not found"
// @Router      /wish-lists/{id} [delete]
func (h *WishListHandler) DeleteWishList(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	listID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.wishListService.DeleteWishList(userID, listID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDeleteWishList, "wish_list", listID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Wish list deleted successfully"})
}

// AddItem adds an item to a wish list
// @Summary     Add wish list item
// @Tags        wish-lists
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Wish list ID"
// @Param       request body WishListItemRequest true "Item details"
// @Success     201 {object} models.WishListItem "Item created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Wish list not found"
// @Router      /wish-lists/{id}/items [post]
func (h *WishListHandler) AddItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	listID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req WishListItemRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	item, err := h.wishListService.AddItem(userID, listID, services.WishListItemInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		URL:         req.URL,
		ImageURL:    req.ImageURL,
		Priority:    req.Priority,
		Recipient:   req.Recipient,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"item": item})
}

// GetItems lists the items of a wish list
// @Summary     List wish list items
// @Tags        wish-lists
// @Produce     json
// @Security    BearerAuth
// @Param       id     path  string true  "Wish list ID"
// @Param       status query string false "to_buy or purchased"
// @Success     200 {array}  models.WishListItem "Items"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Wish list not found"
// @Router      /wish-lists/{id}/items [get]
func (h *WishListHandler) GetItems(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	listID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var status *models.ItemStatus
	if v := c.Query("status"); v != "" {
		s := models.ItemStatus(v)
		if s != models.ItemStatusToBuy && s != models.ItemStatusPurchased {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid status, must be to_buy or purchased"))
			return
		}
		status = &s
	}

	items, err := h.wishListService.GetItems(userID, listID, status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// UpdateItem updates a wish list item
// @Summary     Update wish list item
// @Tags        wish-lists
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       item_id path string                    true "Item ID"
// @Param       request body UpdateWishListItemRequest true "Fields to update"
// @Success     200 {object} models.WishListItem "Updated item"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Item not found"
// @Router      /wish-lists/items/{item_id} [put]
func (h *WishListHandler) UpdateItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	itemID, err := parsePathID(c, "item_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateWishListItemRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	fields := services.WishListItemUpdateFields{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		URL:         req.URL,
		ImageURL:    req.ImageURL,
		Priority:    req.Priority,
		Status:      req.Status,
		Recipient:   req.Recipient,
		SortOrder:   req.SortOrder,
	}
	if req.PurchasedDate != nil {
		date, err := parseOptionalDate(req.PurchasedDate)
		if err != nil {
			respondWithError(c, err)
			return
		}
		fields.PurchasedDate = &date
	}

	item, err := h.wishListService.UpdateItem(userID, itemID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// DeleteItem deletes a wish list item
// @Summary     Delete wish list item
// @Tags        wish-lists
// @Produce     json
// @Security    BearerAuth
// @Param       item_id path string true "Item ID"
// @Success     200 {object} MessageResponse "Item deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Item not found"
// @Router      /wish-lists/items/{item_id} [delete]
func (h *WishListHandler) DeleteItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	itemID, err := parsePathID(c, "item_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.wishListService.DeleteItem(userID, itemID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}

// MarkPurchased marks a wish list item as bought
// @Summary     Mark item purchased
// @Description Mark an item purchased on the given date (today by default), optionally linking the paying transaction
// @Tags        wish-lists
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       item_id path string              true  "Item ID"
// @Param       request body PurchaseItemRequest false "Purchase details"
// @Success     200 {object} models.WishListItem "Purchased item"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Item or transaction not found"
// @Router      /wish-lists/items/{item_id}/purchase [post]
func (h *WishListHandler) MarkPurchased(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	itemID, err := parsePathID(c, "item_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PurchaseItemRequest
	if c.Request.ContentLength != 0 {
		if err := bindJSON(c, &req); err != nil {
			respondWithError(c, err)
			return
		}
	}

	purchasedDate, err := parseOptionalDate(req.PurchasedDate)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := optionalID(req.TransactionID, "transaction_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	item, err := h.wishListService.MarkPurchased(userID, itemID, purchasedDate, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]interface{}{"wish_list_id": item.WishListID}
	if transactionID != nil {
		changes["transaction_id"] = *transactionID
	}
	h.auditService.Log(userID, services.AuditMarkItemPurchased, "wish_list_item", itemID, c.ClientIP(), changes)

	c.JSON(http.StatusOK, gin.H{"item": item})
}
