package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Willysmile/cash-stuffing/internal/errors"
	"github.com/Willysmile/cash-stuffing/internal/services"
)

// CategoryHandler handles category-related requests
type CategoryHandler struct {
	categoryService services.CategoryServicer
	auditService    services.AuditServicer
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService services.CategoryServicer, auditService services.AuditServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, auditService: auditService}
}

// CreateCategoryRequest represents the request payload for creating a category
type CreateCategoryRequest struct {
	Name      string  `json:"name" binding:"required,min=1,max=100"`
	ParentID  *string `json:"parent_id"`
	Color     string  `json:"color" binding:"omitempty,hex_color"`
	Icon      string  `json:"icon" binding:"max=50"`
	IsDefault bool    `json:"is_default"`
	SortOrder int     `json:"sort_order" binding:"gte=0"`
}

// UpdateCategoryRequest represents the request payload for updating a category.
// An empty parent_id moves the category to the root.
type UpdateCategoryRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=1,max=100"`
	ParentID  *string `json:"parent_id"`
	Color     *string `json:"color" binding:"omitempty,hex_color"`
	Icon      *string `json:"icon" binding:"omitempty,max=50"`
	IsDefault *bool   `json:"is_default"`
	SortOrder *int    `json:"sort_order" binding:"omitempty,gte=0"`
}

// CreateCategory handles the creation of a new category
// @Summary     Create a category
// @Description Create a category, optionally under a parent
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateCategoryRequest true "Category details"
// @Success     201 {object} models.Category "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input or duplicate name"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Parent category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCategoryRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	parentID, err := optionalID(req.ParentID, "parent_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.CreateCategory(userID, services.CategoryInput{
		Name:      req.Name,
		ParentID:  parentID,
		Color:     req.Color,
		Icon:      req.Icon,
		IsDefault: req.IsDefault,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// GetCategories handles the retrieval of categories
// @Summary     List categories
// @Description Get a paginated list of categories ordered by sort order then name
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       skip       query int    false "Items to skip"
// @Param       limit      query int    false "Items to return (max 500)"
// @Param       parent_id  query string false "Only children of this category"
// @Param       roots_only query bool   false "Only top-level categories"
// @Param       search     query string false "Search by name"
// @Success     200 {object} pagination.PageResponse[models.Category] "Paginated categories"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories [get]
func (h *CategoryHandler) GetCategories(c *gin.Context) {
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

	parentID, err := queryID(c, "parent_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter := services.CategoryFilter{ParentID: parentID, Search: c.Query("search")}
	if v := c.Query("roots_only"); v != "" {
		roots, parseErr := strconv.ParseBool(v)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid roots_only"))
			return
		}
		filter.RootsOnly = roots
	}

	result, err := h.categoryService.GetUserCategories(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCategoryTree returns all categories nested under their parents
// @Summary     Category tree
// @Description Get every category of the user as a tree. Categories whose parent is missing are returned as roots.
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  services.CategoryNode "Category tree"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/tree [get]
func (h *CategoryHandler) GetCategoryTree(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tree, err := h.categoryService.GetCategoryTree(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": tree})
}

// GetCategoryByID handles the retrieval of a specific category
// @Summary     Get category by ID
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Success     200 {object} models.Category "Category details"
// @Failure     400 {object} ErrorResponse "Invalid category ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id} [get]
func (h *CategoryHandler) GetCategoryByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.GetCategoryByID(userID, categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// UpdateCategory handles updating a category
// @Summary     Update category
// @Description Update a category. Moving it under itself or one of its descendants is rejected.
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Category ID"
// @Param       request body UpdateCategoryRequest true "Fields to update"
// @Success     200 {object} models.Category "Updated category"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCategoryRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	parentID, err := clearableID(req.ParentID, "parent_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.UpdateCategory(userID, categoryID, services.CategoryUpdateFields{
		Name:      req.Name,
		ParentID:  parentID,
		Color:     req.Color,
		Icon:      req.Icon,
		IsDefault: req.IsDefault,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory handles deleting a category
// @Summary     Delete category
// @Description Delete a category that has no children and no transactions
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Success     200 {object} MessageResponse "Category deleted"
// @Failure     400 {object} ErrorResponse "Category in use"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.categoryService.DeleteCategory(userID, categoryID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDeleteCategory, "category", categoryID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
