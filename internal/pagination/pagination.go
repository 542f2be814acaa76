// Package pagination implements skip/limit paging for list endpoints.
package pagination

import (
	"gorm.io/gorm"
)

const (
	// DefaultLimit applies when a request omits limit.
	DefaultLimit = 100
	// MaxLimit is the largest page any list endpoint returns.
	MaxLimit = 500
)

// PageRequest holds pagination parameters parsed from query strings.
type PageRequest struct {
	Skip  int `form:"skip" binding:"omitempty,min=0"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// Normalize applies the default limit and clamps out-of-range values.
// Services call it so the cap holds even when binding was bypassed.
func (p *PageRequest) Normalize() {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
}

// PageResponse wraps a page of items with metadata.
type PageResponse[T any] struct {
	Data       []T   `json:"data"`
	Skip       int   `json:"skip"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"total_items"`
}

// NewPageResponse creates a PageResponse from the given data and total count.
func NewPageResponse[T any](data []T, req PageRequest, totalItems int64) PageResponse[T] {
	if data == nil {
		data = []T{}
	}
	return PageResponse[T]{
		Data:       data,
		Skip:       req.Skip,
		Limit:      req.Limit,
		TotalItems: totalItems,
	}
}

// Paginate returns a GORM scope that applies OFFSET and LIMIT for the given page request.
func Paginate(req PageRequest) func(db *gorm.DB) *gorm.DB {
	req.Normalize()
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(req.Skip).Limit(req.Limit)
	}
}
