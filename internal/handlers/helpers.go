package handlers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Willysmile/cash-stuffing/internal/errors"
	"github.com/Willysmile/cash-stuffing/internal/middleware"
	"github.com/Willysmile/cash-stuffing/internal/pagination"
	"github.com/Willysmile/cash-stuffing/internal/uuid"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// parsePathID validates a UUID path parameter.
// Returns ErrInvalidInput if the parameter is not a valid id.
func parsePathID(c *gin.Context, param string) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// queryID reads an optional UUID query parameter.
func queryID(c *gin.Context, name string) (*string, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+name)
	}
	return &id, nil
}

// clearableID turns an optional JSON id into an update value: nil leaves the
// field alone, "" clears it, anything else must be a UUID.
func clearableID(raw *string, name string) (**string, error) {
	if raw == nil {
		return nil, nil
	}
	if *raw == "" {
		var none *string
		return &none, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+name)
	}
	ptr := &id
	return &ptr, nil
}

// optionalID validates an optional JSON id where "" means absent.
func optionalID(raw *string, name string) (*string, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+name)
	}
	return &id, nil
}

// requiredID validates a mandatory JSON id.
func requiredID(raw, name string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+name)
	}
	return id, nil
}

// bindPage reads skip and limit from the query string.
func bindPage(c *gin.Context) (pagination.PageRequest, error) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		return page, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return page, nil
}

// bindJSON decodes and validates the request body.
func bindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return nil
}

// parseFlexibleTime accepts RFC3339 timestamps and plain YYYY-MM-DD dates.
func parseFlexibleTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, use RFC3339 or YYYY-MM-DD", s)
}

// parseOptionalDate parses a date string pointer; nil or "" yields nil.
func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := parseFlexibleTime(*raw)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return &t, nil
}

// respondWithError records err on the context for middleware.ErrorHandler,
// which renders it, and stops the handler chain.
func respondWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}
