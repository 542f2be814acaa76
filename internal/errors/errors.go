// Package errors provides the application error taxonomy.
// Services return *AppError values so handlers can render a stable code and
// message without leaking internal causes to clients.
package errors

import (
	"fmt"
	"net/http"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target carries the same code, so a sentinel matches
// the copies produced by Wrap and WithMessage.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// NotFound names the missing entity and its id in the client message.
func NotFound(sentinel *AppError, entity, id string) *AppError {
	return WithMessage(sentinel, fmt.Sprintf("%s %s not found", entity, id))
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
	ErrInvalidAPIKey      = &AppError{Code: "INVALID_API_KEY", Message: "Invalid or missing API key", StatusCode: http.StatusUnauthorized}
	ErrPipelineDisabled   = &AppError{Code: "PIPELINE_NOT_CONFIGURED", Message: "Pipeline endpoints are not configured", StatusCode: http.StatusServiceUnavailable}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Bank account errors.
var (
	ErrBankAccountNotFound = &AppError{Code: "BANK_ACCOUNT_NOT_FOUND", Message: "Bank account not found", StatusCode: http.StatusNotFound}
	ErrBankAccountInUse    = &AppError{Code: "BANK_ACCOUNT_IN_USE", Message: "Cannot delete bank account: it has related envelopes or transactions", StatusCode: http.StatusBadRequest}
)

// Category errors.
var (
	ErrCategoryNotFound    = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrCategoryInUse       = &AppError{Code: "CATEGORY_IN_USE", Message: "Category is used by existing transactions", StatusCode: http.StatusBadRequest}
	ErrCategoryHasChildren = &AppError{Code: "CATEGORY_HAS_CHILDREN", Message: "Category has child categories", StatusCode: http.StatusBadRequest}
	ErrSelfParentCategory  = &AppError{Code: "SELF_PARENT_CATEGORY", Message: "A category cannot be its own parent", StatusCode: http.StatusBadRequest}
	ErrCategoryCycle       = &AppError{Code: "CATEGORY_CYCLE", Message: "A category cannot be moved under one of its descendants", StatusCode: http.StatusBadRequest}
	ErrDuplicateCategory   = &AppError{Code: "DUPLICATE_CATEGORY", Message: "A category with this name already exists at this level", StatusCode: http.StatusBadRequest}
)

// Envelope errors.
var (
	ErrEnvelopeNotFound         = &AppError{Code: "ENVELOPE_NOT_FOUND", Message: "Envelope not found", StatusCode: http.StatusNotFound}
	ErrEnvelopeInUse            = &AppError{Code: "ENVELOPE_IN_USE", Message: "Cannot delete envelope with existing transactions", StatusCode: http.StatusBadRequest}
	ErrSameEnvelopeReallocation = &AppError{Code: "SAME_ENVELOPE_REALLOCATION", Message: "Source and destination envelopes must be different", StatusCode: http.StatusBadRequest}
	ErrInsufficientFunds        = &AppError{Code: "INSUFFICIENT_FUNDS", Message: "Insufficient funds", StatusCode: http.StatusBadRequest}
)

// Payee errors.
var (
	ErrPayeeNotFound  = &AppError{Code: "PAYEE_NOT_FOUND", Message: "Payee not found", StatusCode: http.StatusNotFound}
	ErrDuplicatePayee = &AppError{Code: "DUPLICATE_PAYEE", Message: "A payee with this name already exists", StatusCode: http.StatusBadRequest}
)

// Transaction errors.
var (
	ErrTransactionNotFound    = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidTransactionType = &AppError{Code: "INVALID_TRANSACTION_TYPE", Message: "Unsupported transaction type", StatusCode: http.StatusBadRequest}
	ErrSameAccountTransfer    = &AppError{Code: "SAME_ACCOUNT_TRANSFER", Message: "Cannot transfer to the same account", StatusCode: http.StatusBadRequest}
)

// Wish list errors.
var (
	ErrWishListNotFound     = &AppError{Code: "WISH_LIST_NOT_FOUND", Message: "Wish list not found", StatusCode: http.StatusNotFound}
	ErrWishListItemNotFound = &AppError{Code: "WISH_LIST_ITEM_NOT_FOUND", Message: "Wish list item not found", StatusCode: http.StatusNotFound}
)
