package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with an HTTP status code.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Error taxonomy for the invoicing core. Load-time errors are fatal to the
// session until the source is fixed; the rest are recoverable per operation.
var (
	// ErrSourceUnavailable means the inventory source file could not be opened.
	ErrSourceUnavailable = &AppError{Code: http.StatusServiceUnavailable, Message: "Inventory source unavailable"}
	// ErrSchema means the inventory source is missing required columns or the sheet.
	ErrSchema = &AppError{Code: http.StatusInternalServerError, Message: "Inventory source schema invalid"}
	// ErrMedicineNotFound is a lookup miss; the caller may reselect.
	ErrMedicineNotFound = &AppError{Code: http.StatusNotFound, Message: "Medicine not found"}
	// ErrNoSelection means a cart operation was attempted with no medicine selected.
	ErrNoSelection = &AppError{Code: http.StatusBadRequest, Message: "No medicine selected"}
	// ErrEmptyInvoice means checkout was attempted with no line items.
	ErrEmptyInvoice = &AppError{Code: http.StatusBadRequest, Message: "Invoice has no items"}
	// ErrPrintFailed means the receipt device rejected the job; no stock was mutated.
	ErrPrintFailed = &AppError{Code: http.StatusBadGateway, Message: "Receipt printing failed"}
	// ErrStockUpdateFailed means a decrement failed after the receipt printed.
	ErrStockUpdateFailed = &AppError{Code: http.StatusInternalServerError, Message: "Stock update failed after printing"}
	// ErrPersistence means stock changes are applied in memory but not saved;
	// the receipt was already printed and the caller should retry the commit.
	ErrPersistence = &AppError{Code: http.StatusInternalServerError, Message: "Failed to persist stock changes"}

	ErrUnauthorized = &AppError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrBadRequest   = &AppError{Code: http.StatusBadRequest, Message: "Bad request"}
)

// InsufficientStockError is returned when a requested quantity exceeds the
// stock still available for a medicine. Available accounts for quantities
// already reserved in the current invoice.
type InsufficientStockError struct {
	Name      string `json:"name"`
	Available int    `json:"available"`
	Requested int    `json:"requested"`
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("only %d units available for %s (requested %d)", e.Available, e.Name, e.Requested)
}

// NewAppError creates a new application error.
func NewAppError(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// NewBadRequestError creates a bad request error with a custom message.
func NewBadRequestError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message}
}

// NewNotFoundError creates a not found error with a custom message.
func NewNotFoundError(resource string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: resource + " not found"}
}

// GetAppError converts any error to an AppError for the HTTP boundary.
func GetAppError(err error) *AppError {
	var insufficient *InsufficientStockError
	if errors.As(err, &insufficient) {
		return &AppError{Code: http.StatusConflict, Message: insufficient.Error()}
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{Code: http.StatusInternalServerError, Message: err.Error()}
}
