package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Notifications (NTF) ----

func ErrInvalidNotification(reason string) *AppError {
	return New("NTF_001", fmt.Sprintf("Invalid notification: %s", reason), http.StatusBadRequest)
}

// ---- Orders (ORD) ----

func ErrReconcileFailed(err error) *AppError {
	return Wrap("ORD_001", "Error processing pending order notifications", http.StatusInternalServerError, err)
}

func ErrNotFound(entity string) *AppError {
	return New("ORD_002", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Product costs (CST) ----

func ErrCostSourceFailed(err error) *AppError {
	return Wrap("CST_001", "Error reading product cost source", http.StatusBadGateway, err)
}

// ---- Marketplace (MKT) ----

func ErrMarketplaceUnavailable(err error) *AppError {
	return Wrap("MKT_001", "Marketplace API unavailable", http.StatusBadGateway, err)
}

func ErrMissingCredentials() *AppError {
	return New("MKT_002", "Marketplace credentials are not configured", http.StatusInternalServerError)
}

// ---- Jobs (JOB) ----

func ErrUnknownJob(name string) *AppError {
	return New("JOB_001", fmt.Sprintf("Unknown job %q", name), http.StatusNotFound)
}

func ErrJobFailed(job string, err error) *AppError {
	return Wrap("JOB_002", fmt.Sprintf("Job %s failed", job), http.StatusInternalServerError, err)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_003", "Encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a VAL_001 validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}
