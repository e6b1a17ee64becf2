package apperror

import (
	"errors"
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

// Code returns the AppError code carried by err, or "" if there is none.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// ---- Webhook ingestion (WHK) ----

const (
	CodeInvalidPayload     = "WHK_001"
	CodeEventNotFound      = "WHK_002"
	CodePersistenceFailure = "WHK_003"
	CodeRouterFailure      = "WHK_004"
)

func ErrInvalidPayload(reason string) *AppError {
	return New(CodeInvalidPayload, "Invalid webhook payload: "+reason, http.StatusBadRequest)
}

func ErrEventNotFound(eventID string) *AppError {
	return New(CodeEventNotFound, fmt.Sprintf("Webhook event %s not found", eventID), http.StatusNotFound)
}

func ErrPersistence(err error) *AppError {
	return Wrap(CodePersistenceFailure, "Webhook event persistence failed", http.StatusInternalServerError, err)
}

func ErrRouter(err error) *AppError {
	return Wrap(CodeRouterFailure, "Webhook handler failed", http.StatusUnprocessableEntity, err)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrLockHeld() *AppError {
	return New("SYS_002", "Retry run already in progress", http.StatusConflict)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("REQ_001", message, http.StatusBadRequest)
}
