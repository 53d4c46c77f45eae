package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrMalformedRecord  ErrorType = "MALFORMED_RECORD"
	ErrTransientStorage ErrorType = "TRANSIENT_STORAGE"
	ErrQueue            ErrorType = "QUEUE_ERROR"
	ErrInvalidRequest   ErrorType = "INVALID_REQUEST"
	ErrAuthFailed       ErrorType = "AUTH_FAILED"
	ErrNotFound         ErrorType = "NOT_FOUND"
	ErrInternal         ErrorType = "INTERNAL_ERROR"
)

// AppError is the standard error struct for the application
type AppError struct {
	Type       ErrorType `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errType ErrorType, msg string, cause error) *AppError {
	return &AppError{
		Type:       errType,
		Message:    msg,
		Cause:      cause,
		HTTPStatus: mapTypeToStatus(errType),
	}
}

func NewMalformedRecord(msg string, cause error) *AppError {
	return New(ErrMalformedRecord, msg, cause)
}

func NewTransientStorage(msg string, cause error) *AppError {
	return New(ErrTransientStorage, msg, cause)
}

func NewInvalidRequest(msg string) *AppError {
	return New(ErrInvalidRequest, msg, nil)
}

func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return New(ErrInternal, err.Error(), err)
}

// IsMalformed reports whether err is a malformed-record classification.
// Malformed records are counted and skipped; redelivering them can never
// succeed.
func IsMalformed(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ErrMalformedRecord
}

// IsTransient reports whether err must propagate to the delivery mechanism
// to trigger redelivery. Anything unclassified errs toward redelivery
// rather than silent data loss.
func IsTransient(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return true
	}
	return appErr.Type != ErrMalformedRecord
}

func mapTypeToStatus(t ErrorType) int {
	switch t {
	case ErrInvalidRequest, ErrMalformedRecord:
		return http.StatusBadRequest
	case ErrAuthFailed:
		return http.StatusUnauthorized
	case ErrNotFound:
		return http.StatusNotFound
	case ErrQueue, ErrTransientStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
