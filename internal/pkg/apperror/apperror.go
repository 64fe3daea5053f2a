package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError. Each kind maps to exactly one HTTP status.
type Kind string

const (
	KindValidation           Kind = "VALIDATION_ERROR"
	KindNotFound             Kind = "NOT_FOUND"
	KindQuotaExceeded        Kind = "QUOTA_EXCEEDED"
	KindSubscriptionInactive Kind = "SUBSCRIPTION_INACTIVE"
	KindConflict             Kind = "CONFLICT"
	KindUpstream             Kind = "COMPLETION_UPSTREAM_ERROR"
	KindPersistence          Kind = "PERSISTENCE_ERROR"
	KindUnauthorized         Kind = "UNAUTHORIZED"
)

// Sentinels for errors.Is. An *AppError matches the sentinel of its kind.
var (
	ErrValidation           = &AppError{Kind: KindValidation}
	ErrNotFound             = &AppError{Kind: KindNotFound}
	ErrQuotaExceeded        = &AppError{Kind: KindQuotaExceeded}
	ErrSubscriptionInactive = &AppError{Kind: KindSubscriptionInactive}
	ErrConflict             = &AppError{Kind: KindConflict}
	ErrUpstream             = &AppError{Kind: KindUpstream}
	ErrPersistence          = &AppError{Kind: KindPersistence}
	ErrUnauthorized         = &AppError{Kind: KindUnauthorized}
)

type AppError struct {
	Kind    Kind
	Message string
	Err     error
	Data    interface{} // optional payload echoed in the error envelope
}

func (e *AppError) Error() string {
	if e.Err != nil {
		if e.Message == "" {
			return fmt.Sprintf("%s: %v", e.Kind, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func (e *AppError) WithData(data interface{}) *AppError {
	e.Data = data
	return e
}

func (e *AppError) HTTPStatus() int {
	return StatusOf(e.Kind)
}

func StatusOf(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindQuotaExceeded:
		return http.StatusPaymentRequired
	case KindSubscriptionInactive, KindConflict:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusBadGateway
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func Validation(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func QuotaExceeded(message string) *AppError {
	return &AppError{Kind: KindQuotaExceeded, Message: message}
}

func SubscriptionInactive(message string) *AppError {
	return &AppError{Kind: KindSubscriptionInactive, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

func Upstream(message string, err error) *AppError {
	return &AppError{Kind: KindUpstream, Message: message, Err: err}
}

func Unauthorized(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

// Persistence wraps a storage failure. AppErrors pass through untouched so a
// repository classification (e.g. NotFound from a foreign key) survives.
func Persistence(message string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{Kind: KindPersistence, Message: message, Err: err}
}

// KindOf reports the kind of err, or "" when err carries no AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}
