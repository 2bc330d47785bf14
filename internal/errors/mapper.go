package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// HTTPStatus converts engine/infra errors into an HTTP status code.
// Keeps handlers clean by centralizing error mapping.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, ErrSelfAction), IsValidation(err):
		return http.StatusBadRequest

	case errors.Is(err, ErrRecipientNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound

	case errors.Is(err, ErrDuplicateThisWeek):
		return http.StatusConflict

	case errors.Is(err, ErrQuotaExceeded):
		return http.StatusTooManyRequests

	case errors.Is(err, ErrFetchFailed):
		return http.StatusBadGateway

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	case errors.Is(err, context.Canceled):
		return 499 // client closed request

	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON maps err onto a status code and writes a JSON error body.
func WriteJSON(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// Invalid wraps a validation message so handlers can reject bad input
// before any write.
func Invalid(msg string) error {
	return &validationError{msg: msg}
}

type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }

// IsValidation reports whether err was produced by Invalid.
func IsValidation(err error) bool {
	var v *validationError
	return errors.As(err, &v)
}
