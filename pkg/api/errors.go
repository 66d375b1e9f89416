package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kientrucanlac/anlac/pkg/fetch"
	"github.com/kientrucanlac/anlac/pkg/session"
	"github.com/kientrucanlac/anlac/pkg/site"
)

const msgTooManyRequests = "Bạn thao tác quá nhanh, vui lòng thử lại sau giây lát."

// ValidationError reports a bad request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// mapAPIError picks the HTTP status and client message for err.
func mapAPIError(err error) (int, string) {
	var validErr *ValidationError
	if errors.As(err, &validErr) {
		return http.StatusBadRequest, validErr.Error()
	}
	if errors.Is(err, site.ErrUnknownCategory) {
		return http.StatusBadRequest, err.Error()
	}
	if errors.Is(err, session.ErrNoToken) {
		return http.StatusBadRequest, "token is required"
	}
	if errors.Is(err, session.ErrTokenExpired) {
		return http.StatusBadRequest, "token has expired"
	}
	// Backend failures already carry a display message. A 401 surfaces as
	// a redirect on the session handle, not here.
	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) {
		return http.StatusBadGateway, fetchErr.Message
	}

	slog.Error("Unexpected request error", "error", err)
	return http.StatusInternalServerError, "internal server error"
}

func abortWithError(c *gin.Context, err error) {
	status, msg := mapAPIError(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg})
}
