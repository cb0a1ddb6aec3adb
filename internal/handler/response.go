package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ridepay/internal/repository"
	"ridepay/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrPaymentMethodNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidOwnerID),
		errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidPaymentAmount),
		errors.Is(err, service.ErrInvalidPaymentMethodID),
		errors.Is(err, service.ErrUnsupportedPaymentMethodType),
		errors.Is(err, service.ErrUnsupportedProvider),
		errors.Is(err, service.ErrIncompletePaymentMethod):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrDefaultUpdateInProgress):
		return http.StatusConflict

	// Upstream provider failures
	case errors.Is(err, service.ErrProviderFailure):
		return http.StatusBadGateway

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
