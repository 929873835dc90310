package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ronicTakouugang/stockz/internal/middleware"
	"github.com/ronicTakouugang/stockz/internal/models"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusFor maps a service error onto an HTTP status and a stable code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, models.ErrQuotaExceeded):
		return http.StatusTooManyRequests, "quota_exceeded"
	case errors.Is(err, models.ErrMalformedSeries):
		return http.StatusUnprocessableEntity, "malformed_series"
	case errors.Is(err, models.ErrInsufficientHistory):
		return http.StatusUnprocessableEntity, "insufficient_history"
	case errors.Is(err, models.ErrInvalidDecisionPayload):
		return http.StatusBadGateway, "invalid_decision"
	case errors.Is(err, models.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "upstream_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeError(c *gin.Context, err error) {
	status, code := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	if status >= http.StatusInternalServerError {
		middleware.RecordError(c, err, code)
	}
	_ = c.Error(err)
	c.JSON(status, ErrorResponse{Error: code, Message: message})
}
