package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"crypto-insight/internal/domain"
	"crypto-insight/internal/logger"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope of every /api/v1 answer.
type APIResponse struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message,omitempty"`
	Data      any              `json:"data,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Error     *domain.APIError `json:"error,omitempty"`
}

var now = time.Now

func respondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: now().UTC(),
	})
}

// respondError maps err onto a status and the error body. Anything that is
// not an APIError is reported as an internal error without its details.
func respondError(c *gin.Context, err error) {
	var apiErr *domain.APIError
	switch {
	case errors.As(err, &apiErr):
	case errors.Is(err, context.DeadlineExceeded):
		apiErr = &domain.APIError{Message: "request timed out", Provider: "API", Status: http.StatusGatewayTimeout, Err: err}
	case errors.Is(err, context.Canceled):
		apiErr = &domain.APIError{Message: "request cancelled", Provider: "API", Status: http.StatusServiceUnavailable, Err: err}
	default:
		apiErr = &domain.APIError{Message: "internal error", Provider: "API", Status: http.StatusInternalServerError, Err: err}
	}

	if apiErr.Status >= http.StatusInternalServerError {
		logger.WithComponent("handler").WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}

	c.JSON(apiErr.Status, APIResponse{
		Success:   false,
		Message:   apiErr.Message,
		Timestamp: now().UTC(),
		Error:     apiErr,
	})
}

// intQuery parses an integer query parameter, using fallback when absent.
func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	v := c.Query(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, domain.InvalidParam("%s must be an integer", name)
	}
	return n, nil
}
