package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	infralogger "github.com/jonesrussell/north-cloud/case-tracker/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/service"
)

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError attaches err to the context for the access log and writes an
// error body. Internal errors are logged with the request ID and not echoed
// to the client.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		infralogger.FromContext(c.Request.Context()).Error("Request failed",
			infralogger.String("path", c.FullPath()),
			infralogger.Error(err),
		)
		msg = "internal server error"
	}
	c.JSON(status, gin.H{"error": msg})
}
