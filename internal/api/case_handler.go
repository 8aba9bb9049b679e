package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/case-tracker/internal/domain"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/service"
)

// CaseCreator defines the case-entry operation needed by the handler.
type CaseCreator interface {
	Create(ctx context.Context, req *service.CaseEntryRequest) (*domain.CaseRecord, error)
}

// CaseHandler handles case-entry HTTP requests.
type CaseHandler struct {
	svc CaseCreator
}

// NewCaseHandler creates a new case handler.
func NewCaseHandler(svc CaseCreator) *CaseHandler {
	return &CaseHandler{svc: svc}
}

// CreateCase handles POST /api/v1/cases.
func (h *CaseHandler) CreateCase(c *gin.Context) {
	var req service.CaseEntryRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		_ = c.Error(bindErr)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request body",
			"error":   bindErr.Error(),
		})
		return
	}

	record, createErr := h.svc.Create(c.Request.Context(), &req)
	if createErr != nil {
		_ = c.Error(createErr)

		status := statusFor(createErr)
		msg, detail := "Failed to save case", "internal server error"
		if status != http.StatusInternalServerError {
			msg, detail = "Invalid case entry", createErr.Error()
		}
		c.JSON(status, gin.H{
			"success": false,
			"message": msg,
			"error":   detail,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Case saved",
		"data":    record,
	})
}
