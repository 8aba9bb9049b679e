package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/case-tracker/internal/service"
)

// TableBrowser defines the table operations needed by the handler.
type TableBrowser interface {
	Page(ctx context.Context, table string, page int) (*service.TablePageResult, error)
	All(ctx context.Context, table string) ([]map[string]any, error)
	Column(ctx context.Context, table, column string) ([]string, error)
}

// TableHandler serves raw rows of the allow-listed tables.
type TableHandler struct {
	svc TableBrowser
}

// NewTableHandler creates a new table handler.
func NewTableHandler(svc TableBrowser) *TableHandler {
	return &TableHandler{svc: svc}
}

// Page handles GET /api/v1/table/:table?page=N.
func (h *TableHandler) Page(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil {
			respondError(c, fmt.Errorf("%w: page must be an integer", service.ErrValidation))
			return
		}
		page = n
	}

	result, pageErr := h.svc.Page(c.Request.Context(), c.Param("table"), page)
	if pageErr != nil {
		respondError(c, pageErr)
		return
	}
	c.JSON(http.StatusOK, result)
}

// All handles GET /api/v1/table/:table/all.
func (h *TableHandler) All(c *gin.Context) {
	rows, rowsErr := h.svc.All(c.Request.Context(), c.Param("table"))
	if rowsErr != nil {
		respondError(c, rowsErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// Column handles GET /api/v1/table/:table/column/:column.
func (h *TableHandler) Column(c *gin.Context) {
	column := c.Param("column")

	values, valuesErr := h.svc.Column(c.Request.Context(), c.Param("table"), column)
	if valuesErr != nil {
		respondError(c, valuesErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"column": column, "data": values})
}
