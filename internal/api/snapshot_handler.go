package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/case-tracker/internal/snapshot"
)

// Refresher reloads the snapshot from the database.
type Refresher interface {
	Refresh(ctx context.Context) (*snapshot.Snapshot, error)
}

// SnapshotHandler exposes manual snapshot reloads.
type SnapshotHandler struct {
	refresher Refresher
}

// NewSnapshotHandler creates a new snapshot handler.
func NewSnapshotHandler(refresher Refresher) *SnapshotHandler {
	return &SnapshotHandler{refresher: refresher}
}

// Refresh handles POST /api/v1/snapshot/refresh.
func (h *SnapshotHandler) Refresh(c *gin.Context) {
	snap, refreshErr := h.refresher.Refresh(c.Request.Context())
	if refreshErr != nil {
		_ = c.Error(refreshErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "snapshot refresh failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cases":      len(snap.Cases),
		"statutes":   len(snap.Statutes),
		"fetched_at": snap.FetchedAt,
	})
}
