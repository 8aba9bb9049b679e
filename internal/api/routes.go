package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	infragin "github.com/jonesrussell/north-cloud/case-tracker/infrastructure/gin"
)

// Handlers groups the HTTP handlers mounted by SetupRoutes.
type Handlers struct {
	Reports  *ReportHandler
	Cases    *CaseHandler
	Tables   *TableHandler
	Snapshot *SnapshotHandler
}

// SetupRoutes configures all API routes. /metrics is public; everything under
// /api/v1 is protected with JWT when jwtSecret is set. Case entry is rate
// limited per client.
func SetupRoutes(router *gin.Engine, h Handlers, jwtSecret string, limiter *RateLimiter, metricsHandler http.Handler) {
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	_, protected := infragin.SetupAPIRoutesWithPublic(router, jwtSecret)

	// Table browser
	protected.GET("/table/:table", h.Tables.Page)
	protected.GET("/table/:table/all", h.Tables.All)
	protected.GET("/table/:table/column/:column", h.Tables.Column)

	// Case entry
	create := []gin.HandlerFunc{h.Cases.CreateCase}
	if limiter != nil {
		create = append([]gin.HandlerFunc{limiter.Middleware()}, create...)
	}
	protected.POST("/cases", create...)
	protected.POST("/case-entry", create...)

	// Reports
	reports := protected.Group("/reports")
	reports.GET("/jurisdictions", h.Reports.Jurisdictions)
	reports.GET("/sub-units", h.Reports.SubUnits)
	reports.GET("/stages", h.Reports.Stages)
	reports.GET("/stages/export", h.Reports.ExportStages)
	reports.GET("/periods", h.Reports.Periods)
	reports.GET("/timeseries", h.Reports.TimeSeries)
	reports.GET("/timeseries/chart", h.Reports.Chart)
	reports.GET("/weekly", h.Reports.Weekly)

	// Statutes
	statutes := protected.Group("/statutes")
	statutes.GET("/chapters", h.Reports.Chapters)
	statutes.GET("/sub-chapters", h.Reports.SubChapters)
	statutes.GET("/sections", h.Reports.Sections)
	statutes.GET("/lookup", h.Reports.LookupSection)

	protected.POST("/snapshot/refresh", h.Snapshot.Refresh)
}
