// Package api provides HTTP handlers for the case-tracker service.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/case-tracker/internal/domain"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/render"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/report"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/service"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportFilename  = "stages.xlsx"
	defaultTitle    = "Cases per month"
)

// Reporter defines the report operations needed by the handler.
type Reporter interface {
	JurisdictionReport(ctx context.Context) service.Result[report.JurisdictionReport]
	SubUnits(ctx context.Context, stage domain.Stage) service.Result[[]report.SubUnitReport]
	Stages(ctx context.Context, group report.GroupBy) service.Result[report.StageReport]
	Periods(ctx context.Context, q report.PeriodQuery) (service.Result[report.PeriodReport], error)
	TimeSeries(ctx context.Context, filter report.SeriesFilter) service.Result[report.Series]
	Weekly(ctx context.Context) service.Result[report.WeeklyReport]
	Chapters(ctx context.Context) service.Result[[]string]
	SubChapters(ctx context.Context, chapter string) service.Result[service.SubChapterResult]
	Sections(ctx context.Context, chapter, subChapter string) service.Result[[]report.SectionOption]
	LookupSection(ctx context.Context, section string) service.Result[domain.StatuteEntry]
}

// ReportHandler serves the aggregated reports and statute lookups.
type ReportHandler struct {
	svc Reporter
	now func() time.Time
}

// NewReportHandler creates a new report handler.
func NewReportHandler(svc Reporter) *ReportHandler {
	return &ReportHandler{svc: svc, now: time.Now}
}

// Jurisdictions handles GET /api/v1/reports/jurisdictions.
func (h *ReportHandler) Jurisdictions(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.JurisdictionReport(c.Request.Context()))
}

// SubUnits handles GET /api/v1/reports/sub-units?stage=.
func (h *ReportHandler) SubUnits(c *gin.Context) {
	stage := domain.Stage(strings.TrimSpace(c.Query("stage")))
	c.JSON(http.StatusOK, h.svc.SubUnits(c.Request.Context(), stage))
}

// Stages handles GET /api/v1/reports/stages?group=district|thana.
func (h *ReportHandler) Stages(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Stages(c.Request.Context(), report.ParseGroupBy(c.Query("group"))))
}

// Periods handles GET /api/v1/reports/periods.
func (h *ReportHandler) Periods(c *gin.Context) {
	q, parseErr := h.periodQuery(c)
	if parseErr != nil {
		respondError(c, parseErr)
		return
	}

	result, periodsErr := h.svc.Periods(c.Request.Context(), q)
	if periodsErr != nil {
		respondError(c, periodsErr)
		return
	}
	c.JSON(http.StatusOK, result)
}

// TimeSeries handles GET /api/v1/reports/timeseries?section=&stage=.
func (h *ReportHandler) TimeSeries(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.TimeSeries(c.Request.Context(), seriesFilter(c)))
}

// Weekly handles GET /api/v1/reports/weekly.
func (h *ReportHandler) Weekly(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Weekly(c.Request.Context()))
}

// ExportStages handles GET /api/v1/reports/stages/export. The workbook holds
// the stage cross-tab and the period comparison for the same query parameters.
func (h *ReportHandler) ExportStages(c *gin.Context) {
	q, parseErr := h.periodQuery(c)
	if parseErr != nil {
		respondError(c, parseErr)
		return
	}

	ctx := c.Request.Context()
	stages := h.svc.Stages(ctx, report.ParseGroupBy(c.Query("group")))
	periods, periodsErr := h.svc.Periods(ctx, q)
	if periodsErr != nil {
		respondError(c, periodsErr)
		return
	}

	var buf bytes.Buffer
	if renderErr := render.StageWorkbook(&buf, stages.Data, periods.Data); renderErr != nil {
		respondError(c, renderErr)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Chart handles GET /api/v1/reports/timeseries/chart?format=png|pdf.
func (h *ReportHandler) Chart(c *gin.Context) {
	format := c.DefaultQuery("format", render.FormatPNG)
	filter := seriesFilter(c)

	title := c.DefaultQuery("title", defaultTitle)
	if filter.Section != "" {
		title += " - " + filter.Section
	}

	series := h.svc.TimeSeries(c.Request.Context(), filter)

	var buf bytes.Buffer
	if chartErr := render.SeriesChart(&buf, series.Data, title, format); chartErr != nil {
		switch {
		case errors.Is(chartErr, render.ErrUnsupportedFormat):
			respondError(c, fmt.Errorf("%w: %w", service.ErrValidation, chartErr))
		case errors.Is(chartErr, render.ErrEmptySeries):
			respondError(c, fmt.Errorf("%w: %w", service.ErrNotFound, chartErr))
		default:
			respondError(c, chartErr)
		}
		return
	}

	c.Data(http.StatusOK, render.ContentType(format), buf.Bytes())
}

// Chapters handles GET /api/v1/statutes/chapters.
func (h *ReportHandler) Chapters(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Chapters(c.Request.Context()))
}

// SubChapters handles GET /api/v1/statutes/sub-chapters?chapter=.
func (h *ReportHandler) SubChapters(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.SubChapters(c.Request.Context(), c.Query("chapter")))
}

// Sections handles GET /api/v1/statutes/sections?chapter=&sub_chapter=.
func (h *ReportHandler) Sections(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Sections(c.Request.Context(), c.Query("chapter"), c.Query("sub_chapter")))
}

// LookupSection handles GET /api/v1/statutes/lookup?section=. A miss is a
// blank entry with 200.
func (h *ReportHandler) LookupSection(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.LookupSection(c.Request.Context(), c.Query("section")))
}

func seriesFilter(c *gin.Context) report.SeriesFilter {
	return report.SeriesFilter{
		Section: strings.TrimSpace(c.Query("section")),
		Stage:   domain.Stage(strings.TrimSpace(c.Query("stage"))),
	}
}

// periodQuery reads year, month (0-based), window, district and yoy. Year and
// month default to the current month.
func (h *ReportHandler) periodQuery(c *gin.Context) (report.PeriodQuery, error) {
	now := h.now()
	q := report.PeriodQuery{
		Year:         now.Year(),
		Month:        int(now.Month()) - 1,
		Jurisdiction: strings.TrimSpace(c.Query("district")),
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"year", &q.Year},
		{"month", &q.Month},
		{"window", &q.Window},
	}
	for _, p := range ints {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		n, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return q, fmt.Errorf("%w: %s must be an integer", service.ErrValidation, p.name)
		}
		*p.dst = n
	}

	if raw := c.Query("yoy"); raw != "" {
		yoy, boolErr := strconv.ParseBool(raw)
		if boolErr != nil {
			return q, fmt.Errorf("%w: yoy must be a boolean", service.ErrValidation)
		}
		q.YearOverYear = yoy
	}

	return q, nil
}
