package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jonesrussell/north-cloud/case-tracker/internal/api"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/render"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/report"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/service"
)

func setupReportRouter(t *testing.T, reporter api.Reporter) *gin.Engine {
	t.Helper()

	router := newTestEngine(t)
	handler := api.NewReportHandler(reporter)

	v1 := router.Group("/api/v1")
	v1.GET("/reports/jurisdictions", handler.Jurisdictions)
	v1.GET("/reports/sub-units", handler.SubUnits)
	v1.GET("/reports/stages", handler.Stages)
	v1.GET("/reports/stages/export", handler.ExportStages)
	v1.GET("/reports/periods", handler.Periods)
	v1.GET("/reports/timeseries", handler.TimeSeries)
	v1.GET("/reports/timeseries/chart", handler.Chart)
	v1.GET("/reports/weekly", handler.Weekly)
	v1.GET("/statutes/chapters", handler.Chapters)
	v1.GET("/statutes/sub-chapters", handler.SubChapters)
	v1.GET("/statutes/sections", handler.Sections)
	v1.GET("/statutes/lookup", handler.LookupSection)

	return router
}

func TestReportHandler_WrapsPayload(t *testing.T) {
	router := setupReportRouter(t, &mockReporter{})

	w := doRequest(t, router, http.MethodGet, "/api/v1/reports/jurisdictions", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data       report.JurisdictionReport `json:"data"`
		FetchedAt  time.Time                 `json:"fetched_at"`
		FetchError *string                   `json:"fetch_error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, []report.JurisdictionCount{{Jurisdiction: "Bhopal", Count: 2}}, body.Data.Rows)
	assert.Equal(t, testFetchedAt, body.FetchedAt)
	assert.Nil(t, body.FetchError, "fetch_error is omitted when the snapshot loaded")
}

func TestReportHandler_QueryParameters(t *testing.T) {
	router := setupReportRouter(t, &mockReporter{})

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "sub-unit stage", path: "/api/v1/reports/sub-units?stage=abc", want: `"district":"abc"`},
		{name: "stage grouping", path: "/api/v1/reports/stages?group=thana", want: `"group_by":"thana"`},
		{name: "unknown grouping", path: "/api/v1/reports/stages?group=io", want: `"group_by":"district"`},
		{name: "series filter", path: "/api/v1/reports/timeseries?section=103&stage=x", want: `"filter":{"section":"103","stage":"x"}`},
		{name: "weekly", path: "/api/v1/reports/weekly", want: `"thanas":["Kotwali"]`},
		{name: "chapters", path: "/api/v1/statutes/chapters", want: `"data":["VI","XVII"]`},
		{name: "sub-chapters", path: "/api/v1/statutes/sub-chapters?chapter=VI", want: `"has_sub_chapters":true`},
		{name: "sections", path: "/api/v1/statutes/sections?chapter=VI&sub_chapter=life", want: `{"section_number":"VI","section_content":"life"}`},
		{name: "lookup hit", path: "/api/v1/statutes/lookup?section=103", want: `"section_content":"Murder"`},
		{name: "lookup miss is blank", path: "/api/v1/statutes/lookup?section=999", want: `"section_number":""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodGet, tt.path, "")
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestReportHandler_Periods(t *testing.T) {
	var got report.PeriodQuery
	reporter := &mockReporter{
		periodsFunc: func(q report.PeriodQuery) (service.Result[report.PeriodReport], error) {
			got = q
			return service.Result[report.PeriodReport]{Data: report.PeriodReport{Query: q}}, nil
		},
	}
	router := setupReportRouter(t, reporter)

	w := doRequest(t, router, http.MethodGet, "/api/v1/reports/periods?year=2024&month=2&window=6&district=Bhopal&yoy=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, report.PeriodQuery{Year: 2024, Month: 2, Window: 6, Jurisdiction: "Bhopal", YearOverYear: true}, got)

	w = doRequest(t, router, http.MethodGet, "/api/v1/reports/periods", "")
	require.Equal(t, http.StatusOK, w.Code)
	now := time.Now()
	assert.Equal(t, now.Year(), got.Year)
	assert.Equal(t, int(now.Month())-1, got.Month)
	assert.Zero(t, got.Window, "the service fills in the default window")
}

func TestReportHandler_PeriodsBadRequest(t *testing.T) {
	reporter := &mockReporter{
		periodsFunc: func(q report.PeriodQuery) (service.Result[report.PeriodReport], error) {
			return service.Result[report.PeriodReport]{}, service.ValidatePeriodQuery(&q)
		},
	}
	router := setupReportRouter(t, reporter)

	for _, path := range []string{
		"/api/v1/reports/periods?year=abc",
		"/api/v1/reports/periods?yoy=maybe",
		"/api/v1/reports/periods?window=4",
		"/api/v1/reports/periods?month=12",
	} {
		w := doRequest(t, router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Contains(t, w.Body.String(), `"error"`)
	}
}

func TestReportHandler_ExportStages(t *testing.T) {
	router := setupReportRouter(t, &mockReporter{})

	w := doRequest(t, router, http.MethodGet, "/api/v1/reports/stages/export?year=2024&month=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "stages.xlsx")

	f, openErr := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, openErr)
	t.Cleanup(func() { _ = f.Close() })
	assert.Equal(t, []string{render.SheetStages, render.SheetPeriods}, f.GetSheetList())
}

func TestReportHandler_Chart(t *testing.T) {
	reporter := &mockReporter{
		timeSeriesFunc: func(filter report.SeriesFilter) service.Result[report.Series] {
			if filter.Section == "none" {
				return service.Result[report.Series]{}
			}
			return service.Result[report.Series]{Data: report.Series{Labels: []string{"1/2024", "2/2024"}, Values: []int{1, 3}}}
		},
	}
	router := setupReportRouter(t, reporter)

	w := doRequest(t, router, http.MethodGet, "/api/v1/reports/timeseries/chart?section=103", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = doRequest(t, router, http.MethodGet, "/api/v1/reports/timeseries/chart?format=pdf", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))

	w = doRequest(t, router, http.MethodGet, "/api/v1/reports/timeseries/chart?format=gif", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/v1/reports/timeseries/chart?section=none", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
