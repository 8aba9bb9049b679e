package api_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/case-tracker/internal/domain"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/report"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/service"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/snapshot"
)

var testFetchedAt = time.Date(2024, time.April, 2, 9, 30, 0, 0, time.UTC)

func wrap[T any](data T) service.Result[T] {
	return service.Result[T]{Data: data, FetchedAt: testFetchedAt}
}

type mockReporter struct {
	periodsFunc    func(q report.PeriodQuery) (service.Result[report.PeriodReport], error)
	timeSeriesFunc func(filter report.SeriesFilter) service.Result[report.Series]
}

func (m *mockReporter) JurisdictionReport(context.Context) service.Result[report.JurisdictionReport] {
	return wrap(report.JurisdictionReport{Rows: []report.JurisdictionCount{{Jurisdiction: "Bhopal", Count: 2}}})
}

func (m *mockReporter) SubUnits(_ context.Context, stage domain.Stage) service.Result[[]report.SubUnitReport] {
	return wrap([]report.SubUnitReport{{Jurisdiction: string(stage)}})
}

func (m *mockReporter) Stages(_ context.Context, group report.GroupBy) service.Result[report.StageReport] {
	return wrap(report.StageTable(nil, domain.DefaultStages(), group))
}

func (m *mockReporter) Periods(_ context.Context, q report.PeriodQuery) (service.Result[report.PeriodReport], error) {
	if m.periodsFunc != nil {
		return m.periodsFunc(q)
	}
	return wrap(report.PeriodReport{Query: q}), nil
}

func (m *mockReporter) TimeSeries(_ context.Context, filter report.SeriesFilter) service.Result[report.Series] {
	if m.timeSeriesFunc != nil {
		return m.timeSeriesFunc(filter)
	}
	return wrap(report.Series{Filter: filter, Labels: []string{"1/2024", "2/2024"}, Values: []int{1, 3}})
}

func (m *mockReporter) Weekly(context.Context) service.Result[report.WeeklyReport] {
	return wrap(report.WeeklyReport{SubUnits: []string{"Kotwali"}})
}

func (m *mockReporter) Chapters(context.Context) service.Result[[]string] {
	return wrap([]string{"VI", "XVII"})
}

func (m *mockReporter) SubChapters(_ context.Context, chapter string) service.Result[service.SubChapterResult] {
	return wrap(service.SubChapterResult{HasSubChapters: chapter == "VI", SubChapters: []string{}})
}

func (m *mockReporter) Sections(_ context.Context, chapter, subChapter string) service.Result[[]report.SectionOption] {
	return wrap([]report.SectionOption{{Number: chapter, Content: subChapter}})
}

func (m *mockReporter) LookupSection(_ context.Context, section string) service.Result[domain.StatuteEntry] {
	if section == "103" {
		return wrap(domain.StatuteEntry{SectionNumber: "103", SectionContent: "Murder"})
	}
	return wrap(domain.StatuteEntry{})
}

type mockCaseCreator struct {
	createFunc func(req *service.CaseEntryRequest) (*domain.CaseRecord, error)
}

func (m *mockCaseCreator) Create(_ context.Context, req *service.CaseEntryRequest) (*domain.CaseRecord, error) {
	if m.createFunc != nil {
		return m.createFunc(req)
	}
	return &domain.CaseRecord{ID: 1, Jurisdiction: req.District}, nil
}

type mockTableBrowser struct {
	pageFunc   func(table string, page int) (*service.TablePageResult, error)
	allFunc    func(table string) ([]map[string]any, error)
	columnFunc func(table, column string) ([]string, error)
}

func (m *mockTableBrowser) Page(_ context.Context, table string, page int) (*service.TablePageResult, error) {
	if m.pageFunc != nil {
		return m.pageFunc(table, page)
	}
	return &service.TablePageResult{}, nil
}

func (m *mockTableBrowser) All(_ context.Context, table string) ([]map[string]any, error) {
	if m.allFunc != nil {
		return m.allFunc(table)
	}
	return nil, nil
}

func (m *mockTableBrowser) Column(_ context.Context, table, column string) ([]string, error) {
	if m.columnFunc != nil {
		return m.columnFunc(table, column)
	}
	return nil, nil
}

type mockRefresher struct {
	refreshFunc func() (*snapshot.Snapshot, error)
}

func (m *mockRefresher) Refresh(context.Context) (*snapshot.Snapshot, error) {
	if m.refreshFunc != nil {
		return m.refreshFunc()
	}
	return snapshot.Empty(), nil
}

type countingRecorder struct {
	rejected int
}

func (r *countingRecorder) RateLimited() { r.rejected++ }

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	reader := io.Reader(http.NoBody)
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, reqErr := http.NewRequestWithContext(t.Context(), method, path, reader)
	require.NoError(t, reqErr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	return gin.New()
}
