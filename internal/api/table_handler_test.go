package api_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/case-tracker/internal/api"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/service"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/snapshot"
)

func setupTableRouter(t *testing.T, browser api.TableBrowser) *gin.Engine {
	t.Helper()

	router := newTestEngine(t)
	handler := api.NewTableHandler(browser)
	router.GET("/api/v1/table/:table", handler.Page)
	router.GET("/api/v1/table/:table/all", handler.All)
	router.GET("/api/v1/table/:table/column/:column", handler.Column)

	return router
}

func TestTableHandler_Page(t *testing.T) {
	var gotTable string
	var gotPage int
	browser := &mockTableBrowser{
		pageFunc: func(table string, page int) (*service.TablePageResult, error) {
			gotTable, gotPage = table, page
			return &service.TablePageResult{
				Fields:     []string{"id"},
				Data:       []map[string]any{{"id": 1}},
				Pagination: service.Pagination{Page: page, TotalPages: 3, TotalRecords: 201, RecordsPerPage: 100},
			}, nil
		},
	}
	router := setupTableRouter(t, browser)

	w := doRequest(t, router, http.MethodGet, "/api/v1/table/cases?page=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cases", gotTable)
	assert.Equal(t, 2, gotPage)
	assert.JSONEq(t,
		`{"fields":["id"],"data":[{"id":1}],"pagination":{"page":2,"total_pages":3,"total_records":201,"records_per_page":100}}`,
		w.Body.String())

	w = doRequest(t, router, http.MethodGet, "/api/v1/table/cases", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, gotPage, "page defaults to 1")

	w = doRequest(t, router, http.MethodGet, "/api/v1/table/cases?page=two", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTableHandler_ErrorStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "empty", err: fmt.Errorf("%w: no rows", service.ErrNotFound), wantStatus: http.StatusNotFound},
		{name: "bad identifier", err: fmt.Errorf("%w: invalid identifier", service.ErrValidation), wantStatus: http.StatusBadRequest},
		{name: "database down", err: errors.New("dial tcp: refused"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			browser := &mockTableBrowser{
				allFunc:    func(string) ([]map[string]any, error) { return nil, tt.err },
				columnFunc: func(string, string) ([]string, error) { return nil, tt.err },
			}
			router := setupTableRouter(t, browser)

			w := doRequest(t, router, http.MethodGet, "/api/v1/table/cases/all", "")
			assert.Equal(t, tt.wantStatus, w.Code)

			w = doRequest(t, router, http.MethodGet, "/api/v1/table/db/column/district", "")
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.NotContains(t, w.Body.String(), "dial tcp")
		})
	}
}

func TestTableHandler_AllAndColumn(t *testing.T) {
	browser := &mockTableBrowser{
		allFunc: func(string) ([]map[string]any, error) {
			return []map[string]any{{"id": 1, "district": "Bhopal"}}, nil
		},
		columnFunc: func(_, column string) ([]string, error) {
			return []string{"Bhopal", "Indore"}, nil
		},
	}
	router := setupTableRouter(t, browser)

	w := doRequest(t, router, http.MethodGet, "/api/v1/table/db/all", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[{"id":1,"district":"Bhopal"}]}`, w.Body.String())

	w = doRequest(t, router, http.MethodGet, "/api/v1/table/db/column/district", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"column":"district","data":["Bhopal","Indore"]}`, w.Body.String())
}

func TestSnapshotHandler_Refresh(t *testing.T) {
	router := newTestEngine(t)
	ok := api.NewSnapshotHandler(&mockRefresher{
		refreshFunc: func() (*snapshot.Snapshot, error) {
			s := snapshot.Empty()
			s.FetchedAt = testFetchedAt
			return s, nil
		},
	})
	failing := api.NewSnapshotHandler(&mockRefresher{
		refreshFunc: func() (*snapshot.Snapshot, error) { return nil, errors.New("timeout") },
	})
	router.POST("/ok", ok.Refresh)
	router.POST("/failing", failing.Refresh)

	w := doRequest(t, router, http.MethodPost, "/ok", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"cases":0,"statutes":0,"fetched_at":"2024-04-02T09:30:00Z"}`, w.Body.String())

	w = doRequest(t, router, http.MethodPost, "/failing", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
