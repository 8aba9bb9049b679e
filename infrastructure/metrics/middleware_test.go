package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/north-cloud/case-tracker/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetrics_Middleware(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	m := metrics.NewHTTPMetrics(reg, "case_tracker")

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/api/v1/table/:table", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/v1/table/cases", "/api/v1/table/db", "/nowhere"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequestWithContext(t.Context(), http.MethodGet, path, http.NoBody))
	}

	expected := `
# HELP case_tracker_http_requests_total HTTP requests by method, route template and status code
# TYPE case_tracker_http_requests_total counter
case_tracker_http_requests_total{method="GET",route="/api/v1/table/:table",status="200"} 2
case_tracker_http_requests_total{method="GET",route="unmatched",status="404"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "case_tracker_http_requests_total"))

	count, err := testutil.GatherAndCount(reg, "case_tracker_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
