package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/case-tracker/internal/api"
	"github.com/jonesrussell/north-cloud/case-tracker/internal/metrics"
)

const testSecret = "test-secret"

func setupFullRouter(t *testing.T, secret string, limiter *api.RateLimiter) *gin.Engine {
	t.Helper()

	router := newTestEngine(t)
	reg := prometheus.NewRegistry()
	metrics.New(reg)

	api.SetupRoutes(router, api.Handlers{
		Reports:  api.NewReportHandler(&mockReporter{}),
		Cases:    api.NewCaseHandler(&mockCaseCreator{}),
		Tables:   api.NewTableHandler(&mockTableBrowser{}),
		Snapshot: api.NewSnapshotHandler(&mockRefresher{}),
	}, secret, limiter, metrics.Handler(reg))

	return router
}

func signedToken(t *testing.T) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "analyst",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, signErr := token.SignedString([]byte(testSecret))
	require.NoError(t, signErr)
	return signed
}

func TestSetupRoutes_MetricsIsPublic(t *testing.T) {
	router := setupFullRouter(t, testSecret, nil)

	w := doRequest(t, router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "case_tracker_")
}

func TestSetupRoutes_APIRequiresTokenWhenSecretSet(t *testing.T) {
	router := setupFullRouter(t, testSecret, nil)

	w := doRequest(t, router, http.MethodGet, "/api/v1/statutes/chapters", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req, reqErr := http.NewRequestWithContext(t.Context(), http.MethodGet, "/api/v1/statutes/chapters", http.NoBody)
	require.NoError(t, reqErr)
	req.Header.Set("Authorization", "Bearer "+signedToken(t))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetupRoutes_OpenWithoutSecret(t *testing.T) {
	router := setupFullRouter(t, "", nil)

	for _, path := range []string{
		"/api/v1/reports/jurisdictions",
		"/api/v1/reports/weekly",
		"/api/v1/statutes/lookup?section=103",
	} {
		w := doRequest(t, router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := doRequest(t, router, http.MethodGet, "/api/v1/table/cases", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodPost, "/api/v1/snapshot/refresh", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetupRoutes_CaseEntryAliasAndRateLimit(t *testing.T) {
	rec := &countingRecorder{}
	router := setupFullRouter(t, "", api.NewRateLimiter(1, 2, rec))

	body := `{"district":"Bhopal","thana":"Kotwali","crime_number":"1/2024"}`
	assert.Equal(t, http.StatusCreated, doRequest(t, router, http.MethodPost, "/api/v1/cases", body).Code)
	assert.Equal(t, http.StatusCreated, doRequest(t, router, http.MethodPost, "/api/v1/case-entry", body).Code)

	w := doRequest(t, router, http.MethodPost, "/api/v1/cases", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, 1, rec.rejected)

	// Reads are not limited.
	assert.Equal(t, http.StatusOK, doRequest(t, router, http.MethodGet, "/api/v1/reports/weekly", "").Code)
}
