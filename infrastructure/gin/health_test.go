package gin_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	infragin "github.com/jonesrussell/north-cloud/case-tracker/infrastructure/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth_Statuses(t *testing.T) {
	t.Parallel()

	errDown := errors.New("down")
	ok := func() error { return nil }
	fail := func() error { return errDown }

	tests := []struct {
		name       string
		dbPing     func() error
		redisPing  func() error
		wantCode   int
		wantStatus infragin.HealthStatus
	}{
		{name: "all healthy", dbPing: ok, redisPing: ok, wantCode: http.StatusOK, wantStatus: infragin.HealthStatusHealthy},
		{name: "redis down degrades", dbPing: ok, redisPing: fail, wantCode: http.StatusOK, wantStatus: infragin.HealthStatusDegraded},
		{name: "database down", dbPing: fail, redisPing: ok, wantCode: http.StatusServiceUnavailable, wantStatus: infragin.HealthStatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := infragin.NewServerBuilder("case-tracker", 0).
				WithVersion("1.2.3").
				WithDatabaseHealthCheck(tt.dbPing).
				WithRedisHealthCheck(tt.redisPing).
				Build()

			w := httptest.NewRecorder()
			server.Router().ServeHTTP(w, httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/health", http.NoBody))

			assert.Equal(t, tt.wantCode, w.Code)
			var body infragin.HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, "case-tracker", body.Service)
			assert.Equal(t, "1.2.3", body.Version)
			assert.Len(t, body.Checks, 2)
		})
	}
}

func TestHealth_MemoryAndHead(t *testing.T) {
	t.Parallel()

	router := infragin.NewServerBuilder("case-tracker", 0).Build().Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequestWithContext(t.Context(), http.MethodHead, "/health", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/health/memory", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)

	var mem infragin.MemoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mem))
	assert.Positive(t, mem.Goroutines)
}
