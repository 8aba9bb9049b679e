package jwt_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/jonesrussell/north-cloud/case-tracker/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func setupJWTRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(jwt.Middleware(testSecret))
	router.GET("/api/v1/reports", func(c *gin.Context) {
		claims, ok := jwt.GetClaims(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, claims.Sub)
	})
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func signToken(t *testing.T, method gojwt.SigningMethod, key any, expires time.Time) string {
	t.Helper()

	token := gojwt.NewWithClaims(method, jwt.Claims{
		Sub:              "analyst",
		RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(expires)},
	})
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	valid := signToken(t, gojwt.SigningMethodHS256, []byte(testSecret), time.Now().Add(time.Hour))
	expired := signToken(t, gojwt.SigningMethodHS256, []byte(testSecret), time.Now().Add(-time.Hour))
	wrongKey := signToken(t, gojwt.SigningMethodHS256, []byte("other"), time.Now().Add(time.Hour))

	tests := []struct {
		name     string
		path     string
		header   string
		wantCode int
		wantBody string
	}{
		{name: "valid token", path: "/api/v1/reports", header: "Bearer " + valid, wantCode: http.StatusOK, wantBody: "analyst"},
		{name: "missing header", path: "/api/v1/reports", wantCode: http.StatusUnauthorized},
		{name: "not bearer", path: "/api/v1/reports", header: "Basic abc", wantCode: http.StatusUnauthorized},
		{name: "expired", path: "/api/v1/reports", header: "Bearer " + expired, wantCode: http.StatusUnauthorized},
		{name: "wrong key", path: "/api/v1/reports", header: "Bearer " + wrongKey, wantCode: http.StatusUnauthorized},
		{name: "health bypass", path: "/health", wantCode: http.StatusOK},
	}

	router := setupJWTRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, tt.path, http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}
