package gin

import (
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthStatus is the overall or per-check health state.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

const bytesPerMiB = 1 << 20

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  HealthStatus           `json:"status"`
	Service string                 `json:"service"`
	Version string                 `json:"version"`
	Uptime  string                 `json:"uptime,omitempty"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of one named dependency check.
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	Latency string       `json:"latency,omitempty"`
}

// MemoryResponse is the body of GET /health/memory.
type MemoryResponse struct {
	AllocMiB      float64 `json:"alloc_mib"`
	TotalAllocMiB float64 `json:"total_alloc_mib"`
	SysMiB        float64 `json:"sys_mib"`
	HeapObjects   uint64  `json:"heap_objects"`
	NumGC         uint32  `json:"num_gc"`
	Goroutines    int     `json:"goroutines"`
}

// HealthChecker runs one dependency check.
type HealthChecker func() CheckResult

var (
	startOnce sync.Once
	startTime time.Time
)

// RegisterHealthRoutes mounts GET/HEAD /health and GET /health/memory.
func RegisterHealthRoutes(router *gin.Engine, serviceName, version string, checks map[string]HealthChecker) {
	startOnce.Do(func() { startTime = time.Now() })

	router.GET("/health", healthHandler(serviceName, version, checks))
	router.HEAD("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/health/memory", memoryHandler)
}

func healthHandler(serviceName, version string, checks map[string]HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := HealthResponse{
			Status:  HealthStatusHealthy,
			Service: serviceName,
			Version: version,
			Uptime:  time.Since(startTime).Truncate(time.Second).String(),
		}

		if len(checks) > 0 {
			resp.Checks = make(map[string]CheckResult, len(checks))
		}
		for name, check := range checks {
			result := check()
			resp.Checks[name] = result
			switch {
			case result.Status == HealthStatusUnhealthy:
				resp.Status = HealthStatusUnhealthy
			case result.Status == HealthStatusDegraded && resp.Status == HealthStatusHealthy:
				resp.Status = HealthStatusDegraded
			}
		}

		code := http.StatusOK
		if resp.Status == HealthStatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, resp)
	}
}

func memoryHandler(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.JSON(http.StatusOK, MemoryResponse{
		AllocMiB:      float64(m.Alloc) / bytesPerMiB,
		TotalAllocMiB: float64(m.TotalAlloc) / bytesPerMiB,
		SysMiB:        float64(m.Sys) / bytesPerMiB,
		HeapObjects:   m.HeapObjects,
		NumGC:         m.NumGC,
		Goroutines:    runtime.NumGoroutine(),
	})
}

// DatabaseHealthChecker reports unhealthy when ping fails.
func DatabaseHealthChecker(ping func() error) HealthChecker {
	return pingChecker("Database", HealthStatusUnhealthy, ping)
}

// RedisHealthChecker reports degraded when ping fails; the snapshot cache is
// optional.
func RedisHealthChecker(ping func() error) HealthChecker {
	return pingChecker("Redis", HealthStatusDegraded, ping)
}

func pingChecker(name string, onFailure HealthStatus, ping func() error) HealthChecker {
	return func() CheckResult {
		start := time.Now()
		err := ping()
		latency := time.Since(start).String()

		if err != nil {
			return CheckResult{Status: onFailure, Message: name + " connection failed", Latency: latency}
		}
		return CheckResult{Status: HealthStatusHealthy, Message: name + " connection OK", Latency: latency}
	}
}
