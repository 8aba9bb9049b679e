// Package profiling exposes net/http/pprof on a loopback port when
// ENABLE_PROFILING=true.
package profiling

import (
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/jonesrussell/north-cloud/case-tracker/infrastructure/logger"
)

const (
	defaultPort       = "6060"
	readHeaderTimeout = 5 * time.Second
)

// Enabled reports whether ENABLE_PROFILING=true.
func Enabled() bool {
	return os.Getenv("ENABLE_PROFILING") == "true"
}

// Handler serves the standard /debug/pprof/ endpoints.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

// StartPprofServer serves Handler on localhost:$PPROF_PORT (default 6060) in
// the background. It does nothing unless Enabled.
func StartPprofServer(log logger.Logger) {
	if !Enabled() {
		return
	}

	port := os.Getenv("PPROF_PORT")
	if port == "" {
		port = defaultPort
	}
	addr := "localhost:" + port

	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info("Starting pprof server", logger.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("pprof server error", logger.Error(err))
		}
	}()
}
