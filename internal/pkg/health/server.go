package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/health/handlers"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/performance"
)

// NewHandler builds the mux served by Run.
func NewHandler(tracker *performance.Tracker) http.Handler {
	mux := http.NewServeMux()

	// Health endpoints
	mux.HandleFunc("/ping", handlers.HandlePing)
	mux.HandleFunc("/health", handlers.HandleHealth)

	// Prometheus metrics and run progress
	mux.Handle("/metrics", promhttp.HandlerFor(tracker.Registry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/status", handlers.HandleStatus(tracker))

	return mux
}

// Run serves the health endpoints until ctx is done.
func Run(ctx context.Context, addr string, service string, tracker *performance.Tracker, readHeaderTimeout time.Duration) error {
	if readHeaderTimeout <= 0 {
		return fmt.Errorf("read_header_timeout must be positive")
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           NewHandler(tracker),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		slog.Info("Health server listening", "service", service, "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Health server error", "service", service, "error", err)
		}
	}()
	return nil
}

func AddrFor(port int) string {
	return fmt.Sprintf(":%d", port)
}
