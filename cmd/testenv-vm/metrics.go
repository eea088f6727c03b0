package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupMetricsServer creates an HTTP server for Prometheus metrics. It
// returns nil when the metrics server is disabled (port 0).
func setupMetricsServer(config *Config) *http.Server {
	if config.MetricsServer.Port == 0 {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(config.MetricsServer.Path, promhttp.Handler())

	return &http.Server{ //nolint:exhaustruct
		Addr:              fmt.Sprintf(":%d", config.MetricsServer.Port),
		Handler:           mux,
		ReadHeaderTimeout: time.Second,
	}
}
