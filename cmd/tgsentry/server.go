package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"tgsentry/internal/constants"
	"tgsentry/internal/metrics"
	"tgsentry/internal/service"
	"tgsentry/internal/tracing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Server exposes the operational endpoints: health and metrics. All message
// traffic flows through the poller, not through this server.
type Server struct {
	router *mux.Router
	logger *logrus.Logger
	poller *service.UpdatePoller
	server *http.Server
	port   int
}

func NewServer(port int, poller *service.UpdatePoller, logger *logrus.Logger) *Server {
	s := &Server{
		router: mux.NewRouter(),
		logger: logger,
		poller: poller,
		port:   port,
	}

	s.router.Use(s.observabilityMiddleware)
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth()).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.handleMetrics()).Methods(http.MethodGet)
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  constants.DefaultServerReadTimeoutSec * time.Second,
		WriteTimeout: constants.DefaultServerWriteTimeoutSec * time.Second,
		IdleTimeout:  constants.DefaultServerIdleTimeoutSec * time.Second,
	}

	s.logger.Infof("Starting server on port %d", s.port)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// observabilityMiddleware tags each request with an ID and records timing
// metrics per endpoint.
func (s *Server) observabilityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := tracing.GenerateRequestID()
		ctx := tracing.WithRequestID(r.Context(), requestID)
		ctx = tracing.WithStartTime(ctx, time.Now())

		next.ServeHTTP(w, r.WithContext(ctx))

		labels := map[string]string{"endpoint": r.URL.Path}
		metrics.IncrementCounter("http_requests_total", labels, "HTTP requests served")
		metrics.RecordTimer("http_request_duration", tracing.Duration(ctx), labels, "HTTP request latency")
	})
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK
		if !s.poller.IsRunning() {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if err := json.NewEncoder(w).Encode(map[string]interface{}{
			"status":         status,
			"poller_running": s.poller.IsRunning(),
		}); err != nil {
			s.logger.WithError(err).Error("Failed to encode health response")
		}
	}
}
