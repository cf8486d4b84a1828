package metrics

import (
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// Request metrics
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zengenius_http_requests_total",
			Help: "Total number of API requests processed",
		},
		[]string{"route", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zengenius_http_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// Session metrics
	SessionsLogged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zengenius_sessions_logged_total",
			Help: "Total study sessions persisted",
		},
		[]string{"source"}, // manual or upload
	)

	DashboardComputations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zengenius_dashboard_computations_total",
			Help: "Dashboard statistics computations",
		},
		[]string{"result"},
	)

	// Upload pipeline metrics
	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zengenius_uploads_total",
			Help: "Document uploads by outcome",
		},
		[]string{"result"},
	)

	GenAIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zengenius_genai_request_duration_seconds",
			Help:    "Generative model request duration in seconds",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 20, 40, 60},
		},
		[]string{"operation", "result"},
	)

	// Auth metrics
	AuthFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zengenius_auth_failures_total",
			Help: "Rejected API requests by reason",
		},
		[]string{"reason"},
	)

	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "zengenius_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		SessionsLogged,
		DashboardComputations,
		UploadsTotal,
		GenAIRequestDuration,
		AuthFailures,
		RateLimited,
	)
}

// Server is the metrics HTTP server
type Server struct {
	server   *http.Server
	logger   zerolog.Logger
	listener net.Listener // Optional pre-created listener (for systemd socket activation)
}

// NewServer creates a new metrics server
func NewServer(addr string, logger zerolog.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: Router(),
		},
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// Router serves /metrics and a plain liveness check.
func Router() http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)
	return r
}

// SetListener sets a pre-created listener for systemd socket activation
func (s *Server) SetListener(ln net.Listener) {
	s.listener = ln
}

// Start starts the metrics server
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting metrics server")
	go func() {
		var err error
		if s.listener != nil {
			s.logger.Debug().Msg("Using systemd socket-activated metrics listener")
			err = s.server.Serve(s.listener)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()
	return nil
}

// Stop stops the metrics server
func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping metrics server")
	return s.server.Close()
}
