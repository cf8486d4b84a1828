package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goodtune/zengenius/internal/auth"
	"github.com/goodtune/zengenius/internal/storage"
	"github.com/goodtune/zengenius/internal/study"
	"github.com/rs/zerolog"
)

// Config holds the API server configuration.
type Config struct {
	ListenAddr      string
	PublicURL       string // Base for file_url links; derived from the request when empty
	UploadsDir      string
	UploadsURL      string // Path prefix uploads are served under
	MaxUploadBytes  int64
	AllowedOrigins  []string
	RateLimit       int
	RateLimitWindow time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// ProcessingTimeout bounds one model call. Upload responses get this
	// much extra write time per call on top of WriteTimeout.
	ProcessingTimeout time.Duration
}

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Claims, error)
}

// Deps holds dependencies needed for API routes.
type Deps struct {
	Service  *study.Service
	Store    storage.Store
	Verifier TokenVerifier // nil disables authentication
	Logger   zerolog.Logger
}

// Server represents the API HTTP server.
type Server struct {
	config      Config
	router      *gin.Engine
	rateLimiter *RateLimiter
	server      *http.Server
	listener    net.Listener // Optional pre-created listener (for systemd socket activation)
	logger      zerolog.Logger
}

// NewServer creates a new API server.
func NewServer(cfg Config, deps Deps) *Server {
	if deps.Logger.GetLevel() == zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.RateLimit == 0 {
		cfg.RateLimit = 100 // Default: 100 requests per minute
	}
	if cfg.RateLimitWindow == 0 {
		cfg.RateLimitWindow = time.Minute
	}
	if cfg.UploadsURL == "" {
		cfg.UploadsURL = "/uploads"
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	logger := deps.Logger.With().Str("component", "server").Logger()
	deps.Logger = logger

	rateLimiter := NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)

	// No default middleware; logging is our own JSON logger
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = cfg.MaxUploadBytes
	}

	SetupRoutes(router, cfg, deps, rateLimiter)

	return &Server{
		config:      cfg,
		router:      router,
		rateLimiter: rateLimiter,
		logger:      logger,
		server: &http.Server{
			Addr:         cfg.ListenAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// SetListener sets a pre-created listener for systemd socket activation
func (s *Server) SetListener(ln net.Listener) {
	s.listener = ln
}

// Start starts the API server.
func (s *Server) Start() error {
	if s.listener == nil {
		ln, err := net.Listen("tcp", s.config.ListenAddr)
		if err != nil {
			return err
		}
		s.listener = ln
	}

	go func() {
		s.logger.Info().Str("addr", s.listener.Addr().String()).Msg("Starting API server")
		if err := s.server.Serve(s.listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("API server failed")
		}
	}()
	return nil
}

// Stop gracefully stops the API server.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info().Msg("Stopping API server")
	s.rateLimiter.Close()
	return s.server.Shutdown(ctx)
}
