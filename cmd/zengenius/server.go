package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodtune/zengenius/internal/auth"
	"github.com/goodtune/zengenius/internal/config"
	"github.com/goodtune/zengenius/internal/metrics"
	"github.com/goodtune/zengenius/internal/pdftext"
	"github.com/goodtune/zengenius/internal/server"
	"github.com/goodtune/zengenius/internal/storage"
	"github.com/goodtune/zengenius/internal/storage/bolt"
	"github.com/goodtune/zengenius/internal/storage/redis"
	"github.com/goodtune/zengenius/internal/storage/sqlite"
	"github.com/goodtune/zengenius/internal/study"
	"github.com/goodtune/zengenius/internal/summarize"
	"github.com/goodtune/zengenius/internal/systemd"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start ZenGenius server",
	Long:  `Start the ZenGenius API server and metrics endpoint.`,
	RunE:  runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	log.Logger = logger

	logger.Info().
		Str("version", version).
		Str("config", configPath).
		Msg("Starting ZenGenius")

	// Check for systemd socket activation
	sdListeners, err := systemd.GetListeners()
	if err != nil {
		return fmt.Errorf("failed to get systemd listeners: %w", err)
	}
	if sdListeners.Activated {
		logger.Info().Msg("Running with systemd socket activation")
	}

	// Initialize storage
	store, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close storage")
		}
	}()

	logger.Info().
		Str("type", cfg.Storage.Type).
		Str("path", cfg.Storage.Path).
		Msg("Storage initialized")

	// Token verification
	var verifier server.TokenVerifier
	if cfg.Auth.Enabled {
		v, err := auth.NewVerifier(auth.Options{
			Audience:          cfg.Auth.Audience,
			Issuer:            cfg.Auth.Issuer,
			JWKSURL:           cfg.Auth.JWKSURL,
			HMACSecret:        cfg.Auth.HMACSecret,
			CacheSize:         cfg.Auth.JWKSCacheSize,
			CacheTTL:          config.ParseDuration(cfg.Auth.JWKSCacheTTL, 10*time.Minute),
			RequestsPerMinute: cfg.Auth.JWKSRequestsPerMinute,
			Logger:            logger,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize token verifier: %w", err)
		}
		verifier = v
		logger.Info().Str("issuer", cfg.Auth.Issuer).Str("audience", cfg.Auth.Audience).Msg("Authentication enabled")
	} else {
		logger.Warn().Msg("Authentication disabled; API routes are public")
	}

	genaiTimeout := config.ParseDuration(cfg.GenAI.Timeout, 60*time.Second)

	// Document processing is optional
	opts := study.Options{
		Location:      analyticsLocation(cfg.Analytics),
		SessionLength: config.ParseDuration(cfg.Analytics.SessionLength, 30*time.Minute),
		Logger:        logger,
	}
	if cfg.GenAI.APIKey != "" {
		summarizer, err := summarize.New(context.Background(), summarize.Config{
			APIKey:  cfg.GenAI.APIKey,
			Model:   cfg.GenAI.Model,
			Timeout: genaiTimeout,
			Logger:  logger,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize summarizer: %w", err)
		}
		opts.Summarizer = summarizer
		opts.Extractor = pdftext.Extractor{}
		logger.Info().Str("model", cfg.GenAI.Model).Msg("Summarizer initialized")
	} else {
		logger.Warn().Msg("No genai.api_key configured; uploads will be rejected")
	}

	service := study.NewService(store.Sessions(), opts)

	// Initialize API Server
	apiServer := server.NewServer(server.Config{
		ListenAddr:      fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.HTTPPort),
		PublicURL:       cfg.Server.PublicURL,
		UploadsDir:      cfg.Uploads.Dir,
		UploadsURL:      cfg.Uploads.URLPrefix,
		MaxUploadBytes:  int64(cfg.Uploads.MaxSizeMB) << 20,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		RateLimit:       cfg.Server.RateLimit,
		RateLimitWindow: config.ParseDuration(cfg.Server.RateLimitWindow, time.Minute),
		ReadTimeout:     config.ParseDuration(cfg.Server.ReadTimeout, 30*time.Second),
		WriteTimeout:    config.ParseDuration(cfg.Server.WriteTimeout, 120*time.Second),
		ShutdownTimeout: config.ParseDuration(cfg.Server.ShutdownTimeout, 10*time.Second),

		ProcessingTimeout: genaiTimeout,
	}, server.Deps{
		Service:  service,
		Store:    store,
		Verifier: verifier,
		Logger:   logger,
	})

	// Use systemd socket-activated listener if available
	if sdListeners.Activated && sdListeners.HTTP != nil {
		apiServer.SetListener(sdListeners.HTTP)
	}

	if err := apiServer.Start(); err != nil {
		return fmt.Errorf("failed to start API Server: %w", err)
	}

	// Initialize Metrics Server
	var metricsServer *metrics.Server
	if cfg.Server.MetricsPort > 0 {
		metricsAddr := fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.MetricsPort)
		metricsServer = metrics.NewServer(metricsAddr, logger)

		if sdListeners.Activated && sdListeners.Metrics != nil {
			metricsServer.SetListener(sdListeners.Metrics)
		}

		if err := metricsServer.Start(); err != nil {
			return fmt.Errorf("failed to start Metrics Server: %w", err)
		}

		logger.Info().Str("addr", metricsAddr).Msg("Metrics Server started")
	}

	logger.Info().Msg("ZenGenius startup complete")
	logger.Info().Msgf("API: http://%s:%d/api", cfg.Server.BindAddress, cfg.Server.HTTPPort)

	// Notify systemd that we're ready to serve requests
	if err := systemd.NotifyReady(); err != nil {
		logger.Warn().Err(err).Msg("Failed to send systemd ready notification")
	} else {
		logger.Debug().Msg("Sent systemd ready notification")
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Shutdown signal received, gracefully stopping...")

	// Notify systemd that we're stopping
	if err := systemd.NotifyStopping(); err != nil {
		logger.Warn().Err(err).Msg("Failed to send systemd stopping notification")
	}

	if err := apiServer.Stop(); err != nil {
		logger.Error().Err(err).Msg("Error stopping API Server")
	}

	if metricsServer != nil {
		if err := metricsServer.Stop(); err != nil {
			logger.Error().Err(err).Msg("Error stopping Metrics Server")
		}
	}

	logger.Info().Msg("ZenGenius stopped")

	return nil
}

func openStorage(cfg config.StorageConfig) (storage.Store, error) {
	storageType := cfg.Type
	if storageType == "" {
		storageType = "sqlite"
	}

	switch storageType {
	case "sqlite":
		return sqlite.Open(cfg.Path)
	case "bolt":
		return bolt.Open(cfg.Path)
	case "redis":
		return redis.Open(cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// analyticsLocation returns the analytics timezone; config.Load has already validated it.
func analyticsLocation(cfg config.AnalyticsConfig) *time.Location {
	loc, err := cfg.Location()
	if err != nil {
		return time.Local
	}
	return loc
}

// setupLogger configures the logger based on configuration
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Set output format
	if cfg.Format == "text" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).Level(level).With().Timestamp().Logger()
	}

	// Default to JSON
	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
}
