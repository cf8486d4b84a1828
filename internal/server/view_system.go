package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goodtune/zengenius/internal/storage"
	"github.com/rs/zerolog"
)

// SystemViews handles health and identity endpoints.
type SystemViews struct {
	store  storage.Store
	logger zerolog.Logger
}

// NewSystemViews creates a new system views instance.
func NewSystemViews(store storage.Store, logger zerolog.Logger) *SystemViews {
	return &SystemViews{
		store:  store,
		logger: logger.With().Str("handler", "system").Logger(),
	}
}

// Health reports liveness and storage reachability.
func (v *SystemViews) Health(ctx *gin.Context) {
	if v.store == nil {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := v.store.Ping(pingCtx); err != nil {
		v.logger.Warn().Err(err).Msg("Storage ping failed")
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "degraded",
			"storage": "unreachable",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "storage": "ok"})
}

// Private echoes the verified token claims.
func (v *SystemViews) Private(ctx *gin.Context) {
	claims := claimsFrom(ctx)
	if claims == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "Authentication is not configured",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "You successfully accessed a protected route!",
		"user":    claims,
	})
}
