package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/goodtune/zengenius/internal/storage"
	"github.com/goodtune/zengenius/internal/study"
	"github.com/rs/zerolog"
)

// SessionViews handles study session API requests.
type SessionViews struct {
	service *study.Service
	logger  zerolog.Logger
}

// NewSessionViews creates a new session views instance.
func NewSessionViews(service *study.Service, logger zerolog.Logger) *SessionViews {
	return &SessionViews{
		service: service,
		logger:  logger.With().Str("handler", "sessions").Logger(),
	}
}

// Create logs a mood/focus session.
func (v *SessionViews) Create(ctx *gin.Context) {
	var req study.NewSession
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "Invalid request body",
		})
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		if claims := claimsFrom(ctx); claims != nil {
			req.UserID = claims.UserID()
		}
	}
	if !authorizeUser(ctx, req.UserID) {
		return
	}

	session, err := v.service.LogSession(ctx.Request.Context(), req)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidSession) {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "bad_request",
				"message": err.Error(),
			})
			return
		}
		v.logger.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to save session")
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "server_error",
			"message": "Failed to save session",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Session saved successfully",
		"session": session,
	})
}

// List returns a user's sessions, newest first.
func (v *SessionViews) List(ctx *gin.Context) {
	userID := ctx.Param("userId")
	if !authorizeUser(ctx, userID) {
		return
	}

	sessions, err := v.service.ListSessions(ctx.Request.Context(), userID)
	if err != nil {
		v.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch sessions")
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "server_error",
			"message": "Failed to load sessions",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// Today returns the sessions logged on the current day.
func (v *SessionViews) Today(ctx *gin.Context) {
	userID := ctx.Param("userId")
	if !authorizeUser(ctx, userID) {
		return
	}

	sessions, err := v.service.TodaySessions(ctx.Request.Context(), userID)
	if err != nil {
		v.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch today's sessions")
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "server_error",
			"message": "Failed to load sessions",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// Stats returns the aggregated dashboard.
func (v *SessionViews) Stats(ctx *gin.Context) {
	userID := ctx.Param("userId")
	if !authorizeUser(ctx, userID) {
		return
	}

	dash, err := v.service.Dashboard(ctx.Request.Context(), userID)
	if err != nil {
		status, code := http.StatusInternalServerError, "server_error"
		if errors.Is(err, study.ErrSessionsUnavailable) {
			status, code = http.StatusServiceUnavailable, "unavailable"
		}
		ctx.JSON(status, gin.H{
			"error":   code,
			"message": "Session statistics are temporarily unavailable",
		})
		return
	}

	ctx.JSON(http.StatusOK, dash)
}

// Profile returns the profile overview counts.
func (v *SessionViews) Profile(ctx *gin.Context) {
	userID := ctx.Param("userId")
	if !authorizeUser(ctx, userID) {
		return
	}

	overview, err := v.service.Profile(ctx.Request.Context(), userID)
	if err != nil {
		v.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to build profile overview")
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "unavailable",
			"message": "Profile overview is temporarily unavailable",
		})
		return
	}

	ctx.JSON(http.StatusOK, overview)
}
