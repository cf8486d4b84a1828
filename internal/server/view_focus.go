package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/goodtune/zengenius/internal/analytics"
	"github.com/rs/zerolog"
)

// FocusViews serves focus level descriptions.
type FocusViews struct {
	logger zerolog.Logger
}

// NewFocusViews creates a new focus views instance.
func NewFocusViews(logger zerolog.Logger) *FocusViews {
	return &FocusViews{logger: logger.With().Str("handler", "focus").Logger()}
}

// Describe returns the label and recommendation for a focus level.
func (v *FocusViews) Describe(ctx *gin.Context) {
	level, err := strconv.Atoi(ctx.Param("level"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "Focus level must be an integer",
		})
		return
	}

	ctx.JSON(http.StatusOK, analytics.DescribeFocus(level))
}
