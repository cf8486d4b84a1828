package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goodtune/zengenius/internal/pdftext"
	"github.com/goodtune/zengenius/internal/storage"
	"github.com/goodtune/zengenius/internal/study"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UploadViews handles document uploads.
type UploadViews struct {
	service *study.Service
	config  Config
	logger  zerolog.Logger
}

// NewUploadViews creates a new upload views instance.
func NewUploadViews(service *study.Service, cfg Config, logger zerolog.Logger) *UploadViews {
	return &UploadViews{
		service: service,
		config:  cfg,
		logger:  logger.With().Str("handler", "upload").Logger(),
	}
}

// uploadModelCalls is the number of sequential model calls per upload.
const uploadModelCalls = 2

// Upload stores a PDF, summarizes it and records a session.
func (v *UploadViews) Upload(ctx *gin.Context) {
	v.extendWriteDeadline(ctx)

	if v.config.MaxUploadBytes > 0 {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, v.config.MaxUploadBytes)
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":   "too_large",
				"message": fmt.Sprintf("File exceeds %d bytes", v.config.MaxUploadBytes),
			})
			return
		}
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "No file uploaded.",
		})
		return
	}

	userID := strings.TrimSpace(formValue(ctx, "user_id", "userId"))
	if userID == "" {
		if claims := claimsFrom(ctx); claims != nil {
			userID = claims.UserID()
		}
	}
	if userID != "" && !authorizeUser(ctx, userID) {
		return
	}

	var focus *int
	if raw := strings.TrimSpace(ctx.PostForm("focus")); raw != "" {
		f, err := strconv.Atoi(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "bad_request",
				"message": "Focus must be an integer",
			})
			return
		}
		focus = &f
	}

	if err := os.MkdirAll(v.config.UploadsDir, 0755); err != nil {
		v.logger.Error().Err(err).Msg("Failed to create uploads directory")
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "server_error",
			"message": "Something went wrong during processing.",
		})
		return
	}

	storedName := storedFileName(fileHeader.Filename, time.Now())
	storedPath := filepath.Join(v.config.UploadsDir, storedName)
	if err := ctx.SaveUploadedFile(fileHeader, storedPath); err != nil {
		v.logger.Error().Err(err).Str("path", storedPath).Msg("Failed to store upload")
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "server_error",
			"message": "Something went wrong during processing.",
		})
		return
	}

	result, err := v.service.ProcessUpload(ctx.Request.Context(), study.Upload{
		UserID:       userID,
		Mood:         strings.TrimSpace(ctx.PostForm("mood")),
		Focus:        focus,
		OriginalName: fileHeader.Filename,
		StoredPath:   storedPath,
	})
	if err != nil {
		_ = os.Remove(storedPath)

		switch {
		case errors.Is(err, storage.ErrInvalidSession):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		case errors.Is(err, pdftext.ErrNoText), errors.Is(err, pdftext.ErrInvalidPDF):
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "unprocessable",
				"message": "Could not read text from the uploaded document",
			})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{
				"error":   "server_error",
				"message": "Something went wrong during processing.",
			})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":        "File uploaded and summarized successfully!",
		"file_url":       v.fileURL(ctx, storedName),
		"file_name":      result.FileName,
		"summary":        result.Summary,
		"flashcards":     result.Flashcards,
		"flashcard_list": result.FlashcardList,
		"saved_id":       result.SessionID,
	})
}

// extendWriteDeadline gives the pipeline room to finish so a saved session
// is never followed by a dropped response.
func (v *UploadViews) extendWriteDeadline(ctx *gin.Context) {
	if v.config.WriteTimeout <= 0 || v.config.ProcessingTimeout <= 0 {
		return
	}
	deadline := time.Now().Add(v.config.WriteTimeout + uploadModelCalls*v.config.ProcessingTimeout)
	if err := http.NewResponseController(ctx.Writer).SetWriteDeadline(deadline); err != nil {
		v.logger.Debug().Err(err).Msg("Cannot extend upload write deadline")
	}
}

func (v *UploadViews) fileURL(ctx *gin.Context, storedName string) string {
	base := strings.TrimRight(v.config.PublicURL, "/")
	if base == "" {
		scheme := "http"
		if ctx.Request.TLS != nil {
			scheme = "https"
		}
		switch fwd := strings.ToLower(ctx.GetHeader("X-Forwarded-Proto")); fwd {
		case "http", "https":
			scheme = fwd
		}
		base = scheme + "://" + ctx.Request.Host
	}
	return base + strings.TrimRight(v.config.UploadsURL, "/") + "/" + storedName
}

// storedFileName builds file-<unixmillis>-<uuid><ext> from the client name.
func storedFileName(original string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	return fmt.Sprintf("file-%d-%s%s", now.UnixMilli(), uuid.NewString(), ext)
}

// formValue returns the first non-empty form field among names.
func formValue(ctx *gin.Context, names ...string) string {
	for _, name := range names {
		if v := ctx.PostForm(name); v != "" {
			return v
		}
	}
	return ""
}
