// Package study wires session storage, analytics and document
// summarization into the operations served by the API.
package study

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodtune/zengenius/internal/analytics"
	"github.com/goodtune/zengenius/internal/metrics"
	"github.com/goodtune/zengenius/internal/storage"
	"github.com/rs/zerolog"
)

const (
	// AnonymousUser owns uploads submitted without a user id.
	AnonymousUser = "anonymous"

	// UnknownMood is recorded for uploads submitted without a mood.
	UnknownMood = "Unknown"
)

var (
	// ErrSessionsUnavailable is returned when a user's sessions cannot be
	// fetched. No statistics are computed in that case.
	ErrSessionsUnavailable = errors.New("sessions unavailable")

	// ErrUploadFailed is returned when any upload pipeline stage fails.
	ErrUploadFailed = errors.New("upload processing failed")
)

// Summarizer produces study material from document text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
	Flashcards(ctx context.Context, summary string) (string, error)
}

// Extractor reads plain text from a stored document.
type Extractor interface {
	ExtractFile(path string) (string, error)
}

// Options configure a Service.
type Options struct {
	Summarizer    Summarizer
	Extractor     Extractor
	Location      *time.Location
	SessionLength time.Duration
	Now           func() time.Time
	Logger        zerolog.Logger
}

// Service implements the study operations.
type Service struct {
	sessions      storage.SessionStore
	summarizer    Summarizer
	extractor     Extractor
	loc           *time.Location
	sessionLength time.Duration
	now           func() time.Time
	logger        zerolog.Logger
}

// NewService creates a study service over the given session store.
func NewService(sessions storage.SessionStore, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		sessions:      sessions,
		summarizer:    opts.Summarizer,
		extractor:     opts.Extractor,
		loc:           opts.Location,
		sessionLength: opts.SessionLength,
		now:           opts.Now,
		logger:        opts.Logger.With().Str("component", "study").Logger(),
	}
}

// NewSession is a manually logged mood/focus rating.
type NewSession struct {
	UserID string `json:"user_id"`
	Mood   string `json:"mood"`
	Focus  *int   `json:"focus"`
}

// LogSession persists a mood/focus session.
func (s *Service) LogSession(ctx context.Context, req NewSession) (*storage.StudySession, error) {
	session := &storage.StudySession{
		UserID: req.UserID,
		Mood:   storage.StringPtr(req.Mood),
		Focus:  req.Focus,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	metrics.SessionsLogged.WithLabelValues("manual").Inc()
	s.logger.Debug().Str("user_id", session.UserID).Str("session_id", session.ID).Msg("Session logged")
	return session, nil
}

// ListSessions returns a user's sessions, newest first.
func (s *Service) ListSessions(ctx context.Context, userID string) ([]storage.StudySession, error) {
	records, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionsUnavailable, err)
	}
	return records, nil
}

// TodaySessions returns the sessions created on the current calendar day.
func (s *Service) TodaySessions(ctx context.Context, userID string) ([]storage.StudySession, error) {
	records, err := s.ListSessions(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	year, month, day := now.Date()

	today := make([]storage.StudySession, 0, len(records))
	for _, r := range records {
		if y, m, d := r.CreatedAt.In(s.loc).Date(); y == year && m == month && d == day {
			today = append(today, r)
		}
	}
	return today, nil
}

// Dashboard is the aggregated view of one user's study history.
type Dashboard struct {
	UserID  string                    `json:"user_id"`
	Stats   analytics.AggregateStats  `json:"stats"`
	Focus   *analytics.FocusReport    `json:"focus,omitempty"`
	Profile analytics.ProfileOverview `json:"profile"`
}

// Dashboard fetches a user's sessions and aggregates them. Sessions are
// passed to the aggregator newest first, which is the order the focus
// trend is defined over.
func (s *Service) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	records, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		metrics.DashboardComputations.WithLabelValues("unavailable").Inc()
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch sessions for dashboard")
		return nil, fmt.Errorf("%w: %v", ErrSessionsUnavailable, err)
	}

	now := s.now().In(s.loc)
	dash := &Dashboard{
		UserID:  userID,
		Stats:   analytics.ComputeStatsWith(records, now, analytics.Options{SessionLength: s.sessionLength}),
		Focus:   analytics.AnalyzeFocus(records, now),
		Profile: analytics.ComputeProfile(records),
	}

	metrics.DashboardComputations.WithLabelValues("success").Inc()
	return dash, nil
}

// Profile returns the profile overview for a user.
func (s *Service) Profile(ctx context.Context, userID string) (*analytics.ProfileOverview, error) {
	records, err := s.ListSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	overview := analytics.ComputeProfile(records)
	return &overview, nil
}

// Upload describes a stored document awaiting processing.
type Upload struct {
	UserID       string
	Mood         string
	Focus        *int
	OriginalName string
	StoredPath   string
}

// UploadResult is the outcome of a processed upload.
type UploadResult struct {
	SessionID     string                `json:"saved_id"`
	Summary       string                `json:"summary"`
	Flashcards    string                `json:"flashcards"`
	FlashcardList []analytics.Flashcard `json:"flashcard_list"`
	FileName      string                `json:"file_name"`
}

// ProcessUpload extracts, summarizes and persists an uploaded document.
// Each stage runs only after the previous one succeeded.
func (s *Service) ProcessUpload(ctx context.Context, up Upload) (*UploadResult, error) {
	if s.extractor == nil || s.summarizer == nil {
		return nil, fmt.Errorf("%w: document processing is not configured", ErrUploadFailed)
	}

	if err := storage.CheckFocus(up.Focus); err != nil {
		return nil, err
	}

	logger := s.logger.With().Str("file", up.OriginalName).Logger()

	text, err := s.extractor.ExtractFile(up.StoredPath)
	if err != nil {
		return nil, s.uploadFailed(logger, "extract", err)
	}

	summary, err := s.summarizer.Summarize(ctx, text)
	if err != nil {
		return nil, s.uploadFailed(logger, "summarize", err)
	}

	flashcards, err := s.summarizer.Flashcards(ctx, summary)
	if err != nil {
		return nil, s.uploadFailed(logger, "flashcards", err)
	}

	session := &storage.StudySession{
		UserID:     up.UserID,
		Mood:       storage.StringPtr(up.Mood),
		Focus:      up.Focus,
		Summary:    &summary,
		Flashcards: &flashcards,
		FileName:   storage.StringPtr(up.OriginalName),
	}
	if session.UserID == "" {
		session.UserID = AnonymousUser
	}
	if session.Mood == nil {
		session.Mood = storage.StringPtr(UnknownMood)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, s.uploadFailed(logger, "persist", err)
	}

	metrics.UploadsTotal.WithLabelValues("success").Inc()
	metrics.SessionsLogged.WithLabelValues("upload").Inc()
	logger.Info().Str("user_id", session.UserID).Str("session_id", session.ID).Msg("Upload processed")

	return &UploadResult{
		SessionID:     session.ID,
		Summary:       summary,
		Flashcards:    flashcards,
		FlashcardList: analytics.ParseFlashcards(flashcards),
		FileName:      up.OriginalName,
	}, nil
}

func (s *Service) uploadFailed(logger zerolog.Logger, stage string, err error) error {
	metrics.UploadsTotal.WithLabelValues(stage + "_failed").Inc()
	logger.Error().Err(err).Str("stage", stage).Msg("Upload processing failed")
	return fmt.Errorf("%w: %s: %w", ErrUploadFailed, stage, err)
}
