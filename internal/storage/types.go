package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// MinFocus is the lowest valid self-reported focus rating.
	MinFocus = 1
	// MaxFocus is the highest valid self-reported focus rating.
	MaxFocus = 10
)

// StudySession represents one logged study event.
// Optional members are pointers; nil means the value was never provided.
type StudySession struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Mood       *string   `json:"mood,omitempty"`
	Focus      *int      `json:"focus,omitempty"`
	Summary    *string   `json:"summary,omitempty"`
	Flashcards *string   `json:"flashcards,omitempty"`
	FileName   *string   `json:"file_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// MoodLabel returns the mood label, or "" when none was recorded.
func (s *StudySession) MoodLabel() string {
	if s.Mood == nil {
		return ""
	}
	return *s.Mood
}

// RatedFocus returns the focus rating and whether it is a valid rating.
// Missing, zero and out-of-range values are reported as unrated.
func (s *StudySession) RatedFocus() (int, bool) {
	if s.Focus == nil {
		return 0, false
	}
	f := *s.Focus
	if f < MinFocus || f > MaxFocus {
		return 0, false
	}
	return f, true
}

// FlashcardText returns the raw flashcard text, or "" when absent.
func (s *StudySession) FlashcardText() string {
	if s.Flashcards == nil {
		return ""
	}
	return *s.Flashcards
}

// Prepare validates the session and fills in the ID and CreatedAt when unset.
// Backends call it before writing.
func (s *StudySession) Prepare(now time.Time) error {
	if strings.TrimSpace(s.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidSession)
	}
	if err := CheckFocus(s.Focus); err != nil {
		return err
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	return nil
}

// CheckFocus accepts nil, 0 (unrated) and MinFocus..MaxFocus.
func CheckFocus(focus *int) error {
	if focus == nil || *focus == 0 {
		return nil
	}
	if *focus < MinFocus || *focus > MaxFocus {
		return fmt.Errorf("%w: focus %d outside %d-%d", ErrInvalidSession, *focus, MinFocus, MaxFocus)
	}
	return nil
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// IntPtr returns a pointer to i.
func IntPtr(i int) *int {
	return &i
}
