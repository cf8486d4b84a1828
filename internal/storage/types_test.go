package storage

import (
	"errors"
	"testing"
	"time"
)

func TestRatedFocus(t *testing.T) {
	tests := []struct {
		name  string
		focus *int
		want  int
		rated bool
	}{
		{"missing", nil, 0, false},
		{"zero", IntPtr(0), 0, false},
		{"low bound", IntPtr(1), 1, true},
		{"high bound", IntPtr(10), 10, true},
		{"above range", IntPtr(11), 0, false},
		{"negative", IntPtr(-4), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := StudySession{Focus: tt.focus}
			got, ok := s.RatedFocus()
			if got != tt.want || ok != tt.rated {
				t.Errorf("RatedFocus() = %d, %v; want %d, %v", got, ok, tt.want, tt.rated)
			}
		})
	}
}

func TestPrepare(t *testing.T) {
	now := time.Date(2026, time.October, 14, 10, 0, 0, 0, time.UTC)

	s := &StudySession{UserID: "u", Focus: IntPtr(0)}
	if err := s.Prepare(now); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if s.ID == "" || !s.CreatedAt.Equal(now) {
		t.Errorf("expected ID and CreatedAt to be set, got %+v", s)
	}

	earlier := now.Add(-time.Hour)
	kept := &StudySession{ID: "fixed", UserID: "u", CreatedAt: earlier}
	if err := kept.Prepare(now); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if kept.ID != "fixed" || !kept.CreatedAt.Equal(earlier) {
		t.Errorf("expected existing ID and CreatedAt to be kept, got %+v", kept)
	}

	for _, bad := range []*StudySession{{}, {UserID: "  "}, {UserID: "u", Focus: IntPtr(11)}} {
		if err := bad.Prepare(now); !errors.Is(err, ErrInvalidSession) {
			t.Errorf("Prepare(%+v) = %v, want ErrInvalidSession", bad, err)
		}
	}
}

func TestOptionalAccessors(t *testing.T) {
	var s StudySession
	if s.MoodLabel() != "" || s.FlashcardText() != "" {
		t.Error("expected empty accessors for nil fields")
	}
	if StringPtr("") != nil {
		t.Error("expected StringPtr(\"\") to be nil")
	}
	s.Mood = StringPtr("Good")
	s.Flashcards = StringPtr("Q: a")
	if s.MoodLabel() != "Good" || s.FlashcardText() != "Q: a" {
		t.Errorf("unexpected accessors %q %q", s.MoodLabel(), s.FlashcardText())
	}
}
