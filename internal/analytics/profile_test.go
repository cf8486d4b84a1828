package analytics

import (
	"testing"

	"github.com/goodtune/zengenius/internal/storage"
)

func TestComputeProfile(t *testing.T) {
	records := []storage.StudySession{
		session(8, testNow),
		session(7, testNow.Add(-1)),
		{UserID: "user-1", CreatedAt: testNow.Add(-2), Flashcards: storage.StringPtr("Q: a\nA: b\nQ: c")},
	}

	got := ComputeProfile(records)
	want := ProfileOverview{TotalFiles: 3, TotalFlashcards: 2, AverageFocus: 5}
	if got != want {
		t.Errorf("ComputeProfile() = %+v, want %+v", got, want)
	}
}

func TestComputeProfileEmpty(t *testing.T) {
	if got := ComputeProfile(nil); got != (ProfileOverview{}) {
		t.Errorf("expected zero overview, got %+v", got)
	}
}

func TestComputeProfileRounding(t *testing.T) {
	// 7 / 3 sessions
	got := ComputeProfile(sessionsWithFocus(7, 0, 0))
	if got.AverageFocus != 2.3 {
		t.Errorf("expected 2.3, got %v", got.AverageFocus)
	}
}
