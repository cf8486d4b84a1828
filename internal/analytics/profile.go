package analytics

import "github.com/goodtune/zengenius/internal/storage"

// ProfileOverview is the headline summary shown on a user's profile.
type ProfileOverview struct {
	TotalFiles      int     `json:"total_files"`
	TotalFlashcards int     `json:"total_flashcards"`
	AverageFocus    float64 `json:"average_focus"` // unrated sessions count as 0
}

// ComputeProfile summarizes records. Every record counts as one study file.
func ComputeProfile(records []storage.StudySession) ProfileOverview {
	overview := ProfileOverview{TotalFiles: len(records)}
	for i := range records {
		overview.TotalFlashcards += CountFlashcardMarkers(records[i].FlashcardText())
	}
	overview.AverageFocus = round1(meanFocusZeroed(records))
	return overview
}
