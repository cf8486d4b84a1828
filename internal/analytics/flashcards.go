package analytics

import "strings"

const (
	questionMarker = "Q:"
	answerMarker   = "A:"
)

// Flashcard is a question/answer pair extracted from generated text.
type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ParseFlashcards extracts flashcards from text that marks pairs with
// "Q:" and "A:" at the start of a line. Blank lines are ignored. A question
// is kept only when the next non-blank line is its answer; anything else is
// dropped without error.
func ParseFlashcards(raw string) []Flashcard {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	cards := []Flashcard{}
	for i := 0; i < len(lines)-1; i++ {
		if !strings.HasPrefix(lines[i], questionMarker) || !strings.HasPrefix(lines[i+1], answerMarker) {
			continue
		}
		cards = append(cards, Flashcard{
			Question: strings.TrimSpace(strings.TrimPrefix(lines[i], questionMarker)),
			Answer:   strings.TrimSpace(strings.TrimPrefix(lines[i+1], answerMarker)),
		})
		i++
	}
	return cards
}

// CountFlashcardMarkers counts literal "Q:" occurrences in raw.
// A question without an answer still counts.
func CountFlashcardMarkers(raw string) int {
	return strings.Count(raw, questionMarker)
}
