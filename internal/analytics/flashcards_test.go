package analytics

import (
	"reflect"
	"testing"
)

func TestParseFlashcards(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Flashcard
	}{
		{
			name: "dangling question dropped",
			raw:  "Q: What is 2+2?\nA: 4\nQ: Dangling question",
			want: []Flashcard{{Question: "What is 2+2?", Answer: "4"}},
		},
		{
			name: "blank lines between question and answer",
			raw:  "Q: Capital of France?\n\n   \nA:   Paris  \n",
			want: []Flashcard{{Question: "Capital of France?", Answer: "Paris"}},
		},
		{
			name: "preserves order",
			raw:  "Q: one\nA: 1\nQ: two\nA: 2\nQ: three\nA: 3",
			want: []Flashcard{
				{Question: "one", Answer: "1"},
				{Question: "two", Answer: "2"},
				{Question: "three", Answer: "3"},
			},
		},
		{
			name: "question followed by question",
			raw:  "Q: first\nQ: second\nA: answer",
			want: []Flashcard{{Question: "second", Answer: "answer"}},
		},
		{
			name: "prose between question and answer breaks the pair",
			raw:  "Q: orphan\nsome notes\nA: stray",
			want: []Flashcard{},
		},
		{
			name: "indented markers",
			raw:  "  Q: spaced\n\tA: tabbed",
			want: []Flashcard{{Question: "spaced", Answer: "tabbed"}},
		},
		{
			name: "windows line endings",
			raw:  "Q: crlf\r\nA: ok\r\n",
			want: []Flashcard{{Question: "crlf", Answer: "ok"}},
		},
		{
			name: "empty",
			raw:  "",
			want: []Flashcard{},
		},
		{
			name: "no markers",
			raw:  "- bullet one\n- bullet two",
			want: []Flashcard{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseFlashcards(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseFlashcards() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestCountFlashcardMarkers(t *testing.T) {
	if got := CountFlashcardMarkers("Q: a\nA: b\nQ: c\nA: d"); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
	if got := CountFlashcardMarkers("Q: a"); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
	if got := CountFlashcardMarkers(""); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}
