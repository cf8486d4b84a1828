package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

type fakeModels struct {
	reply   string
	err     error
	block   bool
	prompts []string
	models  []string
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.models = append(f.models, model)
	for _, c := range contents {
		for _, p := range c.Parts {
			f.prompts = append(f.prompts, p.Text)
		}
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: f.reply}}},
		}},
	}, nil
}

func TestSummarize(t *testing.T) {
	fake := &fakeModels{reply: "  - chlorophyll absorbs light\n"}
	c := newClient(fake, Config{Logger: zerolog.Nop()})

	out, err := c.Summarize(context.Background(), "Plants convert light.")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if out != "- chlorophyll absorbs light" {
		t.Errorf("unexpected summary %q", out)
	}
	if len(fake.models) != 1 || fake.models[0] != DefaultModel {
		t.Errorf("expected default model, got %v", fake.models)
	}
	if !strings.Contains(fake.prompts[0], "concise bullet points") || !strings.Contains(fake.prompts[0], "Plants convert light.") {
		t.Errorf("unexpected prompt %q", fake.prompts[0])
	}
}

func TestFlashcards(t *testing.T) {
	fake := &fakeModels{reply: "Q: What absorbs light?\nA: Chlorophyll"}
	c := newClient(fake, Config{Model: "gemini-2.0-flash", Logger: zerolog.Nop()})

	out, err := c.Flashcards(context.Background(), "- chlorophyll absorbs light")
	if err != nil {
		t.Fatalf("Flashcards failed: %v", err)
	}
	if out != "Q: What absorbs light?\nA: Chlorophyll" {
		t.Errorf("unexpected flashcards %q", out)
	}
	if fake.models[0] != "gemini-2.0-flash" {
		t.Errorf("expected configured model, got %s", fake.models[0])
	}
	if !strings.Contains(fake.prompts[0], "Q: [Question]") {
		t.Errorf("expected flashcard format in prompt, got %q", fake.prompts[0])
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeModels
	}{
		{"upstream error", &fakeModels{err: errors.New("quota exceeded")}},
		{"empty reply", &fakeModels{reply: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(tt.fake, Config{Logger: zerolog.Nop()})
			if _, err := c.Summarize(context.Background(), "x"); !errors.Is(err, ErrSummarize) {
				t.Errorf("expected ErrSummarize, got %v", err)
			}
			if _, err := c.Flashcards(context.Background(), "x"); !errors.Is(err, ErrFlashcards) {
				t.Errorf("expected ErrFlashcards, got %v", err)
			}
		})
	}
}

func TestGenerateTimeout(t *testing.T) {
	c := newClient(&fakeModels{block: true}, Config{Timeout: 10 * time.Millisecond, Logger: zerolog.Nop()})

	if _, err := c.Summarize(context.Background(), "x"); !errors.Is(err, ErrSummarize) {
		t.Errorf("expected ErrSummarize on timeout, got %v", err)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("expected error without api key")
	}
}
