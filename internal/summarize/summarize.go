// Package summarize turns extracted document text into study material
// using a Gemini model.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goodtune/zengenius/internal/metrics"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-1.5-flash"

var (
	// ErrSummarize is returned when the summary could not be produced.
	ErrSummarize = errors.New("failed to summarize text")

	// ErrFlashcards is returned when flashcards could not be produced.
	ErrFlashcards = errors.New("failed to generate flashcards")
)

const summaryPrompt = `Summarize the following PDF content into concise bullet points.
Highlight important sections and key ideas:

%s`

const flashcardPrompt = `Turn the following summary into a list of flashcards.
Each flashcard should be in the format:
Q: [Question]
A: [Answer]

Here's the summary:
%s`

// generator is the part of *genai.Models used here.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config configures a Client.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Client generates summaries and flashcards.
type Client struct {
	models  generator
	model   string
	timeout time.Duration
	logger  zerolog.Logger
}

// New creates a Gemini-backed client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("genai api key is required")
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newClient(gc.Models, cfg), nil
}

func newClient(models generator, cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Client{
		models:  models,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  cfg.Logger.With().Str("component", "summarize").Str("model", cfg.Model).Logger(),
	}
}

// Summarize condenses document text into bullet points.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	out, err := c.generate(ctx, "summary", fmt.Sprintf(summaryPrompt, text))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSummarize, err)
	}
	return out, nil
}

// Flashcards turns a summary into "Q:"/"A:" formatted flashcards.
func (c *Client) Flashcards(ctx context.Context, summary string) (string, error) {
	out, err := c.generate(ctx, "flashcards", fmt.Sprintf(flashcardPrompt, summary))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFlashcards, err)
	}
	return out, nil
}

func (c *Client) generate(ctx context.Context, operation, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	elapsed := time.Since(start)

	if err != nil {
		metrics.GenAIRequestDuration.WithLabelValues(operation, "error").Observe(elapsed.Seconds())
		c.logger.Error().Err(err).Str("operation", operation).Dur("duration", elapsed).Msg("Generation failed")
		return "", err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		metrics.GenAIRequestDuration.WithLabelValues(operation, "empty").Observe(elapsed.Seconds())
		c.logger.Warn().Str("operation", operation).Msg("Model returned no text")
		return "", errors.New("model returned no text")
	}

	metrics.GenAIRequestDuration.WithLabelValues(operation, "success").Observe(elapsed.Seconds())
	c.logger.Debug().Str("operation", operation).Dur("duration", elapsed).Int("chars", len(text)).Msg("Generation complete")
	return text, nil
}
