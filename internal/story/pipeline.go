package story

import (
	"context"
	"log/slog"
)

// Result is the outcome of one story assembly.
type Result struct {
	Prompt   string
	Text     string
	Fallback bool
}

// Pipeline assembles the prompt, asks the Teller for a story and falls back
// to Placeholder when the Teller fails.
type Pipeline struct {
	teller Teller
	logger *slog.Logger
}

// NewPipeline creates a pipeline. A nil teller always yields the placeholder.
func NewPipeline(teller Teller, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{teller: teller, logger: logger}
}

// Compose builds the prompt from words and template and returns the story.
// The only error is ErrIncompleteWords; generation failures degrade to the
// placeholder story.
func (p *Pipeline) Compose(ctx context.Context, words []string, template string) (Result, error) {
	prompt, err := BuildPrompt(words, template)
	if err != nil {
		return Result{}, err
	}

	if p.teller == nil {
		return Result{Prompt: prompt, Text: Placeholder(words), Fallback: true}, nil
	}

	text, err := p.teller.Tell(ctx, prompt)
	if err != nil {
		p.logger.Warn("story generation failed, falling back to placeholder", "error", err)
		return Result{Prompt: prompt, Text: Placeholder(words), Fallback: true}, nil
	}

	p.logger.Info("story generated", "length", len(text))
	return Result{Prompt: prompt, Text: text}, nil
}
