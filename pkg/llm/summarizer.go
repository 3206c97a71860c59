package llm

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	DefaultSummaryMaxLength = 512
	DefaultSummaryMinLength = 10

	summarizerTemperature = 0.3
)

const summarizerSystemPrompt = `You are a financial news editor. Summarize the news text you are given in a neutral tone.

Rules:
- Keep all facts: numbers, names, dates, percentages
- Use between %d and %d tokens
- Output the summary only, no preamble`

// Summarizer shortens article text. It never fails: when generation errors
// or returns nothing, the input is truncated instead.
type Summarizer struct {
	generator Generator
}

func NewSummarizer(generator Generator) *Summarizer {
	return &Summarizer{generator: generator}
}

func (s *Summarizer) Summarize(ctx context.Context, text string, maxLength, minLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultSummaryMaxLength
	}
	if minLength < 0 || minLength > maxLength {
		minLength = DefaultSummaryMinLength
	}

	completions, err := s.generator.Generate(ctx, text,
		fmt.Sprintf(summarizerSystemPrompt, minLength, maxLength),
		maxLength,
		summarizerTemperature,
	)
	if err != nil {
		slog.Warn("summarization failed, truncating", "provider", s.generator.Name(), "error", err)
		return Truncate(text, maxLength)
	}

	summary, ok := firstCompletion(completions)
	if !ok {
		slog.Warn("summarization returned no output, truncating", "provider", s.generator.Name())
		return Truncate(text, maxLength)
	}
	return summary
}

// Truncate cuts text to maxLength runes and appends an ellipsis.
func Truncate(text string, maxLength int) string {
	runes := []rune(text)
	if maxLength >= 0 && len(runes) > maxLength {
		runes = runes[:maxLength]
	}
	return string(runes) + "..."
}
