package llm

import (
	"context"
	"strings"
)

// Generator produces candidate completions for a prompt. An empty slice
// with a nil error means the provider answered with nothing usable.
type Generator interface {
	Generate(ctx context.Context, prompt, systemPrompt string, maxTokens int, temperature float64) ([]string, error)
	Name() string
}

func cleanCompletion(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```")
	if nl := strings.Index(content, "\n"); nl >= 0 {
		// drop the info string, e.g. ```text
		content = content[nl+1:]
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

func firstCompletion(completions []string) (string, bool) {
	for _, c := range completions {
		if c = cleanCompletion(c); c != "" {
			return c, true
		}
	}
	return "", false
}
