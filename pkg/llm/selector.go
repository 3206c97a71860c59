package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/model"
)

const (
	selectorMaxTokens   = 32
	selectorTemperature = 0.2
)

// TickerSelector asks a Generator which catalog symbols best match a free
// text query.
type TickerSelector struct {
	generator Generator
}

func NewTickerSelector(generator Generator) *TickerSelector {
	return &TickerSelector{generator: generator}
}

// Select returns at most topK symbols, in the order the model ranked them.
// Symbols outside candidates are dropped; an empty answer is not an error.
func (s *TickerSelector) Select(ctx context.Context, query string, candidates []model.Ticker, topK int) ([]string, error) {
	if topK < 1 || len(candidates) == 0 {
		return []string{}, nil
	}

	completions, err := s.generator.Generate(ctx,
		fmt.Sprintf("User query: %q\n", query),
		selectorSystemPrompt(candidates, topK),
		selectorMaxTokens,
		selectorTemperature,
	)
	if err != nil {
		return nil, fmt.Errorf("selecting tickers: %w", err)
	}

	answer, ok := firstCompletion(completions)
	if !ok {
		return []string{}, nil
	}
	return parseSymbols(answer, candidates, topK), nil
}

func selectorSystemPrompt(candidates []model.Ticker, topK int) string {
	var sb strings.Builder
	sb.WriteString("You are an expert stock analyst. Given a list of stock tickers and their descriptions:\n")
	for i, t := range candidates {
		sb.WriteString(fmt.Sprintf("%d. %s: %s\n", i+1, t.Symbol, t.Description))
	}
	sb.WriteString("\nYou should pick the most relevant ticker symbols based on the user's query. ")
	sb.WriteString(fmt.Sprintf("From the list above, pick the %d most relevant ticker symbols (by symbol only). ", topK))
	sb.WriteString("Return only a comma-separated list of symbols.")
	return sb.String()
}

func parseSymbols(answer string, candidates []model.Ticker, topK int) []string {
	known := make(map[string]struct{}, len(candidates))
	for _, t := range candidates {
		known[strings.ToUpper(strings.TrimSpace(t.Symbol))] = struct{}{}
	}

	symbols := make([]string, 0, topK)
	seen := make(map[string]struct{}, topK)
	for _, part := range strings.FieldsFunc(answer, func(r rune) bool { return r == ',' || r == '\n' }) {
		symbol := strings.ToUpper(strings.Trim(strings.TrimSpace(part), "`'\"."))
		if symbol == "" {
			continue
		}
		if _, ok := known[symbol]; !ok {
			continue
		}
		if _, dup := seen[symbol]; dup {
			continue
		}
		seen[symbol] = struct{}{}
		symbols = append(symbols, symbol)
		if len(symbols) == topK {
			break
		}
	}
	return symbols
}
