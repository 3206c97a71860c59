package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/model"
	"github.com/go-playground/assert/v2"
)

var testCatalog = []model.Ticker{
	{Symbol: "AAPL", Description: "Apple Inc. consumer electronics"},
	{Symbol: "TSLA", Description: "Tesla electric vehicles"},
	{Symbol: "RIVN", Description: "Rivian electric trucks"},
	{Symbol: "NVDA", Description: "Nvidia GPUs and AI accelerators"},
}

func TestTickerSelector_Select(t *testing.T) {
	tests := []struct {
		name   string
		answer []string
		topK   int
		want   []string
	}{
		{name: "ranked order kept", answer: []string{"RIVN, TSLA"}, topK: 3, want: []string{"RIVN", "TSLA"}},
		{name: "lowercase and spacing", answer: []string{" tsla ,nvda"}, topK: 3, want: []string{"TSLA", "NVDA"}},
		{name: "unknown symbols dropped", answer: []string{"TSLA, FORD, XYZ, RIVN"}, topK: 3, want: []string{"TSLA", "RIVN"}},
		{name: "truncated to topK", answer: []string{"AAPL, TSLA, RIVN, NVDA"}, topK: 2, want: []string{"AAPL", "TSLA"}},
		{name: "duplicates collapsed", answer: []string{"TSLA, tsla, RIVN"}, topK: 3, want: []string{"TSLA", "RIVN"}},
		{name: "fenced answer", answer: []string{"```\nNVDA\n```"}, topK: 1, want: []string{"NVDA"}},
		{name: "no completions", answer: []string{}, topK: 3, want: []string{}},
		{name: "nothing known", answer: []string{"F, GM"}, topK: 3, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{completions: tt.answer}
			selector := NewTickerSelector(gen)

			got, err := selector.Select(context.Background(), "electric vehicles", testCatalog, tt.topK)

			assert.Equal(t, nil, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTickerSelector_Prompt(t *testing.T) {
	gen := &fakeGenerator{completions: []string{"TSLA"}}
	selector := NewTickerSelector(gen)

	_, err := selector.Select(context.Background(), "electric vehicles", testCatalog, 3)

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(gen.prompts))
	assert.Equal(t, "User query: \"electric vehicles\"\n", gen.prompts[0])
	assert.Equal(t, true, strings.Contains(gen.systemPrompts[0], "2. TSLA: Tesla electric vehicles\n"))
	assert.Equal(t, true, strings.Contains(gen.systemPrompts[0], "pick the 3 most relevant"))
	assert.Equal(t, selectorMaxTokens, gen.maxTokens[0])
	assert.Equal(t, selectorTemperature, gen.temperatures[0])
}

func TestTickerSelector_GeneratorError(t *testing.T) {
	boom := errors.New("upstream unavailable")
	selector := NewTickerSelector(&fakeGenerator{err: boom})

	got, err := selector.Select(context.Background(), "chips", testCatalog, 3)

	assert.Equal(t, true, errors.Is(err, boom))
	assert.Equal(t, 0, len(got))
}

func TestTickerSelector_NoCallWithoutCandidates(t *testing.T) {
	gen := &fakeGenerator{completions: []string{"TSLA"}}
	selector := NewTickerSelector(gen)

	got, err := selector.Select(context.Background(), "anything", nil, 3)
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(got))

	got, err = selector.Select(context.Background(), "anything", testCatalog, 0)
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(got))

	assert.Equal(t, 0, len(gen.prompts))
}
