// Package digest turns a free-text query into per-ticker news summaries and a
// short overview.
package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/metrics"
	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/model"
	"golang.org/x/sync/errgroup"
)

const (
	NoSummariesPlaceholder = "No summaries generated"

	overviewSystemPrompt = "You are a financial news editor. Introduce these summaries to an investor in one short paragraph. Output the introduction only."
	overviewMaxTokens    = 256
	overviewTemperature  = 0.7

	defaultTickerConcurrency  = 3
	defaultSummaryConcurrency = 4
	defaultTimeout            = 60 * time.Second
	defaultSummaryMaxLength   = 512
	defaultSummaryMinLength   = 10
)

var (
	ErrTickerSelection = errors.New("ticker selection failed")
	ErrCatalog         = errors.New("ticker catalog unavailable")
)

type Catalog interface {
	Tickers(ctx context.Context) ([]model.Ticker, error)
}

type Selector interface {
	Select(ctx context.Context, query string, candidates []model.Ticker, topK int) ([]string, error)
}

type Fetcher interface {
	FetchNews(ctx context.Context, ticker string, maxCount int, includeFullContent bool) model.TickerNewsResult
}

// Summarizer returns a shortened text; an empty result means the item could
// not be summarized.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxLength, minLength int) string
}

type Generator interface {
	Generate(ctx context.Context, prompt, systemPrompt string, maxTokens int, temperature float64) ([]string, error)
}

type Options struct {
	TickerConcurrency  int
	SummaryConcurrency int
	// Timeout bounds a whole Run. Summaries still pending when it fires are
	// omitted and the overview falls back to the placeholder.
	Timeout time.Duration
	// FetchTimeout bounds the per-ticker fetching stage so a wedged ticker
	// leaves time to summarize the others. It never exceeds Timeout.
	FetchTimeout     time.Duration
	SummaryMaxLength int
	SummaryMinLength int
}

type Request struct {
	Query              string
	TopK               int
	MaxArticles        int
	IncludeFullContent bool
}

type Aggregator struct {
	catalog    Catalog
	selector   Selector
	fetcher    Fetcher
	summarizer Summarizer
	generator  Generator
	opts       Options
	onStage    func(Stage)
}

func NewAggregator(catalog Catalog, selector Selector, fetcher Fetcher, summarizer Summarizer, generator Generator, opts Options) *Aggregator {
	if opts.TickerConcurrency < 1 {
		opts.TickerConcurrency = defaultTickerConcurrency
	}
	if opts.SummaryConcurrency < 1 {
		opts.SummaryConcurrency = defaultSummaryConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.FetchTimeout <= 0 || opts.FetchTimeout > opts.Timeout {
		opts.FetchTimeout = opts.Timeout
	}
	if opts.SummaryMaxLength < 1 {
		opts.SummaryMaxLength = defaultSummaryMaxLength
	}
	if opts.SummaryMinLength < 0 {
		opts.SummaryMinLength = defaultSummaryMinLength
	}
	return &Aggregator{
		catalog:    catalog,
		selector:   selector,
		fetcher:    fetcher,
		summarizer: summarizer,
		generator:  generator,
		opts:       opts,
		onStage:    func(s Stage) { metrics.RecordStage(s.String()) },
	}
}

// Aggregate runs one digest for query with feed-only fetching.
func (a *Aggregator) Aggregate(ctx context.Context, query string, topK, maxArticles int) (model.AggregateDigest, error) {
	return a.Run(ctx, Request{Query: query, TopK: topK, MaxArticles: maxArticles})
}

// Run drives a request through SelectingTickers, FetchingPerTicker,
// Summarizing and ComposingOverview. Only a selection or catalog failure is
// returned as an error; everything later degrades into partial results.
func (a *Aggregator) Run(ctx context.Context, req Request) (model.AggregateDigest, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()
	logger := slog.With("query", req.Query, "top_k", req.TopK)

	a.enter(SelectingTickers)
	symbols, err := a.selectTickers(ctx, req.Query, req.TopK)
	if err != nil {
		a.enter(Errored)
		logger.Error("aggregation failed", "error", err)
		return model.AggregateDigest{}, err
	}
	logger.Info("tickers selected", "tickers", symbols)

	a.enter(FetchingPerTicker)
	results := a.fetchAll(ctx, symbols, req.MaxArticles, req.IncludeFullContent)

	a.enter(Summarizing)
	results, summaries := a.summarizeAll(ctx, results)

	a.enter(ComposingOverview)
	overview := a.composeOverview(ctx, summaries)

	a.enter(Done)
	logger.Info("aggregation done", "tickers", len(results), "summaries", len(summaries), "elapsed", time.Since(start))
	return model.AggregateDigest{PerTicker: results, Overview: overview}, nil
}

// SummarizeTicker fetches and summarizes news for a single ticker.
func (a *Aggregator) SummarizeTicker(ctx context.Context, ticker string, maxArticles int, includeFullContent bool) model.TickerNewsResult {
	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()
	results := a.fetchAll(ctx, []string{strings.ToUpper(strings.TrimSpace(ticker))}, maxArticles, includeFullContent)
	results, _ = a.summarizeAll(ctx, results)
	return results[0]
}

func (a *Aggregator) enter(s Stage) {
	slog.Debug("aggregation stage", "stage", s.String())
	if a.onStage != nil {
		a.onStage(s)
	}
}

func (a *Aggregator) selectTickers(ctx context.Context, query string, topK int) ([]string, error) {
	candidates, err := a.catalog.Tickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalog, err)
	}

	ranked, err := a.selector.Select(ctx, query, candidates, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTickerSelection, err)
	}
	return filterSymbols(ranked, candidates, topK), nil
}

// filterSymbols keeps ranked symbols that exist in the catalog, without
// duplicates, up to topK, in ranked order.
func filterSymbols(ranked []string, candidates []model.Ticker, topK int) []string {
	known := make(map[string]struct{}, len(candidates))
	for _, t := range candidates {
		known[strings.ToUpper(t.Symbol)] = struct{}{}
	}

	out := make([]string, 0, len(ranked))
	seen := make(map[string]struct{}, len(ranked))
	for _, s := range ranked {
		if len(out) >= topK {
			break
		}
		s = strings.ToUpper(strings.TrimSpace(s))
		if _, ok := known[s]; !ok {
			slog.Debug("discarding symbol outside catalog", "symbol", s)
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// slotGuard lets fan-out workers write results until the caller seals it.
// Writes after seal are dropped, so the caller may read its slots without
// locking once seal has returned.
type slotGuard struct {
	mu     sync.Mutex
	closed bool
}

func (g *slotGuard) store(write func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.closed {
		write()
	}
}

func (g *slotGuard) seal() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
}

// fanOut runs task for every index below n with at most limit in flight. It
// returns once every task has finished or ctx is done, sealing guard either
// way; tasks still running keep going but can no longer store results.
func fanOut(ctx context.Context, n, limit int, guard *slotGuard, task func(i int)) (completed bool) {
	defer guard.seal()

	done := make(chan struct{})
	go func() {
		defer close(done)
		var g errgroup.Group
		g.SetLimit(limit)
		for i := 0; i < n; i++ {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if ctx.Err() == nil {
					task(i)
				}
				return nil
			})
		}
		_ = g.Wait()
	}()

	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}

// fetchAll fetches every symbol with bounded concurrency under the fetch
// deadline. Slots start as empty partial results so a ticker that has not
// finished when the deadline fires keeps that value.
func (a *Aggregator) fetchAll(ctx context.Context, symbols []string, maxArticles int, includeFullContent bool) []model.TickerNewsResult {
	fetchCtx, cancel := context.WithTimeout(ctx, a.opts.FetchTimeout)
	defer cancel()

	slots := make([]model.TickerNewsResult, len(symbols))
	for i, s := range symbols {
		slots[i] = model.EmptyResult(s)
	}

	var guard slotGuard
	if !fanOut(fetchCtx, len(symbols), a.opts.TickerConcurrency, &guard, func(i int) {
		res := a.fetchOne(fetchCtx, symbols[i], maxArticles, includeFullContent)
		guard.store(func() { slots[i] = res })
	}) {
		slog.Warn("fetch deadline reached, composing from completed tickers", "timeout", a.opts.FetchTimeout, "error", fetchCtx.Err())
	}

	for _, r := range slots {
		metrics.RecordTickerResult(r.Partial)
	}
	return slots
}

func (a *Aggregator) fetchOne(ctx context.Context, symbol string, maxArticles int, includeFullContent bool) (res model.TickerNewsResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("ticker fetch panicked", "ticker", symbol, "panic", r)
			res = model.EmptyResult(symbol)
		}
	}()

	res = a.fetcher.FetchNews(ctx, symbol, maxArticles, includeFullContent)
	res.Ticker = symbol
	if res.Items == nil {
		res.Items = []model.NewsItem{}
	}
	return res
}

// summarizeAll replaces each item's text with a summary. Items without text
// are skipped. Items whose summary came back empty, or had not come back by
// the deadline, are dropped and mark their ticker partial. The returned
// summaries are in ticker then item order.
func (a *Aggregator) summarizeAll(ctx context.Context, results []model.TickerNewsResult) ([]model.TickerNewsResult, []string) {
	type job struct {
		ticker, item int
		text         string
	}

	slots := make([][]string, len(results))
	var jobs []job
	for i, r := range results {
		slots[i] = make([]string, len(r.Items))
		for j, item := range r.Items {
			if text := strings.TrimSpace(item.BestText()); text != "" {
				jobs = append(jobs, job{ticker: i, item: j, text: text})
			}
		}
	}

	var guard slotGuard
	if !fanOut(ctx, len(jobs), a.opts.SummaryConcurrency, &guard, func(k int) {
		jb := jobs[k]
		summary := a.summarizeOne(ctx, results[jb.ticker].Ticker, jb.text)
		guard.store(func() { slots[jb.ticker][jb.item] = summary })
	}) {
		slog.Warn("deadline reached while summarizing, omitting pending items", "timeout", a.opts.Timeout, "error", ctx.Err())
	}

	var summaries []string
	out := make([]model.TickerNewsResult, len(results))
	for i, r := range results {
		items := make([]model.NewsItem, 0, len(r.Items))
		partial := r.Partial
		for j, item := range r.Items {
			if strings.TrimSpace(item.BestText()) == "" {
				continue
			}
			summary := slots[i][j]
			if summary == "" {
				partial = true
				continue
			}
			items = append(items, item.WithSummary(summary))
			summaries = append(summaries, summary)
		}
		out[i] = model.TickerNewsResult{Ticker: r.Ticker, Items: items, Partial: partial}
	}
	return out, summaries
}

func (a *Aggregator) summarizeOne(ctx context.Context, ticker, text string) (summary string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("summarization panicked", "ticker", ticker, "panic", r)
			summary = ""
		}
	}()

	summary = strings.TrimSpace(a.summarizer.Summarize(ctx, text, a.opts.SummaryMaxLength, a.opts.SummaryMinLength))
	if summary == "" {
		slog.Warn("omitting item without summary", "ticker", ticker)
	}
	return summary
}

func (a *Aggregator) composeOverview(ctx context.Context, summaries []string) string {
	if len(summaries) == 0 || a.generator == nil {
		return NoSummariesPlaceholder
	}
	if err := ctx.Err(); err != nil {
		slog.Warn("deadline reached before composing overview", "error", err)
		return NoSummariesPlaceholder
	}

	completions, err := a.generator.Generate(ctx, strings.Join(summaries, ", "), overviewSystemPrompt, overviewMaxTokens, overviewTemperature)
	if err != nil {
		slog.Error("error composing overview", "error", err)
		return NoSummariesPlaceholder
	}

	for _, c := range completions {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return NoSummariesPlaceholder
}
