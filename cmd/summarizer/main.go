package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/app"
	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/config"
	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/digest"
	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/model"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	topK        int
	maxArticles int
	withContent bool
)

type summaryJSON struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
}

type tickerJSON struct {
	Ticker    string        `json:"ticker"`
	Partial   bool          `json:"partial"`
	Summaries []summaryJSON `json:"summaries"`
}

type digestJSON struct {
	Query    string       `json:"query"`
	Tickers  []tickerJSON `json:"tickers"`
	Overview string       `json:"overview"`
}

var rootCmd = &cobra.Command{
	Use:   "summarizer QUERY",
	Short: "Build a news digest for a free-text query",
	Long: `summarizer picks the tickers most relevant to QUERY, fetches their news,
summarizes every article and prints the digest as JSON.

Example usage:
  summarizer "electric vehicles"
  summarizer "AI chip makers" --top-k 2 --max-articles 3`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         run,
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	app.SetupLogger(cfg)

	pipeline, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	query := strings.Join(args, " ")
	d, err := pipeline.Aggregator.Run(cmd.Context(), digest.Request{
		Query:              query,
		TopK:               topK,
		MaxArticles:        maxArticles,
		IncludeFullContent: withContent,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSON(query, d))
}

func toJSON(query string, d model.AggregateDigest) digestJSON {
	out := digestJSON{Query: query, Tickers: make([]tickerJSON, 0, len(d.PerTicker)), Overview: d.Overview}
	for _, r := range d.PerTicker {
		t := tickerJSON{Ticker: r.Ticker, Partial: r.Partial, Summaries: make([]summaryJSON, 0, len(r.Items))}
		for _, item := range r.Items {
			t.Summaries = append(t.Summaries, summaryJSON{Title: item.Title, Summary: item.Summary, URL: item.Link})
		}
		out.Tickers = append(out.Tickers, t)
	}
	return out
}

func init() {
	rootCmd.Flags().IntVar(&topK, "top-k", 3, "number of tickers to select")
	rootCmd.Flags().IntVar(&maxArticles, "max-articles", 5, "articles per ticker")
	rootCmd.Flags().BoolVar(&withContent, "with-content", false, "summarize full article text instead of feed summaries")
}

func main() {
	godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
