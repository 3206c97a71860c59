package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/db"
	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/app"
	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/catalog"
	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/config"
	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/model"
	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/repository"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	jsonOutput  bool
	summaryOnly bool
	count       int
	withContent bool
	catalogFile string

	pipeline *app.App
)

var rootCmd = &cobra.Command{
	Use:   "fetcher",
	Short: "Fetch Yahoo Finance news from the command line",
	Long: `fetcher prints raw news items from the configured sources.

Example usage:
  fetcher ticker AAPL --count 5     # Ticker feed
  fetcher ticker TSLA --with-content
  fetcher top --json                # Top stories as JSON
  fetcher market --summary-only     # Market news summaries only
  fetcher quote-page NVDA           # News embedded in the quote page
  fetcher seed-catalog              # Load the embedded tickers into Postgres`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		app.SetupLogger(cfg)

		pipeline, err = app.New(cmd.Context(), cfg)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if pipeline != nil {
			pipeline.Close()
		}
	},
}

var tickerCmd = &cobra.Command{
	Use:   "ticker SYMBOL",
	Short: "Fetch news for a ticker symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res := pipeline.Source.FetchNews(cmd.Context(), args[0], count, withContent)
		if res.Partial {
			fmt.Fprintf(os.Stderr, "warning: results for %s are partial\n", res.Ticker)
		}
		return printItems(os.Stdout, res.Items)
	},
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Fetch top stories",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFeed(cmd.Context(), pipeline.Yahoo.TopStories)
	},
}

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Fetch market news",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFeed(cmd.Context(), pipeline.Yahoo.MarketNews)
	},
}

var quotePageCmd = &cobra.Command{
	Use:   "quote-page SYMBOL",
	Short: "Fetch news embedded in a ticker's quote page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := pipeline.Yahoo.QuotePageNews(cmd.Context(), strings.ToUpper(args[0]), count)
		if err != nil {
			return err
		}
		return printItems(os.Stdout, items)
	},
}

var seedCatalogCmd = &cobra.Command{
	Use:   "seed-catalog",
	Short: "Write the ticker catalog to the database named by DATABASE_URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		if pipeline.Config.DatabaseURL == "" {
			return db.ErrNoDatabaseURL
		}

		src, err := catalog.Default()
		if catalogFile != "" {
			var raw []byte
			if raw, err = os.ReadFile(catalogFile); err != nil {
				return fmt.Errorf("reading catalog file: %w", err)
			}
			src, err = catalog.Parse(raw)
		}
		if err != nil {
			return err
		}

		n, err := catalog.Seed(cmd.Context(), repository.NewTickerRepository(db.DB), src)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "seeded %d tickers\n", n)
		return nil
	},
}

func runFeed(ctx context.Context, fetch func(context.Context) ([]model.NewsItem, error)) error {
	items, err := fetch(ctx)
	if err != nil {
		return err
	}
	return printItems(os.Stdout, items)
}

func printItems(w io.Writer, items []model.NewsItem) error {
	if jsonOutput {
		return writeJSON(w, items, summaryOnly)
	}
	writeText(w, items, summaryOnly)
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output results as JSON")
	rootCmd.PersistentFlags().BoolVar(&summaryOnly, "summary-only", false, "print only the summary of each item")
	rootCmd.PersistentFlags().IntVar(&count, "count", 10, "number of items to fetch")

	tickerCmd.Flags().BoolVar(&withContent, "with-content", false, "fetch each article page and attach its body text")
	seedCatalogCmd.Flags().StringVar(&catalogFile, "file", "", "YAML catalog to load instead of the embedded one")

	rootCmd.AddCommand(tickerCmd, topCmd, marketCmd, quotePageCmd, seedCatalogCmd)
}

func main() {
	godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
