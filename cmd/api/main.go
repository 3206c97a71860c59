package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/app"
	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/config"
	"github.com/MulhamShaheen/portfolio-news-monitoring-agent/internal/handler"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {

	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}
	app.SetupLogger(cfg)

	pipeline, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("error building pipeline: %v", err)
	}
	defer pipeline.Close()

	newsHandler := handler.NewNewsHandler(pipeline.Source, pipeline.Yahoo, pipeline.Catalog)
	digestHandler := handler.NewDigestHandler(pipeline.Aggregator)

	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestID())

	allowedOrigins := cfg.AllowedOrigins()

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", handler.RequestIDHeader},
		ExposeHeaders: []string{handler.RequestIDHeader},
	}))

	r.GET("/news", newsHandler.GetNews)
	r.GET("/news/top", newsHandler.GetTopStories)
	r.GET("/news/market", newsHandler.GetMarketNews)
	r.GET("/summarize-news", digestHandler.SummarizeNews)
	r.GET("/digest", digestHandler.GetDigest)
	r.GET("/tickers", newsHandler.GetTickers)
	r.GET("/health", newsHandler.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	err = r.Run(":" + cfg.Port)
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
