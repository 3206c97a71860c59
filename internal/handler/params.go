package handler

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"
)

func getQueryInt(name string, defaultValue int, c *gin.Context) int {
	param := c.Query(name)

	if param == "" {
		return defaultValue
	}

	parsedValue, err := strconv.Atoi(param)
	if err != nil {
		slog.Warn("invalid query parameter, using default", "param", name, "value", param, "error", err)
		return defaultValue
	}

	return parsedValue
}

// getQueryBounded reads an int parameter, falling back to defaultValue below
// 1 and clamping at maxValue.
func getQueryBounded(name string, defaultValue, maxValue int, c *gin.Context) int {
	value := getQueryInt(name, defaultValue, c)
	if value < 1 {
		slog.Warn("invalid query parameter, using default", "param", name, "value", value, "default", defaultValue)
		return defaultValue
	}

	if value > maxValue {
		slog.Warn("query parameter exceeds max, clamping", "param", name, "value", value, "max", maxValue)
		return maxValue
	}

	return value
}

func getQueryBool(name string, c *gin.Context) bool {
	param := c.Query(name)
	if param == "" {
		return false
	}

	parsed, err := strconv.ParseBool(param)
	if err != nil {
		slog.Warn("invalid query parameter, using default", "param", name, "value", param, "error", err)
		return false
	}
	return parsed
}

func getMaxArticles(c *gin.Context) int {
	const (
		defaultMaxArticles = 5
		maxArticles        = 25
	)
	return getQueryBounded("max_articles", defaultMaxArticles, maxArticles, c)
}
