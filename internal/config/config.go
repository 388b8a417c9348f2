package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server Configuration
	Port string

	// Database Configuration
	DatabaseURL string

	// Scraper Configuration
	ScrapeDelay   time.Duration // courtesy delay between outbound requests
	ScrapeTimeout time.Duration // per-request timeout
	UserAgent     string
	ReportFile    string // optional JSON run-report artifact

	// GitHub Configuration
	GitHubToken string // optional, raises rate limits for the GraphQL API
}

func Load() *Config {
	return &Config{
		// Server
		Port: getEnv("PORT", "8080"),

		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Scraper
		ScrapeDelay:   time.Duration(getIntEnv("SCRAPE_DELAY", 3)) * time.Second,
		ScrapeTimeout: time.Duration(getIntEnv("SCRAPE_TIMEOUT", 15)) * time.Second,
		UserAgent: getEnv("SCRAPER_USER_AGENT",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		ReportFile: os.Getenv("REPORT_FILE"),

		// GitHub
		GitHubToken: os.Getenv("GITHUB_TOKEN"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fallback
		}
		return intVal
	}
	return fallback
}
