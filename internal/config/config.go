package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port          string
	Environment   string
	ZoteroBaseURL string
	CORSOrigins   string
	// Search tuning
	SearchLimit int // page size for fallback analysis searches
	// PDF reading
	PDFPreviewChars int // hard cap on text returned from the read endpoint
	// Heuristics file (optional YAML override for summary tuning)
	HeuristicsFile string
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     env,
		ZoteroBaseURL:   getEnv("ZOTERO_BASE_URL", "https://api.zotero.org"),
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:3000"),
		SearchLimit:     getEnvInt("SEARCH_LIMIT", 100),
		PDFPreviewChars: getEnvInt("PDF_PREVIEW_CHARS", 12000),
		HeuristicsFile:  getEnv("HEURISTICS_FILE", ""),
		Debug:           getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
