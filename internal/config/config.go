// Package config centralises configuration parsing for the report service.
package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures runtime configuration values for the report service.
type Config struct {
	HTTPAddress       string
	MetricsAddress    string // Separate listener for /metrics; empty serves it on HTTPAddress.
	CORSOrigin        string
	RecordsAPIURL     string // Base URL of the participation records API; empty disables the REST source.
	RecordsAPIToken   string
	SummaryAPIEnabled bool // Ask the records API for a precomputed summary alongside the records.
	PostgresURL       string
	KafkaBrokers      []string
	ConsumerGroupID   string
	ConsumerTopics    []string
	ExportTopic       string
	JWTSecret         string
	JWTIssuer         string
	FetchTimeout      time.Duration
	HTTPTimeout       time.Duration
	SessionIdleTTL    time.Duration // Idle time after which a session's report state is dropped.
}

// Load reads an optional dotenv file and then environment variables into
// Config, applying defaults for local dev. Variables already set in the
// environment take precedence over the file.
func Load() Config {
	loadDotenv(getEnv("REPORT_ENV_FILE", ".env"))

	cfg := Config{
		HTTPAddress:       getEnv("HTTP_ADDRESS", ":8080"),
		MetricsAddress:    getEnv("METRICS_ADDRESS", ""),
		CORSOrigin:        getEnv("CORS_ORIGIN", "http://localhost:3000"),
		RecordsAPIURL:     strings.TrimRight(getEnv("RECORDS_API_URL", ""), "/"),
		RecordsAPIToken:   getEnv("RECORDS_API_TOKEN", ""),
		SummaryAPIEnabled: getBoolEnv("SUMMARY_API_ENABLED", false),
		PostgresURL:       getEnv("POSTGRES_URL", ""),
		ConsumerGroupID:   getEnv("CONSUMER_GROUP_ID", "report-service"),
		ExportTopic:       getEnv("EXPORT_TOPIC", "report.exported"),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTIssuer:         getEnv("JWT_ISSUER", "sahakari.identity"),
		FetchTimeout:      getDurationEnv("FETCH_TIMEOUT", 15*time.Second),
		HTTPTimeout:       getDurationEnv("HTTP_TIMEOUT", 10*time.Second),
		SessionIdleTTL:    getDurationEnv("SESSION_IDLE_TTL", 30*time.Minute),
	}

	cfg.KafkaBrokers = splitAndTrim(getEnv("KAFKA_BROKERS", ""))
	cfg.ConsumerTopics = splitAndTrim(getEnv("CONSUMER_TOPICS", "participation.changed"))
	return cfg
}

func loadDotenv(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: ignoring %s: %v", path, err)
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
