package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures runtime configuration for the import service.
type Config struct {
	HTTPAddress    string
	JWTSecret      string
	JWTIssuer      string
	DatabaseURL    string
	KafkaBrokers   []string
	ConsumerGroup  string
	ConsumerTopics []string
	MetricsAddress string

	// Extraction service.
	OpenAIBaseURL     string
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAITemperature float64
	OpenAIMaxTokens   int
	ExtractionTimeout time.Duration

	// Matching policy.
	MatchHighThreshold   float64
	MatchMediumThreshold float64
	MatchAcceptFloor     float64
	MatchAmbiguityDelta  float64
	MatchTopK            int
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		HTTPAddress:    getEnv("HTTP_ADDRESS", ":8080"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTIssuer:      getEnv("JWT_ISSUER", "allworkouts.identity"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		KafkaBrokers:   splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		ConsumerGroup:  getEnv("CONSUMER_GROUP_ID", "catalog-projector"),
		ConsumerTopics: splitAndTrim(getEnv("CONSUMER_TOPICS", "catalog_events")),
		MetricsAddress: getEnv("METRICS_ADDRESS", ":9190"),

		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4-turbo-preview"),
		OpenAITemperature: getFloatEnv("OPENAI_TEMPERATURE", 0.1),
		OpenAIMaxTokens:   getIntEnv("OPENAI_MAX_TOKENS", 4000),
		ExtractionTimeout: getDurationEnv("EXTRACTION_TIMEOUT", 120*time.Second),

		MatchHighThreshold:   getFloatEnv("MATCH_HIGH_THRESHOLD", 0.90),
		MatchMediumThreshold: getFloatEnv("MATCH_MEDIUM_THRESHOLD", 0.70),
		MatchAcceptFloor:     getFloatEnv("MATCH_ACCEPT_FLOOR", 0.50),
		MatchAmbiguityDelta:  getFloatEnv("MATCH_AMBIGUITY_DELTA", 0.05),
		MatchTopK:            getIntEnv("MATCH_TOP_K", 5),
	}
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
