// Package config loads server configuration from the environment and the
// engine profile from YAML.
package config

import "os"

// Config holds server configuration.
type Config struct {
	Port             string
	LogLevel         string
	CorpusDBPath     string
	CorpusDriver     string // "sqlite" | "postgres"
	CorpusDSN        string // Postgres DSN when CorpusDriver is "postgres"
	PackDir          string
	ModelProfilePath string
	EngineProfile    string
	RedisAddr        string // optional distributed rate limiter
	OTLPEndpoint     string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		Port:             getenv("PORT", "8080"),
		LogLevel:         getenv("LOG_LEVEL", "INFO"),
		CorpusDBPath:     getenv("CORPUS_DB", "corpus.db"),
		CorpusDriver:     getenv("CORPUS_DRIVER", "sqlite"),
		CorpusDSN:        os.Getenv("CORPUS_DSN"),
		PackDir:          getenv("PACK_DIR", "data/regulations"),
		ModelProfilePath: os.Getenv("MODEL_PROFILE"),
		EngineProfile:    os.Getenv("ENGINE_PROFILE"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		OTLPEndpoint:     os.Getenv("OTLP_ENDPOINT"),
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
