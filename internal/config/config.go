package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"docgraph/internal/model"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Import defaults
	DefaultChunkSize      int
	DefaultChunkOverlap   int
	DefaultLanguage       string
	AutoDetectLanguage    bool
	BuildCorrelationGraph bool
	SimilarityThreshold   float64

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("DOCGRAPH_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		DefaultChunkSize:      envInt("DEFAULT_CHUNK_SIZE", 1000),
		DefaultChunkOverlap:   envInt("DEFAULT_CHUNK_OVERLAP", 100),
		DefaultLanguage:       envOr("DEFAULT_LANGUAGE", "en"),
		AutoDetectLanguage:    envBool("AUTO_DETECT_LANGUAGE", true),
		BuildCorrelationGraph: envBool("BUILD_CORRELATION_GRAPH", true),
		SimilarityThreshold:   envFloat("SIMILARITY_THRESHOLD", 0.7),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("DOCGRAPH_API_KEY is required")
	}
	if err := c.ImportConfig().Validate(); err != nil {
		return fmt.Errorf("import defaults: %w", err)
	}
	return nil
}

// ImportConfig builds the default pipeline settings from the loaded values.
func (c Config) ImportConfig() model.ImportConfig {
	return model.ImportConfig{
		ChunkSize:                   c.DefaultChunkSize,
		ChunkOverlap:                c.DefaultChunkOverlap,
		AutoDetectLanguage:          c.AutoDetectLanguage,
		DefaultLanguage:             model.Language(c.DefaultLanguage),
		BuildCorrelationGraph:       c.BuildCorrelationGraph,
		SemanticSimilarityThreshold: c.SimilarityThreshold,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
