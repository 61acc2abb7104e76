package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount       int
	MaxQueueSize      int
	MaxConcurrentDocs int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Ranking
	PersonaTable           string
	ExtractedSectionsLimit int
	SubsectionLimit        int

	// Headings
	PositionOverrides bool

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("DOCRANK_API_KEY"),

		WorkerCount:       envInt("WORKER_COUNT", 4),
		MaxQueueSize:      envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentDocs: envInt("MAX_CONCURRENT_DOCS", 4),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PersonaTable:           os.Getenv("PERSONA_TABLE"),
		ExtractedSectionsLimit: envInt("EXTRACTED_SECTIONS_LIMIT", 10),
		SubsectionLimit:        envInt("SUBSECTION_LIMIT", 15),

		PositionOverrides: envBool("HEADING_POSITION_OVERRIDES", false),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", false),
	}

	cfg.WorkerCount = positive(cfg.WorkerCount, 4)
	cfg.MaxQueueSize = positive(cfg.MaxQueueSize, 100)
	cfg.MaxConcurrentDocs = positive(cfg.MaxConcurrentDocs, 4)
	cfg.MaxUploadBytes = positive(cfg.MaxUploadBytes, 52428800)
	cfg.JobTTL = positive(cfg.JobTTL, 1*time.Hour)
	cfg.ExtractedSectionsLimit = positive(cfg.ExtractedSectionsLimit, 10)
	cfg.SubsectionLimit = positive(cfg.SubsectionLimit, 15)

	return cfg
}

// Validate checks what the HTTP server needs. The batch commands run
// without credentials.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("DOCRANK_API_KEY is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric: %q", c.Port)
	}
	return nil
}

// positive replaces zero and negative settings with their default.
func positive[T int | int64 | time.Duration](v, fallback T) T {
	if v <= 0 {
		return fallback
	}
	return v
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
