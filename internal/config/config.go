package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Scorer names accepted by SCORER.
const (
	ScorerClaude = "claude"
	ScorerLocal  = "local"
)

type Config struct {
	Port string

	// Auth
	DocmarkAPIKey string

	// Scoring
	Scorer          string
	AnthropicAPIKey string
	AnthropicModel  string
	AnthropicURL    string
	RankTopFraction float64
	RankBatchTokens int
	RankMinWords    int
	RankCacheSize   int
	RankRatePerSec  float64

	// Worker pool
	WorkerCount        int
	MaxQueueSize       int
	MaxConcurrentScore int

	// Upload limits
	MaxUploadBytes int64

	// Matching and marking
	MatchMaxErrors    int
	MatchInclusiveEnd bool
	HighlightPrefix   string

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

// Load reads a dotenv file if present, then the environment. Variables that
// are already set win over the file.
func Load() (Config, error) {
	file := envOr("DOCMARK_ENV_FILE", ".env")
	if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", file, err)
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from environment variables alone.
func FromEnv() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		DocmarkAPIKey: os.Getenv("DOCMARK_API_KEY"),

		Scorer:          os.Getenv("SCORER"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		AnthropicURL:    envOr("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		RankTopFraction: envFloat("RANK_TOP_FRACTION", 0.2),
		RankBatchTokens: envInt("RANK_BATCH_TOKENS", 1500),
		RankMinWords:    envInt("RANK_MIN_WORDS", 3),
		RankCacheSize:   envInt("RANK_CACHE_SIZE", 256),
		RankRatePerSec:  envFloat("RANK_RATE_PER_SEC", 0),

		WorkerCount:        envInt("WORKER_COUNT", 4),
		MaxQueueSize:       envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentScore: envInt("MAX_CONCURRENT_SCORE", 4),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		MatchMaxErrors:    envInt("MATCH_MAX_ERRORS", 1),
		MatchInclusiveEnd: envBool("MATCH_INCLUSIVE_END", true),
		HighlightPrefix:   envOr("HIGHLIGHT_PREFIX", "docmark"),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.Scorer == "" {
		cfg.Scorer = ScorerLocal
		if cfg.AnthropicAPIKey != "" {
			cfg.Scorer = ScorerClaude
		}
	}
	if cfg.RankTopFraction <= 0 || cfg.RankTopFraction > 1 {
		cfg.RankTopFraction = 0.2
	}
	if cfg.RankBatchTokens <= 0 {
		cfg.RankBatchTokens = 1500
	}
	if cfg.RankMinWords <= 0 {
		cfg.RankMinWords = 3
	}
	if cfg.RankCacheSize <= 0 {
		cfg.RankCacheSize = 256
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentScore <= 0 {
		cfg.MaxConcurrentScore = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

// Validate checks what the HTTP server needs.
func (c Config) Validate() error {
	if c.DocmarkAPIKey == "" {
		return fmt.Errorf("DOCMARK_API_KEY is required")
	}
	return c.ValidateScorer()
}

// ValidateScorer checks the scoring settings alone.
func (c Config) ValidateScorer() error {
	switch c.Scorer {
	case ScorerLocal:
		return nil
	case ScorerClaude:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the claude scorer")
		}
		return nil
	}
	return fmt.Errorf("unknown SCORER %q", c.Scorer)
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
