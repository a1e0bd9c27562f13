package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Auth
	DistillAPIKey string

	// LLM provider: "anthropic" or "gemini"
	Provider        string
	AnthropicAPIKey string
	AnthropicModel  string
	GeminiAPIKey    string
	GeminiModel     string

	// Worker pool
	WorkerCount          int
	MaxQueueSize         int
	MaxConcurrentExtract int

	// Upload limits
	MaxUploadBytes int64

	// Chunking defaults
	KnowledgeWindow  int
	KnowledgeOverlap int
	QuizWindow       int
	QuizOverlap      int

	// Quiz defaults
	DefaultQuestionType string
	AnswerCharLimit     int

	// Job state
	JobTTL time.Duration

	// Artifact storage
	ArtifactDir string

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		DistillAPIKey: os.Getenv("DISTILL_API_KEY"),

		Provider:        envOr("LLM_PROVIDER", "anthropic"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     envOr("GEMINI_MODEL", "gemini-2.0-flash"),

		WorkerCount:          envInt("WORKER_COUNT", 4),
		MaxQueueSize:         envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentExtract: envInt("MAX_CONCURRENT_EXTRACT", 5),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		KnowledgeWindow:  envInt("KNOWLEDGE_WINDOW", 3),
		KnowledgeOverlap: envInt("KNOWLEDGE_OVERLAP", 1),
		QuizWindow:       envInt("QUIZ_WINDOW", 2500),
		QuizOverlap:      envInt("QUIZ_OVERLAP", 100),

		DefaultQuestionType: envOr("DEFAULT_QUESTION_TYPE", "Long Answer"),
		AnswerCharLimit:     envInt("ANSWER_CHAR_LIMIT", 200),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		ArtifactDir: envOr("ARTIFACT_DIR", "artifacts"),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentExtract <= 0 {
		cfg.MaxConcurrentExtract = 5
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.KnowledgeWindow <= 0 {
		cfg.KnowledgeWindow = 3
	}
	if cfg.KnowledgeOverlap < 0 {
		cfg.KnowledgeOverlap = 1
	}
	if cfg.QuizWindow <= 0 {
		cfg.QuizWindow = 2500
	}
	if cfg.QuizOverlap < 0 {
		cfg.QuizOverlap = 100
	}
	if cfg.AnswerCharLimit <= 0 {
		cfg.AnswerCharLimit = 200
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.DistillAPIKey == "" {
		return fmt.Errorf("DISTILL_API_KEY is required")
	}
	switch c.Provider {
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q (want anthropic or gemini)", c.Provider)
	}
	return nil
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
