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
	APIKey string

	// Documents
	DocumentRoot    string
	DefaultDocument string
	ExportDir       string

	// Object storage for s3:// document paths
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool

	// Pending approvals
	RedisURL   string
	PendingTTL time.Duration

	// Language model
	LLMProvider     string
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	AnthropicModel  string
	MaxSteps        int

	SessionCacheSize int
	MaxUploadBytes   int64

	ApprovalPolicyFile string
}

// Load reads configuration from the environment, after loading an optional
// .env file from the working directory.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("DOCEDIT_API_KEY"),

		DocumentRoot:    envOr("DOCUMENT_ROOT", "."),
		DefaultDocument: envOr("DEFAULT_DOCUMENT", "master.docx"),
		ExportDir:       envOr("EXPORT_DIR", "."),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOr("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOr("S3_BUCKET", "docedit"),
		S3UseSSL:    envBool("S3_USE_SSL", true),

		RedisURL:   os.Getenv("REDIS_URL"),
		PendingTTL: envDuration("PENDING_TTL", 24*time.Hour),

		LLMProvider:     envOr("LLM_PROVIDER", "openai"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     envOr("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		MaxSteps:        envInt("MAX_STEPS", 25),

		SessionCacheSize: envInt("SESSION_CACHE_SIZE", 64),
		MaxUploadBytes:   envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		ApprovalPolicyFile: os.Getenv("APPROVAL_POLICY_FILE"),
	}

	if cfg.PendingTTL <= 0 {
		cfg.PendingTTL = 24 * time.Hour
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = 25
	}
	if cfg.SessionCacheSize <= 0 {
		cfg.SessionCacheSize = 64
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}

	return cfg
}

// S3Enabled reports whether object storage is configured.
func (c Config) S3Enabled() bool {
	return c.S3Endpoint != ""
}

// Validate checks what every entry point needs: a usable model provider and
// complete object storage settings when object storage is enabled.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required")
		}
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required")
		}
	default:
		return fmt.Errorf("LLM_PROVIDER must be openai or anthropic, got %q", c.LLMProvider)
	}
	if c.S3Enabled() && (c.S3AccessKey == "" || c.S3SecretKey == "") {
		return fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY are required when S3_ENDPOINT is set")
	}
	return nil
}

// ValidateServer adds the checks only the HTTP server needs.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("DOCEDIT_API_KEY is required")
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
