package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StoreNone  = "none"
	StoreFile  = "file"
	StoreMinio = "minio"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Upload limits
	MaxUploadBytes int64

	// Export
	DefaultTitle      string
	ReasoningKeywords []string

	// Conversion cache entries
	CacheSize int

	// Latency stats window
	StatsWindow time.Duration

	// Storage
	StoreBackend string
	StoreDir     string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

// Load reads the environment, after merging an optional .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("CHATEXPORT_API_KEY"),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20<<20), // 20MB

		DefaultTitle:      envOr("DEFAULT_TITLE", "Claude Chat"),
		ReasoningKeywords: envList("REASONING_KEYWORDS", []string{"Thinking", "Reasoning", "Processing", "Thought", "Processo di ragionamento"}),

		CacheSize: envInt("CACHE_SIZE", 256),

		StatsWindow: envDuration("STATS_WINDOW", time.Hour),

		StoreBackend: strings.ToLower(envOr("STORE_BACKEND", StoreNone)),
		StoreDir:     envOr("STORE_DIR", "./exports"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    envOr("MINIO_BUCKET", "chat-exports"),
		MinioUseSSL:    envBool("MINIO_USE_SSL", false),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20 << 20
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 256
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = time.Hour
	}

	return cfg
}

// Validate checks the settings the HTTP server depends on.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("CHATEXPORT_API_KEY is required")
	}
	switch c.StoreBackend {
	case StoreNone:
	case StoreFile:
		if c.StoreDir == "" {
			return fmt.Errorf("STORE_DIR is required for the file backend")
		}
	case StoreMinio:
		if c.MinioEndpoint == "" || c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			return fmt.Errorf("MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio backend")
		}
		if c.MinioBucket == "" {
			return fmt.Errorf("MINIO_BUCKET is required for the minio backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
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

// envList splits a comma-separated variable, dropping empty entries.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
