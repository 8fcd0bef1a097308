package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/lexchunk/internal/chunker"
)

// Sink backends.
const (
	SinkNone      = "none"
	SinkPathstore = "pathstore"
	SinkBadger    = "badger"
)

type Config struct {
	Port string `yaml:"port"`

	// Auth
	APIKey string `yaml:"api_key"`

	// Chunk sink
	Sink            string `yaml:"sink"`
	PathstoreURL    string `yaml:"pathstore_url"`
	PathstoreAPIKey string `yaml:"pathstore_api_key"`
	Collection      string `yaml:"collection"`
	BadgerPath      string `yaml:"badger_path"`

	// Worker pool
	WorkerCount  int `yaml:"worker_count"`
	MaxQueueSize int `yaml:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Chunking
	MinLen           int    `yaml:"min_len"`
	MaxLen           int    `yaml:"max_len"`
	FloorLen         int    `yaml:"floor_len"`
	ContextSeparator string `yaml:"context_separator"`
	Terminators      string `yaml:"sentence_terminators"`
	ParserProfile    string `yaml:"parser_profile"`
	CatalogPath      string `yaml:"catalog_path"`

	// Job state
	JobTTL      time.Duration `yaml:"job_ttl"`
	StatsWindow time.Duration `yaml:"stats_window"`

	// PDF
	PDFFallbackPdftotext bool `yaml:"pdf_fallback_pdftotext"`

	LogLevel string `yaml:"log_level"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	ch := chunker.DefaultConfig()
	return Config{
		Port:                 "8090",
		Sink:                 SinkNone,
		PathstoreURL:         "http://localhost:8080",
		Collection:           "default",
		BadgerPath:           "data/chunks",
		WorkerCount:          4,
		MaxQueueSize:         100,
		MaxUploadBytes:       52428800, // 50MB
		MinLen:               ch.MinLen,
		MaxLen:               ch.MaxLen,
		FloorLen:             ch.FloorLen,
		ContextSeparator:     ch.ContextSeparator,
		Terminators:          ch.Terminators,
		ParserProfile:        "auto",
		JobTTL:               1 * time.Hour,
		StatsWindow:          1 * time.Hour,
		PDFFallbackPdftotext: true,
		LogLevel:             "info",
	}
}

// Load builds the configuration from defaults, the YAML file named by
// LEXCHUNK_CONFIG when set, and environment variables, in that order.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("LEXCHUNK_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("LEXCHUNK_API_KEY", cfg.APIKey)

	cfg.Sink = strings.ToLower(envOr("SINK", cfg.Sink))
	cfg.PathstoreURL = envOr("PATHSTORE_URL", cfg.PathstoreURL)
	cfg.PathstoreAPIKey = envOr("PATHSTORE_API_KEY", cfg.PathstoreAPIKey)
	cfg.Collection = envOr("PATHSTORE_COLLECTION", cfg.Collection)
	cfg.BadgerPath = envOr("BADGER_PATH", cfg.BadgerPath)

	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)

	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)

	cfg.MinLen = envInt("MIN_LEN", cfg.MinLen)
	cfg.MaxLen = envInt("MAX_LEN", cfg.MaxLen)
	cfg.FloorLen = envInt("FLOOR_LEN", cfg.FloorLen)
	cfg.ContextSeparator = envOr("CONTEXT_SEPARATOR", cfg.ContextSeparator)
	cfg.Terminators = envOr("SENTENCE_TERMINATORS", cfg.Terminators)
	cfg.ParserProfile = envOr("PARSER_PROFILE", cfg.ParserProfile)
	cfg.CatalogPath = envOr("CATALOG_PATH", cfg.CatalogPath)

	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)
	cfg.StatsWindow = envDuration("STATS_WINDOW", cfg.StatsWindow)

	cfg.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", cfg.PDFFallbackPdftotext)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults resets non-positive operational settings. Chunk bounds are
// left alone so Validate can report them.
func (c *Config) applyDefaults() {
	d := Defaults()
	if c.WorkerCount <= 0 {
		c.WorkerCount = d.WorkerCount
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = d.MaxQueueSize
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = d.MaxUploadBytes
	}
	if c.JobTTL <= 0 {
		c.JobTTL = d.JobTTL
	}
	if c.StatsWindow <= 0 {
		c.StatsWindow = d.StatsWindow
	}
	if c.Sink == "" {
		c.Sink = SinkNone
	}
}

// Chunking returns the chunker settings.
func (c Config) Chunking() chunker.Config {
	return chunker.Config{
		MinLen:           c.MinLen,
		MaxLen:           c.MaxLen,
		FloorLen:         c.FloorLen,
		ContextSeparator: c.ContextSeparator,
		Terminators:      c.Terminators,
	}
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("LEXCHUNK_API_KEY is required")
	}
	switch c.Sink {
	case SinkNone:
	case SinkPathstore:
		if c.PathstoreAPIKey == "" {
			return fmt.Errorf("PATHSTORE_API_KEY is required for the pathstore sink")
		}
	case SinkBadger:
		if c.BadgerPath == "" {
			return fmt.Errorf("BADGER_PATH is required for the badger sink")
		}
	default:
		return fmt.Errorf("unknown SINK %q (want %s, %s or %s)", c.Sink, SinkNone, SinkPathstore, SinkBadger)
	}
	return c.Chunking().Validate()
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(expandEnvVars(data), c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// expandEnvVars substitutes ${VAR} and ${VAR:-default}.
func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
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
