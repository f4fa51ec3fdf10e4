package common

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig   `toml:"database"`
	Server     ServerConfig     `toml:"server"`
	Extraction ExtractionConfig `toml:"extraction"`
	Resolver   ResolverConfig   `toml:"resolver"`
	Worker     WorkerConfig     `toml:"worker"`
	Export     ExportConfig     `toml:"export"`
	Log        LogConfig        `toml:"log"`
}

// DatabaseConfig holds database-related configuration. An empty DSN means
// results are not persisted.
type DatabaseConfig struct {
	DSN              string        `toml:"dsn"`
	MaxConns         int32         `toml:"max_conns" validate:"gte=1"`
	MinConns         int32         `toml:"min_conns" validate:"gte=0,ltefield=MaxConns"`
	MaxConnLifetime  time.Duration `toml:"-"`
	MaxConnIdleTime  time.Duration `toml:"-"`
	DialTimeout      time.Duration `toml:"-"`
	StatementTimeout time.Duration `toml:"-"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string `toml:"grpc_addr" validate:"required"`
}

// ExtractionConfig controls how page text and word boxes are read.
type ExtractionConfig struct {
	// PdfToTextBin enables the poppler -bbox backend when set.
	PdfToTextBin string `toml:"pdftotext_bin"`
	MaxPages     int    `toml:"max_pages" validate:"gte=0"`
}

// ResolverConfig exposes the tunable heuristics. Zero values keep defaults.
type ResolverConfig struct {
	Scope              string  `toml:"scope" validate:"omitempty,oneof=barangay city unknown"`
	CaptureRegionRatio float64 `toml:"capture_region_ratio" validate:"gte=0,lte=1"`
	PositionGapMax     float64 `toml:"position_gap_max" validate:"gte=0"`
	ColumnClusterRatio float64 `toml:"column_cluster_ratio" validate:"gte=0,lte=1"`
	LGUAmbiguityGap    int     `toml:"lgu_ambiguity_gap" validate:"gte=0"`
}

// WorkerConfig sizes the processing pool.
type WorkerConfig struct {
	Workers        int    `toml:"workers" validate:"gte=1,lte=64"`
	QueueSize      int    `toml:"queue_size" validate:"gte=1"`
	ProcessTimeout string `toml:"process_timeout" validate:"required"`
	InboxDir       string `toml:"inbox_dir"`
	Schedule       string `toml:"schedule"`
}

// Timeout parses ProcessTimeout, falling back to two minutes.
func (w WorkerConfig) Timeout() time.Duration {
	if d, err := time.ParseDuration(w.ProcessTimeout); err == nil && d > 0 {
		return d
	}
	return 2 * time.Minute
}

// ExportConfig controls on-disk outputs.
type ExportConfig struct {
	OutDir string `toml:"out_dir"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" validate:"oneof=json text"`
}

// NewDefaultConfig returns the built-in defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			MaxConns:        20,
			MinConns:        5,
			MaxConnLifetime: 30 * time.Minute,
			MaxConnIdleTime: 5 * time.Minute,
			DialTimeout:     3 * time.Second,
		},
		Server: ServerConfig{GRPCAddr: ":8080"},
		Worker: WorkerConfig{
			Workers:        4,
			QueueSize:      64,
			ProcessTimeout: "2m",
			Schedule:       "@every 5m",
		},
		Export: ExportConfig{OutDir: "./out"},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig builds the configuration from defaults, then the TOML file at
// path (or AIP_CONFIG when path is empty), then environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	if path == "" {
		path = os.Getenv("AIP_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, NewAppError(CodeConfig, "read config file", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, NewAppError(CodeConfig, "parse config file "+path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(c *Config) {
	c.Database.DSN = getEnv("DB_URL", c.Database.DSN)
	c.Database.MaxConns = getEnvAsInt32("DB_MAX_CONNS", c.Database.MaxConns)
	c.Database.MinConns = getEnvAsInt32("DB_MIN_CONNS", c.Database.MinConns)
	c.Database.MaxConnLifetime = getEnvAsDuration("DB_MAX_CONN_LIFETIME", c.Database.MaxConnLifetime)
	c.Database.MaxConnIdleTime = getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", c.Database.MaxConnIdleTime)
	c.Database.DialTimeout = getEnvAsDuration("DB_DIAL_TIMEOUT", c.Database.DialTimeout)
	c.Database.StatementTimeout = getEnvAsDuration("DB_STATEMENT_TIMEOUT", c.Database.StatementTimeout)

	c.Server.GRPCAddr = getEnv("GRPC_ADDR", c.Server.GRPCAddr)

	c.Extraction.PdfToTextBin = getEnv("PDFTOTEXT_BIN", c.Extraction.PdfToTextBin)
	c.Extraction.MaxPages = getEnvAsInt("AIP_MAX_PAGES", c.Extraction.MaxPages)

	c.Resolver.Scope = getEnv("AIP_SCOPE", c.Resolver.Scope)

	c.Worker.Workers = getEnvAsInt("AIP_WORKERS", c.Worker.Workers)
	c.Worker.QueueSize = getEnvAsInt("AIP_QUEUE_SIZE", c.Worker.QueueSize)
	c.Worker.ProcessTimeout = getEnv("AIP_PROCESS_TIMEOUT", c.Worker.ProcessTimeout)
	c.Worker.InboxDir = getEnv("AIP_INBOX_DIR", c.Worker.InboxDir)
	c.Worker.Schedule = getEnv("AIP_SCHEDULE", c.Worker.Schedule)

	c.Export.OutDir = getEnv("AIP_OUT_DIR", c.Export.OutDir)

	c.Log.Level = strings.ToLower(getEnv("AIP_LOG_LEVEL", c.Log.Level))
	c.Log.Format = strings.ToLower(getEnv("AIP_LOG_FORMAT", c.Log.Format))
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks struct constraints. requireDB additionally demands a DSN
// for commands that cannot run without persistence.
func (c *Config) Validate(requireDB bool) error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return NewAppError(CodeConfig, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()), ErrInvalidInput)
		}
		return NewAppError(CodeConfig, "invalid configuration", err)
	}
	if requireDB && c.Database.DSN == "" {
		return NewAppError(CodeConfig, "DB_URL is required", ErrInvalidInput)
	}
	if _, err := time.ParseDuration(c.Worker.ProcessTimeout); err != nil {
		return NewAppError(CodeConfig, "worker.process_timeout must be a duration", err)
	}
	if c.Worker.Schedule != "" {
		if _, err := cron.ParseStandard(c.Worker.Schedule); err != nil {
			return NewAppError(CodeConfig, "worker.schedule must be a cron expression", err)
		}
	}
	return nil
}
