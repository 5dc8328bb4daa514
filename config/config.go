package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseURL    string `envconfig:"DATABASE_URL"     required:"true"`
	MigrateOnStart bool   `envconfig:"MIGRATE_ON_START" default:"true"`
	HTTPPort       string `envconfig:"HTTP_PORT"        default:":8080"`
	GrpcPort       string `envconfig:"GRPC_PORT"        default:":50051"` // health checks only
	LogLevel       string `envconfig:"LOG_LEVEL"        default:"info"`
	Timezone       string `envconfig:"TIMEZONE"         default:"Asia/Jakarta"`

	RedisAddr       string        `envconfig:"REDIS_ADDR"`
	RedisPassword   string        `envconfig:"REDIS_PASSWORD"`
	RedisDB         int           `envconfig:"REDIS_DB"          default:"0"`
	CatalogCacheTTL time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"5m"`

	ReceiptDir      string        `envconfig:"RECEIPT_DIR"       default:"./receipts"`
	ReceiptProfile  string        `envconfig:"RECEIPT_PROFILE"`
	ShareWebhookURL string        `envconfig:"SHARE_WEBHOOK_URL"`
	ShareTimeout    time.Duration `envconfig:"SHARE_TIMEOUT"     default:"5s"`
	QRISLink        string        `envconfig:"QRIS_LINK"`

	TracingEnabled bool `envconfig:"TRACING_ENABLED" default:"false"`
}

// Load reads an optional .env file and then the environment.
func Load(logger *logrus.Logger) (*Config, error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warnf("Error loading .env file (but continuing): %v", err)
	} else if err == nil {
		logger.Info("Loaded configuration from .env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration from environment variables: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("configuration error: DATABASE_URL is not set")
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	logger.Infof("Configuration loaded: HTTP Port=%s, GRPC Port=%s, LogLevel=%s, Timezone=%s", cfg.HTTPPort, cfg.GrpcPort, cfg.LogLevel, cfg.Timezone)
	if cfg.RedisAddr == "" {
		logger.Info("Configuration loaded: REDIS_ADDR not set, catalog cache disabled")
	}
	if cfg.ShareWebhookURL == "" {
		logger.Info("Configuration loaded: SHARE_WEBHOOK_URL not set, receipts are only logged")
	}
	return &cfg, nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE '%s': %w", c.Timezone, err)
	}
	return loc, nil
}

// Level parses LogLevel, falling back to info.
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
