package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v3"
)

type AppConfig struct {
	AuthorityBaseURL string `yaml:"authority_base_url"`
	AuthorityWSURL   string `yaml:"authority_ws_url"`
	ClientID         string `yaml:"client_id"`

	TimeControlSeconds   int    `yaml:"time_control_seconds"`
	AbortSeconds         int    `yaml:"abort_seconds"`
	AbortWarningSeconds  int    `yaml:"abort_warning_seconds"`
	AbortUrgentSeconds   int    `yaml:"abort_urgent_seconds"`
	SyncToleranceSeconds int    `yaml:"sync_tolerance_seconds"`
	PromotionPolicy      string `yaml:"promotion_policy"`

	WSMaxReconnect   int           `yaml:"ws_max_reconnect"`
	WSReconnectDelay time.Duration `yaml:"-"`
	HTTPTimeout      time.Duration `yaml:"-"`

	RedisURL        string `yaml:"redis_url"`
	DatabaseURL     string `yaml:"database_url"`
	ArchiveTTLHours int    `yaml:"archive_ttl_hours"`

	SnapshotDir string `yaml:"snapshot_dir"`
	MessagesDir string `yaml:"messages_dir"`
}

// Defaults mirror the reference client: ten-minute clocks, a 30s abort window
// with a warning from 15s elapsed and an urgent countdown in the last 10s.
func Defaults() *AppConfig {
	return &AppConfig{
		TimeControlSeconds:   600,
		AbortSeconds:         30,
		AbortWarningSeconds:  15,
		AbortUrgentSeconds:   10,
		SyncToleranceSeconds: 2,
		PromotionPolicy:      "queen",
		WSMaxReconnect:       5,
		WSReconnectDelay:     time.Second,
		HTTPTimeout:          10 * time.Second,
		ArchiveTTLHours:      24,
	}
}

// Load reads .env (if present), the optional YAML file named by SIMCHESS_CONFIG,
// then environment variables. Later sources win.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path := strings.TrimSpace(os.Getenv("SIMCHESS_CONFIG")); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if strings.TrimSpace(cfg.ClientID) == "" {
		cfg.ClientID = uuid.NewString()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *AppConfig) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("AUTHORITY_BASE_URL")); v != "" {
		c.AuthorityBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("AUTHORITY_WS_URL")); v != "" {
		c.AuthorityWSURL = v
	}
	if v := strings.TrimSpace(os.Getenv("CLIENT_ID")); v != "" {
		c.ClientID = v
	}

	setPositiveInt(&c.TimeControlSeconds, "TIME_CONTROL_SECONDS")
	setPositiveInt(&c.AbortSeconds, "ABORT_SECONDS")
	setPositiveInt(&c.AbortWarningSeconds, "ABORT_WARNING_SECONDS")
	setPositiveInt(&c.AbortUrgentSeconds, "ABORT_URGENT_SECONDS")
	if v := strings.TrimSpace(os.Getenv("SYNC_TOLERANCE_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.SyncToleranceSeconds = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("PROMOTION_POLICY")); v != "" {
		c.PromotionPolicy = strings.ToLower(v)
	}

	if v := strings.TrimSpace(os.Getenv("WS_MAX_RECONNECT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.WSMaxReconnect = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("WS_RECONNECT_DELAY_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.WSReconnectDelay = time.Duration(n) * time.Millisecond
		}
	}
	if v := strings.TrimSpace(os.Getenv("HTTP_TIMEOUT_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.HTTPTimeout = time.Duration(n) * time.Millisecond
		}
	}

	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		c.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		c.DatabaseURL = v
	}
	setPositiveInt(&c.ArchiveTTLHours, "ARCHIVE_TTL_HOURS")

	if v := strings.TrimSpace(os.Getenv("SNAPSHOT_DIR")); v != "" {
		c.SnapshotDir = v
	}
	if v := strings.TrimSpace(os.Getenv("MESSAGES_DIR")); v != "" {
		c.MessagesDir = v
	}
}

func setPositiveInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}

func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.AuthorityBaseURL) == "" {
		return errors.New("AUTHORITY_BASE_URL is required")
	}
	if strings.TrimSpace(c.AuthorityWSURL) == "" {
		return errors.New("AUTHORITY_WS_URL is required")
	}
	if c.AbortWarningSeconds >= c.AbortSeconds {
		return fmt.Errorf("ABORT_WARNING_SECONDS (%d) must be below ABORT_SECONDS (%d)", c.AbortWarningSeconds, c.AbortSeconds)
	}
	switch c.PromotionPolicy {
	case "queen", "knight", "rook", "bishop", "none":
	default:
		return fmt.Errorf("unknown PROMOTION_POLICY %q", c.PromotionPolicy)
	}
	return nil
}

// ArchiveTTL is the redis retention for finished-game snapshots.
func (c *AppConfig) ArchiveTTL() time.Duration {
	return time.Duration(c.ArchiveTTLHours) * time.Hour
}
