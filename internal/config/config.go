// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
// CONFIG_FILEが設定されている場合はYAMLファイルの値で上書きする。
type Config struct {
	// Database
	DatabaseURL string

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string

	// Rate Limit
	RateLimitGeneral int // API全般 req/min/クライアント
	RateLimitIngest  int // 記事取り込み req/min/クライアント

	// Retention
	RetentionDays   int           // 記事の保持日数
	CleanupInterval time.Duration // クリーンアップジョブの実行間隔

	// List
	ListPageSize int // 記事一覧のデフォルトページサイズ
}

// fileOverrides はYAML設定ファイルによる上書き項目。
// 未指定の項目（nil）は環境変数の値を維持する。
type fileOverrides struct {
	DatabaseURL       *string `yaml:"database_url"`
	ServerPort        *string `yaml:"server_port"`
	CORSAllowedOrigin *string `yaml:"cors_allowed_origin"`
	RateLimitGeneral  *int    `yaml:"rate_limit_general"`
	RateLimitIngest   *int    `yaml:"rate_limit_ingest"`
	RetentionDays     *int    `yaml:"retention_days"`
	CleanupInterval   *string `yaml:"cleanup_interval"`
	ListPageSize      *int    `yaml:"list_page_size"`
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	// Optional fields with defaults
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitIngest = getEnvInt("RATE_LIMIT_INGEST", 10)
	cfg.RetentionDays = getEnvInt("RETENTION_DAYS", 365)
	cfg.CleanupInterval = getEnvDuration("CLEANUP_INTERVAL", 24*time.Hour)
	cfg.ListPageSize = getEnvInt("LIST_PAGE_SIZE", 20)

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFileOverrides(cfg, path); err != nil {
			return nil, err
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("required environment variables are not set: [DATABASE_URL]")
	}

	return cfg, nil
}

// applyFileOverrides はYAML設定ファイルの値でcfgを上書きする。
func applyFileOverrides(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var overrides fileOverrides
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if overrides.DatabaseURL != nil {
		cfg.DatabaseURL = *overrides.DatabaseURL
	}
	if overrides.ServerPort != nil {
		cfg.ServerPort = *overrides.ServerPort
	}
	if overrides.CORSAllowedOrigin != nil {
		cfg.CORSAllowedOrigin = *overrides.CORSAllowedOrigin
	}
	if overrides.RateLimitGeneral != nil {
		cfg.RateLimitGeneral = *overrides.RateLimitGeneral
	}
	if overrides.RateLimitIngest != nil {
		cfg.RateLimitIngest = *overrides.RateLimitIngest
	}
	if overrides.RetentionDays != nil {
		cfg.RetentionDays = *overrides.RetentionDays
	}
	if overrides.CleanupInterval != nil {
		d, err := time.ParseDuration(*overrides.CleanupInterval)
		if err != nil {
			return fmt.Errorf("invalid cleanup_interval in config file: %w", err)
		}
		cfg.CleanupInterval = d
	}
	if overrides.ListPageSize != nil {
		cfg.ListPageSize = *overrides.ListPageSize
	}

	return nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
