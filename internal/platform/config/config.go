// Package config はアプリケーション設定の読み込みを提供します。
// 既定値 → TOMLファイル（後に指定したものが優先）→ 環境変数 の順に上書きします。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config はアプリケーション全体の設定です。
type Config struct {
	Environment string           `toml:"environment"`
	Server      ServerConfig     `toml:"server"`
	Database    DatabaseConfig   `toml:"database"`
	Redis       RedisConfig      `toml:"redis"`
	Coverage    CoverageConfig   `toml:"coverage"`
	Market      MarketConfig     `toml:"market"`
	TwelveData  TwelveDataConfig `toml:"twelvedata"`
	PerfLog     PerfLogConfig    `toml:"perf_log"`
	Logging     LoggingConfig    `toml:"logging"`
}

// ServerConfig はHTTPサーバーの設定です。
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

// Addr は listen アドレスを返します。
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetShutdownTimeout は graceful shutdown の待ち時間を返します。
func (c ServerConfig) GetShutdownTimeout() time.Duration {
	return parseDuration(c.ShutdownTimeout, 10*time.Second)
}

// DatabaseConfig はPostgreSQL接続の設定です。
// InstanceName が設定されている場合は Cloud SQL の Unix ソケットで接続します。
type DatabaseConfig struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	User           string `toml:"user"`
	Password       string `toml:"password"`
	Name           string `toml:"name"`
	SSLMode        string `toml:"sslmode"`
	InstanceName   string `toml:"instance_name"`
	ConnectTimeout string `toml:"connect_timeout"`
	MaxOpenConns   int    `toml:"max_open_conns"`
	MaxIdleConns   int    `toml:"max_idle_conns"`
	RunMigrations  bool   `toml:"run_migrations"`
}

func (c DatabaseConfig) GetConnectTimeout() time.Duration {
	return parseDuration(c.ConnectTimeout, 60*time.Second)
}

// RedisConfig はキャッシュ用Redisの設定です。Host が空の場合はキャッシュなしで動きます。
type RedisConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CoverageConfig はカバレッジ集計と一覧APIの設定です。
type CoverageConfig struct {
	LookbackYears    int     `toml:"lookback_years"`
	GapRatio         float64 `toml:"gap_ratio"`
	MaxPageSize      int     `toml:"max_page_size"`
	ExportMaxRows    int     `toml:"export_max_rows"`
	ExportPerMinute  int     `toml:"export_per_minute"` // 0 は無制限
	CacheRefreshHour int     `toml:"cache_refresh_hour"`
	CacheTimezone    string  `toml:"cache_timezone"`
}

// MarketConfig は取引時間帯の設定です。時刻は Timezone の現地時刻 (HH:MM) です。
type MarketConfig struct {
	Timezone string `toml:"timezone"`
	Open     string `toml:"open"`
	Close    string `toml:"close"`
}

// TwelveDataConfig は Twelve Data API の設定です。
type TwelveDataConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	Timeout   string `toml:"timeout"`
	RateLimit int    `toml:"rate_limit"` // 1分あたりのリクエスト数
}

func (c TwelveDataConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 10*time.Second)
}

// PerfLogConfig はクエリ計測の出力先です。Sink は "pgx"、"slog"、"none" のいずれかです。
type PerfLogConfig struct {
	Sink       string `toml:"sink"`
	BufferSize int    `toml:"buffer_size"`
}

// LoggingConfig はログの設定です。
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig は既定値の入った Config を返します。
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ShutdownTimeout: "10s",
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			Name:           "pricehistory",
			SSLMode:        "disable",
			ConnectTimeout: "60s",
			MaxOpenConns:   20,
			MaxIdleConns:   5,
		},
		Redis: RedisConfig{
			Port: 6379,
		},
		Coverage: CoverageConfig{
			LookbackYears:    5,
			GapRatio:         0.9,
			MaxPageSize:      500,
			ExportMaxRows:    10000,
			ExportPerMinute:  6,
			CacheRefreshHour: 8,
			CacheTimezone:    "Asia/Tokyo",
		},
		Market: MarketConfig{
			Timezone: "America/New_York",
			Open:     "09:30",
			Close:    "16:00",
		},
		TwelveData: TwelveDataConfig{
			BaseURL:   "https://api.twelvedata.com",
			Timeout:   "10s",
			RateLimit: 8,
		},
		PerfLog: PerfLogConfig{
			Sink:       "slog",
			BufferSize: 256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig は既定値に paths のTOMLファイルと環境変数を順に重ねた設定を返します。
// 存在しないファイルは無視します。
func LoadConfig(paths ...string) (*Config, error) {
	cfg := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides はデプロイ環境の環境変数で設定を上書きします。
func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Environment, "APP_ENV")
	setString(&cfg.Server.Host, "HOST")
	setInt(&cfg.Server.Port, "PORT")

	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Database.SSLMode, "DB_SSLMODE")
	setString(&cfg.Database.InstanceName, "INSTANCE_CONNECTION_NAME")
	if v := os.Getenv("RUN_MIGRATIONS"); v != "" {
		cfg.Database.RunMigrations = v == "true"
	}

	setString(&cfg.Redis.Host, "REDIS_HOST")
	setInt(&cfg.Redis.Port, "REDIS_PORT")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")

	setString(&cfg.TwelveData.APIKey, "TWELVE_DATA_API_KEY")
	setString(&cfg.TwelveData.BaseURL, "TWELVE_DATA_BASE_URL")

	setString(&cfg.PerfLog.Sink, "PERF_LOG_SINK")
	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOG_FORMAT")
}

// ValidateRequired は未設定の必須項目名を返します。
func (c *Config) ValidateRequired() []string {
	var missing []string
	if c.Database.User == "" {
		missing = append(missing, "database.user (DB_USER)")
	}
	if c.Database.Name == "" {
		missing = append(missing, "database.name (DB_NAME)")
	}
	if c.Market.Timezone == "" {
		missing = append(missing, "market.timezone")
	}
	return missing
}

// IsProduction は本番環境かどうかを返します。
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
