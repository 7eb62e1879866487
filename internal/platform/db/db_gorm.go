// Package db はPostgreSQLへの接続とスキーマのマイグレーションを提供します。
package db

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	priceadapters "pricehistory_backend/internal/feature/prices/adapters"
	symbolentity "pricehistory_backend/internal/feature/symbols/domain/entity"
	"pricehistory_backend/internal/platform/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const retryInterval = 3 * time.Second

// Opener は DSN から *gorm.DB を開く関数です。テストで差し替えられます。
type Opener func(dsn string) (*gorm.DB, error)

// PostgresOpener は gorm の PostgreSQL ドライバで接続します。
func PostgresOpener(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// BuildDSN は keyword/value 形式の接続文字列を組み立てます。
// InstanceName が設定されている場合は Cloud SQL の Unix ソケット (/cloudsql/<instance>) を使います。
func BuildDSN(cfg config.DatabaseConfig) string {
	parts := []string{
		"user=" + quote(cfg.User),
		"password=" + quote(cfg.Password),
		"dbname=" + quote(cfg.Name),
	}
	if cfg.InstanceName != "" {
		parts = append(parts, "host="+quote("/cloudsql/"+cfg.InstanceName))
	} else {
		parts = append(parts,
			"host="+quote(cfg.Host),
			fmt.Sprintf("port=%d", cfg.Port),
		)
	}
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	parts = append(parts, "sslmode="+sslmode, "TimeZone=UTC")
	return strings.Join(parts, " ")
}

// quote は空文字や空白を含む値を単一引用符で囲みます。
func quote(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// ConnectWithRetry は timeout が過ぎるまで retryInterval ごとに接続を試みます。
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "interval", retryInterval)
		time.Sleep(retryInterval)
	}
}

// Open は設定に従って接続し、コネクションプールを調整します。
// RunMigrations が true の場合はスキーマも作成します。
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := ConnectWithRetry(BuildDSN(cfg), cfg.GetConnectTimeout(), PostgresOpener)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if cfg.RunMigrations {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		slog.Info("database migrated")
	}
	return db, nil
}

// Migrate は銘柄マスタ、銘柄変更履歴、日足のテーブルを作成・更新します。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&symbolentity.Symbol{},
		&symbolentity.SymbolChange{},
		&priceadapters.PriceRowModel{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
