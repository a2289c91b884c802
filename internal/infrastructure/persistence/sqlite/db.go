package sqlite

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"finance-tracker/internal/infrastructure/config"
)

// DB gormによるSQLite接続
type DB struct {
	*gorm.DB
}

// NewDB 新しいSQLite接続を作成し、スキーマを適用する
func NewDB(cfg *config.SQLiteConfig) (*DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	wrapped := &DB{DB: db}
	if err := wrapped.Migrate(); err != nil {
		_ = wrapped.Close()
		return nil, err
	}
	return wrapped, nil
}

// Migrate スキーマを適用する
func (db *DB) Migrate() error {
	if err := db.AutoMigrate(&transactionModel{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close データベース接続を閉じる
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// HealthCheck データベースのヘルスチェックを実行
func (db *DB) HealthCheck(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx)
}
