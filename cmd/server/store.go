package main

import (
	"context"
	"fmt"

	"finance-tracker/internal/domain/transaction"
	"finance-tracker/internal/infrastructure/config"
	"finance-tracker/internal/infrastructure/persistence/memory"
	"finance-tracker/internal/infrastructure/persistence/mysql"
	"finance-tracker/internal/infrastructure/persistence/sqlite"
	"finance-tracker/internal/presentation/rest/handler"
)

// store 設定されたストレージドライバーの接続一式
type store struct {
	repo   transaction.TransactionRepository
	health handler.HealthChecker
	close  func() error
}

// openStore ストレージドライバーに応じてリポジトリを作成
func openStore(ctx context.Context, cfg *config.Config, migrate bool) (*store, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMySQL:
		db, err := mysql.NewDB(ctx, &cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if migrate {
			if err := mysql.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return &store{
			repo:   mysql.NewTransactionRepository(db),
			health: db,
			close:  db.Close,
		}, nil

	case config.StorageDriverSQLite:
		// SQLiteは接続時にスキーマを適用する
		db, err := sqlite.NewDB(&cfg.SQLite)
		if err != nil {
			return nil, err
		}
		return &store{
			repo:   sqlite.NewTransactionRepository(db),
			health: db,
			close:  db.Close,
		}, nil

	case config.StorageDriverMemory:
		repo := memory.NewTransactionRepository()
		return &store{
			repo:   repo,
			health: repo,
			close:  func() error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
}
