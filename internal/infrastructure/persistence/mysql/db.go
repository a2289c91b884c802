package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"

	"finance-tracker/internal/infrastructure/config"
)

const pingTimeout = 5 * time.Second

// DB MySQLへの接続プール
type DB struct {
	*sql.DB
}

// NewDB 接続プールを作成し、疎通を確認する
func NewDB(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	connector, err := mysqldriver.NewConnector(driverConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to build connector: %w", err)
	}

	sqlDB := sql.OpenDB(connector)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	db := &DB{DB: sqlDB}
	if err := db.HealthCheck(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// driverConfig 接続設定をドライバー設定に変換
// 時刻はUTCのtime.Timeとして読み書きする
func driverConfig(cfg *config.DatabaseConfig) *mysqldriver.Config {
	dc := mysqldriver.NewConfig()
	dc.User = cfg.User
	dc.Passwd = cfg.Password
	dc.Net = "tcp"
	dc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	dc.DBName = cfg.Database
	dc.ParseTime = true
	dc.Loc = time.UTC
	dc.Params = map[string]string{"charset": "utf8mb4"}
	return dc
}

// HealthCheck 疎通確認
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	return db.PingContext(ctx)
}
