package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ストレージドライバー
const (
	StorageDriverMySQL  = "mysql"
	StorageDriverSQLite = "sqlite"
	StorageDriverMemory = "memory"
)

// Config アプリケーション全体の設定
type Config struct {
	Server        ServerConfig
	Storage       StorageConfig
	Database      DatabaseConfig
	SQLite        SQLiteConfig
	JWT           JWTConfig
	Auth          AuthConfig
	CORS          CORSConfig
	Log           LogConfig
	OpenTelemetry OpenTelemetryConfig
	Environment   string
}

// ServerConfig サーバー設定
type ServerConfig struct {
	Port         int
	GRPCPort     int // 未指定の場合はPort+1
	GRPCEnabled  bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// StorageConfig ストレージ設定
type StorageConfig struct {
	Driver string // "mysql", "sqlite", "memory"
}

// DatabaseConfig データベース設定
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// SQLiteConfig SQLite設定
type SQLiteConfig struct {
	Path string
}

// JWTConfig JWT設定
type JWTConfig struct {
	Secret        string // HS256の共有シークレット
	PublicKeyFile string // RS256の公開鍵（PEM）ファイル
	Issuer        string
	Audience      string
	Expiration    time.Duration
}

// AuthConfig 認証設定
type AuthConfig struct {
	TokenEndpointEnabled bool // 開発用トークン発行エンドポイントを有効にする
}

// CORSConfig CORS設定
type CORSConfig struct {
	AllowOrigins []string
}

// LogConfig ログ設定
type LogConfig struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "json", "console"
}

// OpenTelemetryConfig OpenTelemetry設定
type OpenTelemetryConfig struct {
	Enabled         bool
	ServiceName     string
	ServiceVersion  string
	OTLPEndpoint    string
	OTLPInsecure    bool
	TraceExporter   string // "otlp", "stdout"
	MetricsExporter string // "otlp", "stdout"
}

// Load 設定を読み込む
func Load() (*Config, error) {
	// .envファイルを読み込む（存在しない場合は無視）
	_ = godotenv.Load()

	env := getEnv("ENVIRONMENT", "development")
	port := getEnvAsInt("SERVER_PORT", 8080)

	cfg := &Config{
		Environment: env,
		Server: ServerConfig{
			Port:         port,
			GRPCPort:     getEnvAsInt("GRPC_PORT", port+1),
			GRPCEnabled:  getEnvAsBool("GRPC_ENABLED", true),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverMySQL)),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 3306),
			User:            getEnv("DB_USER", "root"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "finance_db"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 10*time.Minute),
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "finance.db"),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", ""),
			PublicKeyFile: getEnv("JWT_PUBLIC_KEY_FILE", ""),
			Issuer:        getEnv("JWT_ISSUER", ""),
			Audience:      getEnv("JWT_AUDIENCE", ""),
			Expiration:    getEnvAsDuration("JWT_EXPIRATION", time.Hour),
		},
		Auth: AuthConfig{
			TokenEndpointEnabled: getEnvAsBool("AUTH_TOKEN_ENDPOINT_ENABLED", false),
		},
		CORS: CORSConfig{
			AllowOrigins: getEnvAsSlice("CORS_ALLOW_ORIGINS", []string{"*"}),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
		OpenTelemetry: OpenTelemetryConfig{
			Enabled:         getEnvAsBool("OTEL_ENABLED", true),
			ServiceName:     getEnv("OTEL_SERVICE_NAME", "finance-tracker"),
			ServiceVersion:  getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			OTLPInsecure:    getEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			TraceExporter:   getEnv("OTEL_TRACES_EXPORTER", "otlp"),
			MetricsExporter: getEnv("OTEL_METRICS_EXPORTER", "otlp"),
		},
	}

	// 必須設定の検証
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate 設定の検証
func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageDriverMySQL:
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	case StorageDriverSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("SQLITE_PATH is required")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER: %s", c.Storage.Driver)
	}

	if c.JWT.Secret == "" && c.JWT.PublicKeyFile == "" {
		return fmt.Errorf("JWT_SECRET or JWT_PUBLIC_KEY_FILE is required")
	}
	if c.Auth.TokenEndpointEnabled && c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_TOKEN_ENDPOINT_ENABLED is set")
	}
	if c.Server.Port == c.Server.GRPCPort {
		return fmt.Errorf("GRPC_PORT must differ from SERVER_PORT")
	}
	return nil
}

// IsDevelopment 開発環境かどうかを返す
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnv 環境変数を取得（デフォルト値付き）
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt 環境変数を整数として取得
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool 環境変数を真偽値として取得
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration 環境変数を時間として取得
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice カンマ区切りの環境変数をスライスとして取得
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
