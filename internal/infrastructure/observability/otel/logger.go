package otel

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"finance-tracker/internal/infrastructure/config"
)

// Logger 構造化ロガー
// 出力にはzerologを使用し、コンテキストにスパンがあればtrace_idとspan_idを付与する
type Logger struct {
	tracer trace.Tracer
	zl     zerolog.Logger
}

// NewLogger 新しいLoggerを作成（JSON形式、Infoレベル、標準出力）
func NewLogger(tracer trace.Tracer) *Logger {
	return NewLoggerWithWriter(tracer, os.Stdout, config.LogConfig{Level: "info", Format: "json"})
}

// NewLoggerFromConfig 設定に従ってLoggerを作成
func NewLoggerFromConfig(tracer trace.Tracer, cfg *config.LogConfig) *Logger {
	return NewLoggerWithWriter(tracer, os.Stdout, *cfg)
}

// NewLoggerWithWriter 出力先を指定してLoggerを作成
func NewLoggerWithWriter(tracer trace.Tracer, w io.Writer, cfg config.LogConfig) *Logger {
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	return &Logger{
		tracer: tracer,
		zl:     zerolog.New(w).Level(level).With().Timestamp().Logger(),
	}
}

// LogLevel ログレベル
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

func (l LogLevel) zerologLevel() zerolog.Level {
	switch l {
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Log ログを出力
func (l *Logger) Log(ctx context.Context, level LogLevel, message string, fields map[string]interface{}) {
	event := l.zl.WithLevel(level.zerologLevel())
	if event == nil {
		return
	}

	// トレースIDとSpanIDを取得
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		event = event.
			Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String())
	}

	if len(fields) > 0 {
		event = event.Fields(fields)
	}

	event.Msg(message)
}

// Debug Debugレベルのログを出力
func (l *Logger) Debug(ctx context.Context, message string, fields map[string]interface{}) {
	l.Log(ctx, LogLevelDebug, message, fields)
}

// Info Infoレベルのログを出力
func (l *Logger) Info(ctx context.Context, message string, fields map[string]interface{}) {
	l.Log(ctx, LogLevelInfo, message, fields)
}

// Warn Warnレベルのログを出力
func (l *Logger) Warn(ctx context.Context, message string, fields map[string]interface{}) {
	l.Log(ctx, LogLevelWarn, message, fields)
}

// Error Errorレベルのログを出力
func (l *Logger) Error(ctx context.Context, message string, err error, fields map[string]interface{}) {
	merged := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	if err != nil {
		merged["error"] = err.Error()
	}
	l.Log(ctx, LogLevelError, message, merged)
}
