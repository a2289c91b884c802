package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics メトリクス定義
type Metrics struct {
	// トランザクションの書き込み数（作成・更新・削除）
	TransactionCount metric.Int64Counter

	// 書き込まれた金額の分布
	TransactionAmount metric.Float64Histogram

	// 認証失敗数
	AuthFailureCount metric.Int64Counter

	// リクエスト数
	RequestCount metric.Int64Counter

	// レスポンス時間
	ResponseTime metric.Float64Histogram

	// エラー率
	ErrorCount metric.Int64Counter
}

// NewMetrics 新しいMetricsを作成
func NewMetrics(meterName string) (*Metrics, error) {
	return NewMetricsWithMeter(otel.Meter(meterName))
}

// NewMetricsWithMeter 指定したメーターでMetricsを作成
func NewMetricsWithMeter(meter metric.Meter) (*Metrics, error) {
	transactionCount, err := meter.Int64Counter(
		"transactions_total",
		metric.WithDescription("Total number of transaction writes"),
	)
	if err != nil {
		return nil, err
	}

	transactionAmount, err := meter.Float64Histogram(
		"transaction_amount",
		metric.WithDescription("Absolute amount of written transactions"),
	)
	if err != nil {
		return nil, err
	}

	authFailureCount, err := meter.Int64Counter(
		"auth_failures_total",
		metric.WithDescription("Total number of rejected bearer tokens"),
	)
	if err != nil {
		return nil, err
	}

	requestCount, err := meter.Int64Counter(
		"requests_total",
		metric.WithDescription("Total number of requests"),
	)
	if err != nil {
		return nil, err
	}

	responseTime, err := meter.Float64Histogram(
		"response_time_seconds",
		metric.WithDescription("Response time in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"errors_total",
		metric.WithDescription("Total number of errors"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		TransactionCount:  transactionCount,
		TransactionAmount: transactionAmount,
		AuthFailureCount:  authFailureCount,
		RequestCount:      requestCount,
		ResponseTime:      responseTime,
		ErrorCount:        errorCount,
	}, nil
}

// RecordTransaction トランザクションの書き込みを記録
func (m *Metrics) RecordTransaction(ctx context.Context, operation, transactionType string) {
	m.TransactionCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("transaction_type", transactionType),
		),
	)
}

// RecordTransactionAmount 書き込まれた金額を記録
func (m *Metrics) RecordTransactionAmount(ctx context.Context, transactionType string, amount float64) {
	m.TransactionAmount.Record(ctx, amount,
		metric.WithAttributes(
			attribute.String("transaction_type", transactionType),
		),
	)
}

// RecordAuthFailure 認証失敗を記録
func (m *Metrics) RecordAuthFailure(ctx context.Context, reason string) {
	m.AuthFailureCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("reason", reason),
		),
	)
}

// RecordRequest リクエストを記録
func (m *Metrics) RecordRequest(ctx context.Context, method, path string) {
	m.RequestCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordResponseTime レスポンス時間を記録
func (m *Metrics) RecordResponseTime(ctx context.Context, method, path string, duration float64) {
	m.ResponseTime.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordError エラーを記録
func (m *Metrics) RecordError(ctx context.Context, errorType string) {
	m.ErrorCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error_type", errorType),
		),
	)
}
