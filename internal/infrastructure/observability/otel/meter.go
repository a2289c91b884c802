package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"finance-tracker/internal/infrastructure/config"
)

// InitMeter メーターを初期化
func InitMeter(cfg *config.OpenTelemetryConfig) (func(context.Context) error, error) {
	if !cfg.Enabled {
		// OpenTelemetryが無効な場合は、Noopメーターを使用
		return func(context.Context) error { return nil }, nil
	}

	var exporter metric.Exporter
	var err error

	switch cfg.MetricsExporter {
	case "otlp":
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(cfg.OTLPEndpoint),
		}
		if cfg.OTLPInsecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exporter, err = otlpmetrichttp.New(context.Background(), opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
		}
	case "stdout":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout metric exporter: %w", err)
		}
	case "none":
		return func(context.Context) error { return nil }, nil
	default:
		return nil, fmt.Errorf("unsupported metrics exporter: %s", cfg.MetricsExporter)
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, err
	}

	mp := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter)),
		metric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	return mp.Shutdown, nil
}

// Meter メーターを取得
func Meter(name string) otelmetric.Meter {
	return otel.Meter(name)
}
