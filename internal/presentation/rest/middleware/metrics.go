package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	otelinfra "finance-tracker/internal/infrastructure/observability/otel"
)

// MetricsMiddleware メトリクス記録ミドルウェア
// エラーハンドリングミドルウェアより外側に置き、書き込まれたステータスコードで判定する
func MetricsMiddleware(metrics *otelinfra.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			metrics.RecordRequest(c.Request().Context(), c.Request().Method, c.Path())

			err := next(c)

			// レスポンス時間を記録（秒単位）
			duration := time.Since(start).Seconds()
			metrics.RecordResponseTime(c.Request().Context(), c.Request().Method, c.Path(), duration)

			statusCode := c.Response().Status
			if err != nil && statusCode < http.StatusBadRequest {
				statusCode = http.StatusInternalServerError
			}
			if statusCode >= http.StatusBadRequest {
				errorType := "client_error"
				if statusCode >= http.StatusInternalServerError {
					errorType = "server_error"
				}
				metrics.RecordError(c.Request().Context(), errorType)
			}

			return err
		}
	}
}
