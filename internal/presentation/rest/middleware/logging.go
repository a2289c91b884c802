package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	otelinfra "finance-tracker/internal/infrastructure/observability/otel"
)

// LoggingMiddleware ログミドルウェア
func LoggingMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			logger.Debug(c.Request().Context(), "HTTP request started", map[string]interface{}{
				"method":      c.Request().Method,
				"path":        c.Request().URL.Path,
				"remote_addr": c.RealIP(),
				"user_agent":  c.Request().UserAgent(),
			})

			err := next(c)

			duration := time.Since(start)
			fields := map[string]interface{}{
				"method":      c.Request().Method,
				"path":        c.Request().URL.Path,
				"route":       c.Path(),
				"status_code": c.Response().Status,
				"duration_ms": duration.Milliseconds(),
				"request_id":  c.Response().Header().Get(echo.HeaderXRequestID),
			}

			switch {
			case err != nil:
				logger.Error(c.Request().Context(), "HTTP request failed", err, fields)
			case c.Response().Status >= http.StatusInternalServerError:
				logger.Error(c.Request().Context(), "HTTP request failed", nil, fields)
			case c.Response().Status >= http.StatusBadRequest:
				logger.Warn(c.Request().Context(), "HTTP request rejected", fields)
			default:
				logger.Info(c.Request().Context(), "HTTP request completed", fields)
			}

			return err
		}
	}
}
