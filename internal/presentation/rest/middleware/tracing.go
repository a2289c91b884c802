package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware OpenTelemetryトレーシングミドルウェア
func TracingMiddleware() echo.MiddlewareFunc {
	tracer := otel.Tracer("finance-tracker")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			// トレースコンテキストの伝播
			propagator := otel.GetTextMapPropagator()
			ctx = propagator.Extract(ctx, propagation.HeaderCarrier(c.Request().Header))

			spanName := c.Request().Method + " " + c.Path()
			ctx, span := tracer.Start(ctx, spanName,
				trace.WithSpanKind(trace.SpanKindServer),
			)
			defer span.End()

			span.SetAttributes(
				attribute.String("http.method", c.Request().Method),
				attribute.String("http.url", c.Request().URL.String()),
				attribute.String("http.route", c.Path()),
				attribute.String("http.user_agent", c.Request().UserAgent()),
			)

			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)

			statusCode := c.Response().Status
			span.SetAttributes(
				attribute.Int("http.status_code", statusCode),
			)
			if userID, ok := c.Get(UserIDKey).(string); ok {
				span.SetAttributes(attribute.String("enduser.id", userID))
			}

			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else if statusCode >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(statusCode))
			}

			return err
		}
	}
}
