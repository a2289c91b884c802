package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	otelinfra "finance-tracker/internal/infrastructure/observability/otel"
)

// HealthChecker ストアの疎通確認
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthResponse ヘルスチェックレスポンス
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// HealthHandler ヘルスチェックハンドラー
type HealthHandler struct {
	store   HealthChecker
	logger  *otelinfra.Logger
	timeout time.Duration
}

// NewHealthHandler 新しいHealthHandlerを作成
func NewHealthHandler(store HealthChecker, logger *otelinfra.Logger) *HealthHandler {
	return &HealthHandler{
		store:   store,
		logger:  logger,
		timeout: 2 * time.Second,
	}
}

// Check ヘルスチェック
// @Summary ヘルスチェック
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(c echo.Context) error {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
		defer cancel()

		if err := h.store.HealthCheck(ctx); err != nil {
			h.logger.Error(ctx, "Health check failed", err, nil)
			return c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		}
	}
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
