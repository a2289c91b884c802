package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"finance-tracker/internal/domain/identity"
	"finance-tracker/internal/domain/transaction"
	otelinfra "finance-tracker/internal/infrastructure/observability/otel"
)

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorHandlerMiddleware エラーハンドリングミドルウェア
func ErrorHandlerMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			// エラーハンドリング
			return handleError(c, err, logger)
		}
	}
}

// HTTPErrorHandler ミドルウェアの外側で発生したエラー（panicからの復帰など）を処理する
func HTTPErrorHandler(logger *otelinfra.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if herr := handleError(c, err, logger); herr != nil {
			logger.Error(c.Request().Context(), "Failed to write error response", herr, nil)
		}
	}
}

// handleError エラーを処理して適切なHTTPレスポンスを返す
// ストア由来の詳細はクライアントに返さない
func handleError(c echo.Context, err error, logger *otelinfra.Logger) error {
	ctx := c.Request().Context()

	if errors.Is(err, identity.ErrUnauthorized) {
		logger.Warn(ctx, "Unauthorized", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Unauthorized",
		})
	}

	if errors.Is(err, transaction.ErrInvalidTransaction) {
		logger.Warn(ctx, "Invalid transaction data", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_transaction",
			Message: err.Error(),
		})
	}

	if errors.Is(err, transaction.ErrTransactionNotFound) {
		logger.Warn(ctx, "Transaction not found", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "transaction_not_found",
			Message: "Transaction not found",
		})
	}

	// EchoのHTTPエラー
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		logger.Warn(ctx, "HTTP error", map[string]interface{}{
			"status_code": httpErr.Code,
			"message":     httpErr.Message,
		})
		message := ""
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(httpErr.Code)
		}
		return c.JSON(httpErr.Code, ErrorResponse{
			Error:   http.StatusText(httpErr.Code),
			Message: message,
		})
	}

	// 予期しないエラー
	logger.Error(ctx, "Internal server error", err, map[string]interface{}{
		"path": c.Request().URL.Path,
	})
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_server_error",
		Message: "An unexpected error occurred",
	})
}
