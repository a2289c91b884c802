package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"finance-tracker/internal/domain/identity"
	otelinfra "finance-tracker/internal/infrastructure/observability/otel"
)

// UserIDKey 認証済みユーザーIDを格納するechoコンテキストのキー
const UserIDKey = "user_id"

// Authenticator ベアラートークンからユーザーIDを解決する
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// AuthMiddleware ベアラートークン認証ミドルウェア
func AuthMiddleware(authenticator Authenticator, logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			token, ok := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				logger.Warn(ctx, "Invalid authorization header format", nil)
				return identity.ErrUnauthorized
			}

			userID, err := authenticator.Authenticate(ctx, token)
			if err != nil {
				return err
			}

			// ユーザーIDをリクエストコンテキストに設定
			c.Set(UserIDKey, userID)

			return next(c)
		}
	}
}

// BearerToken Authorizationヘッダーからトークンを取り出す
// ヘッダーが空の場合は空文字とtrueを返し、判定はAuthenticatorに委ねる
func BearerToken(header string) (string, bool) {
	if header == "" {
		return "", true
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
