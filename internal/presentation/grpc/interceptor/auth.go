package interceptor

import (
	"context"
	"strings"

	"finance-tracker/internal/domain/identity"
	otelinfra "finance-tracker/internal/infrastructure/observability/otel"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Authenticator ベアラートークンからユーザーIDを解決する
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

type userIDKey struct{}

// publicServicePrefixes 認証不要なサービス
var publicServicePrefixes = []string{
	"/grpc.health.v1.Health/",
	"/grpc.reflection.",
}

// ContextWithUserID ユーザーIDをコンテキストに設定
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext コンテキストから認証済みユーザーIDを取得
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	return userID, ok && userID != ""
}

// AuthInterceptor ベアラートークン認証インターセプター
func AuthInterceptor(authenticator Authenticator, logger *otelinfra.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if isPublicMethod(info.FullMethod) {
			return handler(ctx, req)
		}

		// メタデータからトークンを取得
		var authHeader string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get("authorization"); len(values) > 0 {
				authHeader = values[0]
			}
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			logger.Warn(ctx, "Invalid authorization header format", map[string]interface{}{
				"method": info.FullMethod,
			})
			return nil, status.Error(codes.Unauthenticated, "unauthorized")
		}

		userID, err := authenticator.Authenticate(ctx, token)
		if err != nil {
			logger.Warn(ctx, "Unauthorized", map[string]interface{}{
				"method": info.FullMethod,
				"error":  err.Error(),
			})
			return nil, status.Error(codes.Unauthenticated, identity.ErrUnauthorized.Error())
		}

		return handler(ContextWithUserID(ctx, userID), req)
	}
}

// bearerToken Authorizationメタデータからトークンを取り出す
// 値が空の場合は空文字とtrueを返し、判定はAuthenticatorに委ねる
func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", true
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func isPublicMethod(fullMethod string) bool {
	for _, prefix := range publicServicePrefixes {
		if strings.HasPrefix(fullMethod, prefix) {
			return true
		}
	}
	return false
}
