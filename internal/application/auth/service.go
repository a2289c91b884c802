package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finance-tracker/internal/domain/identity"
	"finance-tracker/internal/infrastructure/config"
	otelinfra "finance-tracker/internal/infrastructure/observability/otel"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrTokenIssuerDisabled 共有シークレットが未設定でトークンを発行できないエラー
var ErrTokenIssuerDisabled = errors.New("token issuer is not configured")

// AuthApplicationService 認証アプリケーションサービス
type AuthApplicationService struct {
	verifier  identity.TokenVerifier
	jwtConfig *config.JWTConfig
	logger    *otelinfra.Logger
	metrics   *otelinfra.Metrics
	now       func() time.Time
}

// NewAuthApplicationService 新しいAuthApplicationServiceを作成
func NewAuthApplicationService(
	verifier identity.TokenVerifier,
	jwtConfig *config.JWTConfig,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *AuthApplicationService {
	return &AuthApplicationService{
		verifier:  verifier,
		jwtConfig: jwtConfig,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Authenticate ベアラートークンを検証してユーザーIDを返す
// 失敗時は常にidentity.ErrUnauthorizedでラップしたエラーを返す
func (s *AuthApplicationService) Authenticate(ctx context.Context, token string) (string, error) {
	tracer := otel.Tracer("auth-service")
	ctx, span := tracer.Start(ctx, "AuthApplicationService.Authenticate")
	defer span.End()

	if token == "" {
		span.SetStatus(codes.Error, "missing token")
		s.metrics.RecordAuthFailure(ctx, "missing_token")
		return "", identity.ErrUnauthorized
	}

	userID, err := s.verifier.Verify(ctx, token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.RecordAuthFailure(ctx, "invalid_token")
		s.logger.Warn(ctx, "Token verification failed", map[string]interface{}{
			"error": err.Error(),
		})
		if errors.Is(err, identity.ErrUnauthorized) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", identity.ErrUnauthorized, err)
	}
	if userID == "" {
		span.SetStatus(codes.Error, "empty user id")
		s.metrics.RecordAuthFailure(ctx, "empty_subject")
		return "", fmt.Errorf("%w: token has no user id", identity.ErrUnauthorized)
	}
	if !identity.ValidUserID(userID) {
		span.SetStatus(codes.Error, "unsupported user id")
		s.metrics.RecordAuthFailure(ctx, "invalid_subject")
		return "", fmt.Errorf("%w: token user id exceeds %d characters or is not UTF-8", identity.ErrUnauthorized, identity.MaxUserIDLength)
	}

	span.SetAttributes(attribute.String("user_id", userID))
	return userID, nil
}

// GenerateToken JWTトークンを生成（開発用）
func (s *AuthApplicationService) GenerateToken(ctx context.Context, req *GenerateTokenRequest) (*GenerateTokenResponse, error) {
	tracer := otel.Tracer("auth-service")
	ctx, span := tracer.Start(ctx, "AuthApplicationService.GenerateToken")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
	)

	// ユーザーIDのバリデーション
	if req.UserID == "" {
		err := fmt.Errorf("user_id is required")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error(ctx, "User ID is required", err, nil)
		return nil, err
	}

	if s.jwtConfig.Secret == "" {
		span.RecordError(ErrTokenIssuerDisabled)
		span.SetStatus(codes.Error, ErrTokenIssuerDisabled.Error())
		return nil, ErrTokenIssuerDisabled
	}

	now := s.now()
	expiresAt := now.Add(s.jwtConfig.Expiration)

	claims := jwt.MapClaims{
		"sub":     req.UserID,
		"user_id": req.UserID,
		"iat":     now.Unix(),
		"exp":     expiresAt.Unix(),
	}
	if s.jwtConfig.Issuer != "" {
		claims["iss"] = s.jwtConfig.Issuer
	}
	if s.jwtConfig.Audience != "" {
		claims["aud"] = s.jwtConfig.Audience
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error(ctx, "Failed to generate token", err, map[string]interface{}{
			"user_id": req.UserID,
		})
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info(ctx, "Token generated successfully", map[string]interface{}{
		"user_id":    req.UserID,
		"expires_at": expiresAt.Unix(),
	})

	return &GenerateTokenResponse{
		Token:     tokenString,
		ExpiresIn: int64(s.jwtConfig.Expiration.Seconds()),
		TokenType: "Bearer",
	}, nil
}
