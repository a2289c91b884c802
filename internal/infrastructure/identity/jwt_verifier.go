package identity

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"

	domainidentity "finance-tracker/internal/domain/identity"
	"finance-tracker/internal/infrastructure/config"
)

// JWTVerifier JWTベアラートークンを検証するTokenVerifier実装
// HS256の共有シークレット、またはRS256の公開鍵で署名を検証する
type JWTVerifier struct {
	keyFunc jwt.Keyfunc
	parser  *jwt.Parser
}

var _ domainidentity.TokenVerifier = (*JWTVerifier)(nil)

// NewJWTVerifier 設定からJWTVerifierを作成
// 公開鍵ファイルが指定されている場合はRS256、それ以外はHS256で検証する
func NewJWTVerifier(cfg *config.JWTConfig) (*JWTVerifier, error) {
	if cfg.PublicKeyFile != "" {
		pem, err := os.ReadFile(cfg.PublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read public key file: %w", err)
		}
		key, err := jwt.ParseRSAPublicKeyFromPEM(pem)
		if err != nil {
			return nil, fmt.Errorf("failed to parse public key: %w", err)
		}
		return NewRSAVerifier(key, cfg.Issuer, cfg.Audience), nil
	}
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret or public key file is required")
	}
	return NewHMACVerifier([]byte(cfg.Secret), cfg.Issuer, cfg.Audience), nil
}

// NewHMACVerifier HS256用のJWTVerifierを作成
func NewHMACVerifier(secret []byte, issuer, audience string) *JWTVerifier {
	return &JWTVerifier{
		keyFunc: func(token *jwt.Token) (interface{}, error) {
			return secret, nil
		},
		parser: newParser([]string{jwt.SigningMethodHS256.Alg()}, issuer, audience),
	}
}

// NewRSAVerifier RS256用のJWTVerifierを作成
func NewRSAVerifier(key *rsa.PublicKey, issuer, audience string) *JWTVerifier {
	return &JWTVerifier{
		keyFunc: func(token *jwt.Token) (interface{}, error) {
			return key, nil
		},
		parser: newParser([]string{jwt.SigningMethodRS256.Alg()}, issuer, audience),
	}
}

func newParser(methods []string, issuer, audience string) *jwt.Parser {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return jwt.NewParser(opts...)
}

// Verify トークンを検証してユーザーIDを返す
// ユーザーIDはuser_idクレーム、なければsubクレームから取得する
func (v *JWTVerifier) Verify(ctx context.Context, tokenString string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	claims := jwt.MapClaims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, v.keyFunc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domainidentity.ErrUnauthorized, err)
	}
	if !token.Valid {
		return "", fmt.Errorf("%w: invalid token", domainidentity.ErrUnauthorized)
	}

	if userID, ok := claims["user_id"].(string); ok && userID != "" {
		return userID, nil
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: missing user_id in token", domainidentity.ErrUnauthorized)
	}
	return sub, nil
}
