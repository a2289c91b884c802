package identity

import (
	"context"
	"errors"
	"unicode/utf8"
)

// MaxUserIDLength ユーザーIDの最大文字数
const MaxUserIDLength = 255

var (
	// ErrUnauthorized 認証失敗エラー（トークン未指定・検証失敗）
	ErrUnauthorized = errors.New("unauthorized")
)

// TokenVerifier ベアラートークンを検証し、認証済みユーザーIDを返す
// 外部IDプロバイダーとの結合をこのインターフェースに閉じ込める
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// TokenVerifierFunc 関数をTokenVerifierとして扱うアダプター
type TokenVerifierFunc func(ctx context.Context, token string) (string, error)

// Verify トークンを検証
func (f TokenVerifierFunc) Verify(ctx context.Context, token string) (string, error) {
	return f(ctx, token)
}

// ValidUserID ユーザーIDが保存可能かどうかを返す
// IDプロバイダーの発行する値は不透明なため、文字種は制限しない
func ValidUserID(userID string) bool {
	return userID != "" && utf8.ValidString(userID) && utf8.RuneCountInString(userID) <= MaxUserIDLength
}
