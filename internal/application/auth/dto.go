package auth

// GenerateTokenRequest トークン発行の入力
type GenerateTokenRequest struct {
	UserID string
}

// GenerateTokenResponse トークン発行の結果
// ExpiresInは秒単位、TokenTypeは常に"Bearer"
type GenerateTokenResponse struct {
	Token     string
	ExpiresIn int64
	TokenType string
}
