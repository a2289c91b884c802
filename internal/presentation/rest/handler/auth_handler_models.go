package handler

// GenerateTokenRequest 開発用トークンの発行対象
type GenerateTokenRequest struct {
	UserID string `json:"user_id" example:"user-123"`
}

// GenerateTokenResponse 発行されたBearerトークン
type GenerateTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in" example:"86400"`
	TokenType string `json:"token_type" example:"Bearer"`
}
