package handler

import (
	"errors"
	"net/http"

	authapp "finance-tracker/internal/application/auth"
	"finance-tracker/internal/domain/identity"

	"github.com/labstack/echo/v4"
)

// AuthHandler 認証関連ハンドラー
type AuthHandler struct {
	authService *authapp.AuthApplicationService
}

// NewAuthHandler 新しいAuthHandlerを作成
func NewAuthHandler(authService *authapp.AuthApplicationService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// GenerateToken トークン生成ハンドラー（開発用）
// @Summary 開発用の認証トークンを生成
// @Description ユーザーIDを元にHS256のJWTを生成します。AUTH_TOKEN_ENDPOINT_ENABLEDが有効な場合のみ公開されます
// @Tags auth
// @Accept json
// @Produce json
// @Param request body GenerateTokenRequest true "トークン生成リクエスト"
// @Success 200 {object} GenerateTokenResponse "トークン生成成功"
// @Failure 400 {object} restmiddleware.ErrorResponse "不正なリクエスト"
// @Failure 503 {object} restmiddleware.ErrorResponse "JWT_SECRET未設定"
// @Router /auth/token [post]
func (h *AuthHandler) GenerateToken(c echo.Context) error {
	var reqBody GenerateTokenRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if reqBody.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}
	if !identity.ValidUserID(reqBody.UserID) {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is too long")
	}

	resp, err := h.authService.GenerateToken(c.Request().Context(), &authapp.GenerateTokenRequest{
		UserID: reqBody.UserID,
	})
	if errors.Is(err, authapp.ErrTokenIssuerDisabled) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "token issuer is not configured")
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, GenerateTokenResponse{
		Token:     resp.Token,
		ExpiresIn: int(resp.ExpiresIn),
		TokenType: resp.TokenType,
	})
}
