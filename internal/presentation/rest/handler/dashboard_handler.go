package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dashboardapp "finance-tracker/internal/application/dashboard"
	"finance-tracker/internal/presentation/presenter"
)

// DashboardHandler ダッシュボード関連ハンドラー
type DashboardHandler struct {
	dashboardService *dashboardapp.DashboardApplicationService
}

// NewDashboardHandler 新しいDashboardHandlerを作成
func NewDashboardHandler(dashboardService *dashboardapp.DashboardApplicationService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetSummary ダッシュボード集計ハンドラー
// @Summary ダッシュボード集計を取得
// @Description 収入・支出・残高、直近のトレンド、カテゴリ別支出を返します
// @Tags dashboard
// @Produce json
// @Security Bearer
// @Param month query string false "年月（YYYY-MM）" example(2024-01)
// @Param category query string false "カテゴリ（完全一致）"
// @Param trend query int false "トレンドの点数（デフォルト: 7, 最大: 100)" default(7)
// @Success 200 {object} presenter.Summary "集計成功"
// @Failure 400 {object} restmiddleware.ErrorResponse "不正なクエリ"
// @Failure 401 {object} restmiddleware.ErrorResponse "認証エラー"
// @Router /dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	resp, err := h.dashboardService.GetSummary(c.Request().Context(), &dashboardapp.GetSummaryRequest{
		UserID:   userID,
		Month:    c.QueryParam("month"),
		Category: c.QueryParam("category"),
		Trend:    c.QueryParam("trend"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, presenter.NewSummary(resp.Summary))
}
