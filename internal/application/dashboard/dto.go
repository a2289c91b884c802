package dashboard

import "finance-tracker/internal/domain/analytics"

// GetSummaryRequest ダッシュボード集計リクエスト
type GetSummaryRequest struct {
	UserID   string
	Month    string // optional: "YYYY-MM"
	Category string // optional
	Trend    string // optional: トレンドの点数（デフォルト7、最大100）
}

// GetSummaryResponse ダッシュボード集計レスポンス
type GetSummaryResponse struct {
	Summary analytics.Summary
}
