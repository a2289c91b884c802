package handler

// TransactionRequest トランザクション作成・更新リクエスト（ドキュメント用）
// 実際の検証はtransaction.TransactionInputで行う
// @Description トランザクション作成・更新リクエスト
type TransactionRequest struct {
	Amount      float64 `json:"amount" example:"12.5"`
	Type        string  `json:"type" enums:"income,expense" example:"expense"`
	Category    string  `json:"category" example:"Food"`
	Date        string  `json:"date" example:"2024-01-15"`
	Description string  `json:"description,omitempty" example:"lunch"`
}
