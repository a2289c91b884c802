package ledger

import "finance-tracker/internal/domain/transaction"

// ListTransactionsRequest トランザクション一覧取得リクエスト
// クエリパラメータの文字列をそのまま受け取り、サービス内で解析する
type ListTransactionsRequest struct {
	UserID   string
	Month    string // optional: "YYYY-MM"
	Category string // optional: 完全一致
	Limit    string // optional: 正の整数
}

// ListTransactionsResponse トランザクション一覧取得レスポンス
type ListTransactionsResponse struct {
	Transactions []*transaction.Transaction
}

// GetTransactionRequest トランザクション取得リクエスト
type GetTransactionRequest struct {
	UserID        string
	TransactionID string
}

// GetTransactionResponse トランザクション取得レスポンス
type GetTransactionResponse struct {
	Transaction *transaction.Transaction
}

// CreateTransactionRequest トランザクション作成リクエスト
type CreateTransactionRequest struct {
	UserID string
	Input  transaction.TransactionInput
}

// CreateTransactionResponse トランザクション作成レスポンス
type CreateTransactionResponse struct {
	TransactionID string
	Transaction   *transaction.Transaction
}

// UpdateTransactionRequest トランザクション更新リクエスト
type UpdateTransactionRequest struct {
	UserID        string
	TransactionID string
	Input         transaction.TransactionInput
}

// UpdateTransactionResponse トランザクション更新レスポンス
type UpdateTransactionResponse struct {
	TransactionID string
	Transaction   *transaction.Transaction
}

// DeleteTransactionRequest トランザクション削除リクエスト
type DeleteTransactionRequest struct {
	UserID        string
	TransactionID string
}

// DeleteTransactionResponse トランザクション削除レスポンス
type DeleteTransactionResponse struct {
	TransactionID string
}
