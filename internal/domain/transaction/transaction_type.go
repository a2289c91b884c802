package transaction

import (
	"fmt"
)

// TransactionType トランザクションタイプを表す値オブジェクト
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"  // 収入
	TransactionTypeExpense TransactionType = "expense" // 支出
)

// NewTransactionType 新しいTransactionTypeを作成
func NewTransactionType(s string) (TransactionType, error) {
	switch s {
	case "income", "expense":
		return TransactionType(s), nil
	default:
		return "", fmt.Errorf("invalid transaction type: %s", s)
	}
}

// String 文字列表現を返す
func (tt TransactionType) String() string {
	return string(tt)
}

// Valid 有効なトランザクションタイプかどうかを返す
func (tt TransactionType) Valid() bool {
	switch tt {
	case TransactionTypeIncome, TransactionTypeExpense:
		return true
	default:
		return false
	}
}

// IsIncome 収入かどうかを返す
func (tt TransactionType) IsIncome() bool {
	return tt == TransactionTypeIncome
}

// IsExpense 支出かどうかを返す
func (tt TransactionType) IsExpense() bool {
	return tt == TransactionTypeExpense
}
