package transaction

import (
	"errors"
	"fmt"
)

var (
	// ErrTransactionNotFound トランザクションが見つからないエラー
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrInvalidTransaction 無効なトランザクションエラー（入力値の検証失敗）
	ErrInvalidTransaction = errors.New("invalid transaction")
	// ErrDuplicateTransactionID 重複トランザクションIDエラー
	ErrDuplicateTransactionID = errors.New("duplicate transaction id")
)

// Invalid 検証失敗の理由をErrInvalidTransactionでラップしたエラーを返す
func Invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidTransaction, reason)
}
