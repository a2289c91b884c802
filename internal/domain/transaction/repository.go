package transaction

import (
	"context"
)

// TransactionRepository トランザクションリポジトリインターフェース
// すべての操作はユーザーIDの名前空間に限定される
type TransactionRepository interface {
	// Create トランザクションを新規保存
	Create(ctx context.Context, transaction *Transaction) error

	// FindByID ユーザーIDとトランザクションIDでトランザクションを取得
	FindByID(ctx context.Context, userID, transactionID string) (*Transaction, error)

	// FindByUserID ユーザーIDでトランザクション一覧を取得（取引日の降順）
	FindByUserID(ctx context.Context, userID string, filter ListFilter) ([]*Transaction, error)

	// Update 既存トランザクションを更新（存在しない場合はErrTransactionNotFound）
	Update(ctx context.Context, transaction *Transaction) error

	// Delete トランザクションを物理削除（存在しない場合はErrTransactionNotFound）
	Delete(ctx context.Context, userID, transactionID string) error
}
