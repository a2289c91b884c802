// Package memory はプロセス内メモリに保持するTransactionRepository実装を提供する。
// 開発時やテストでの利用を想定しており、プロセス終了時にデータは失われる。
package memory

import (
	"context"
	"sync"

	"finance-tracker/internal/domain/transaction"
)

// TransactionRepository インメモリ実装のTransactionRepository
type TransactionRepository struct {
	mu    sync.RWMutex
	items map[string]map[string]*transaction.Transaction // userID -> transactionID -> transaction
}

// NewTransactionRepository 新しいTransactionRepositoryを作成
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{
		items: make(map[string]map[string]*transaction.Transaction),
	}
}

// Create トランザクションを新規保存
func (r *TransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	userItems, ok := r.items[t.UserID()]
	if !ok {
		userItems = make(map[string]*transaction.Transaction)
		r.items[t.UserID()] = userItems
	}
	if _, exists := userItems[t.TransactionID()]; exists {
		return transaction.ErrDuplicateTransactionID
	}
	userItems[t.TransactionID()] = t.Clone()
	return nil
}

// FindByID ユーザーIDとトランザクションIDでトランザクションを取得
func (r *TransactionRepository) FindByID(ctx context.Context, userID, transactionID string) (*transaction.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[userID][transactionID]
	if !ok {
		return nil, transaction.ErrTransactionNotFound
	}
	return t.Clone(), nil
}

// FindByUserID ユーザーIDでトランザクション一覧を取得（取引日の降順）
func (r *TransactionRepository) FindByUserID(ctx context.Context, userID string, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	all := make([]*transaction.Transaction, 0, len(r.items[userID]))
	for _, t := range r.items[userID] {
		all = append(all, t.Clone())
	}
	r.mu.RUnlock()

	return filter.Apply(all), nil
}

// Update 既存トランザクションを更新
func (r *TransactionRepository) Update(ctx context.Context, t *transaction.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	userItems := r.items[t.UserID()]
	if _, ok := userItems[t.TransactionID()]; !ok {
		return transaction.ErrTransactionNotFound
	}
	userItems[t.TransactionID()] = t.Clone()
	return nil
}

// Delete トランザクションを物理削除
func (r *TransactionRepository) Delete(ctx context.Context, userID, transactionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	userItems := r.items[userID]
	if _, ok := userItems[transactionID]; !ok {
		return transaction.ErrTransactionNotFound
	}
	delete(userItems, transactionID)
	if len(userItems) == 0 {
		delete(r.items, userID)
	}
	return nil
}

// HealthCheck 常に成功する
func (r *TransactionRepository) HealthCheck(ctx context.Context) error {
	return ctx.Err()
}
