package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance-tracker/internal/domain/transaction"
)

func newTxn(id, userID, category string, tt transaction.TransactionType, amount int64, date time.Time) *transaction.Transaction {
	return transaction.MustNewTransaction(id, userID, tt, transaction.Fields{
		Amount:   decimal.NewFromInt(amount),
		Category: category,
		Date:     date,
	}, date)
}

func TestTransactionRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository()
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	txn := newTxn("tx1", "user123", "Food", transaction.TransactionTypeExpense, 50, date)
	require.NoError(t, repo.Create(ctx, txn))

	// 重複ID
	assert.ErrorIs(t, repo.Create(ctx, txn), transaction.ErrDuplicateTransactionID)

	got, err := repo.FindByID(ctx, "user123", "tx1")
	require.NoError(t, err)
	assert.Equal(t, "Food", got.Category())

	// 取得した値を変更しても保存内容は変わらない
	require.NoError(t, got.Update(transaction.Fields{Amount: decimal.NewFromInt(1), Category: "Rent", Date: date}, date))
	again, err := repo.FindByID(ctx, "user123", "tx1")
	require.NoError(t, err)
	assert.Equal(t, "Food", again.Category())

	require.NoError(t, repo.Update(ctx, got))
	again, err = repo.FindByID(ctx, "user123", "tx1")
	require.NoError(t, err)
	assert.Equal(t, "Rent", again.Category())

	require.NoError(t, repo.Delete(ctx, "user123", "tx1"))
	_, err = repo.FindByID(ctx, "user123", "tx1")
	assert.ErrorIs(t, err, transaction.ErrTransactionNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "user123", "tx1"), transaction.ErrTransactionNotFound)
}

func TestTransactionRepository_UserIsolation(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository()
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newTxn("tx1", "alice", "Food", transaction.TransactionTypeExpense, 10, date)))
	require.NoError(t, repo.Create(ctx, newTxn("tx1", "bob", "Rent", transaction.TransactionTypeExpense, 20, date)))

	got, err := repo.FindByID(ctx, "bob", "tx1")
	require.NoError(t, err)
	assert.Equal(t, "Rent", got.Category())

	_, err = repo.FindByID(ctx, "carol", "tx1")
	assert.ErrorIs(t, err, transaction.ErrTransactionNotFound)

	assert.ErrorIs(t, repo.Update(ctx, newTxn("tx1", "carol", "Food", transaction.TransactionTypeExpense, 1, date)), transaction.ErrTransactionNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "carol", "tx1"), transaction.ErrTransactionNotFound)

	list, err := repo.FindByUserID(ctx, "alice", transaction.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "alice", list[0].UserID())
}

func TestTransactionRepository_FindByUserID(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository()

	require.NoError(t, repo.Create(ctx, newTxn("a", "user123", "Food", transaction.TransactionTypeExpense, 50, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))))
	require.NoError(t, repo.Create(ctx, newTxn("b", "user123", "Salary", transaction.TransactionTypeIncome, 1000, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))
	require.NoError(t, repo.Create(ctx, newTxn("c", "user123", "Food", transaction.TransactionTypeExpense, 20, time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC))))

	jan, err := transaction.ParseMonth("2024-01")
	require.NoError(t, err)

	tests := []struct {
		name    string
		filter  transaction.ListFilter
		wantIDs []string
	}{
		{name: "正常系: 全件を取引日の降順", filter: transaction.ListFilter{}, wantIDs: []string{"c", "a", "b"}},
		{name: "正常系: 月で絞り込み", filter: transaction.ListFilter{Month: &jan}, wantIDs: []string{"a", "b"}},
		{name: "正常系: カテゴリで絞り込み", filter: transaction.ListFilter{Category: "Food"}, wantIDs: []string{"c", "a"}},
		{name: "正常系: 件数制限", filter: transaction.ListFilter{Limit: 1}, wantIDs: []string{"c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.FindByUserID(ctx, "user123", tt.filter)
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, txn := range got {
				ids = append(ids, txn.TransactionID())
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	empty, err := repo.FindByUserID(ctx, "nobody", transaction.ListFilter{})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestTransactionRepository_CanceledContext(t *testing.T) {
	repo := NewTransactionRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.ErrorIs(t, repo.Create(ctx, newTxn("tx1", "user123", "Food", transaction.TransactionTypeExpense, 1, date)), context.Canceled)
	_, err := repo.FindByUserID(ctx, "user123", transaction.ListFilter{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, repo.HealthCheck(ctx), context.Canceled)
}

func TestTransactionRepository_Concurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository()
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("tx%d", i)
			_ = repo.Create(ctx, newTxn(id, "user123", "Food", transaction.TransactionTypeExpense, int64(i+1), date))
			_, _ = repo.FindByUserID(ctx, "user123", transaction.ListFilter{})
		}(i)
	}
	wg.Wait()

	list, err := repo.FindByUserID(ctx, "user123", transaction.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 50)
}
