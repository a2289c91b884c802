package mysql

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"finance-tracker/internal/domain/transaction"
)

var transactionColumns = []string{
	"transaction_id", "user_id", "transaction_type", "amount",
	"category", "description", "occurred_at", "created_at", "updated_at",
}

func newTestRepository(t *testing.T) (*TransactionRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	wrapped := &DB{DB: db}
	return &TransactionRepository{
		db:     wrapped,
		tm:     NewTransactionManager(wrapped),
		tracer: otel.Tracer("test"),
	}, mock
}

func newTestTransaction(id string, tt transaction.TransactionType, amount string) *transaction.Transaction {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	return transaction.MustNewTransaction(id, "user123", tt, transaction.Fields{
		Amount:      decimal.RequireFromString(amount),
		Category:    "Food",
		Date:        date,
		Description: "lunch",
	}, date.Add(12*time.Hour))
}

func TestTransactionRepository_Create(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		wantErr   error
		wantError bool
	}{
		{
			name: "正常系: トランザクションを保存",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO transactions`).
					WithArgs(
						"txn123",
						"user123",
						"expense",
						"50.25",
						"Food",
						"lunch",
						time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
						time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
						nil,
					).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
		},
		{
			name: "異常系: ID重複",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO transactions`).
					WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"})
			},
			wantErr:   transaction.ErrDuplicateTransactionID,
			wantError: true,
		},
		{
			name: "異常系: DBエラー",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO transactions`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr:   sql.ErrConnDone,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestRepository(t)
			tt.setupMock(mock)

			err := repo.Create(context.Background(), newTestTransaction("txn123", transaction.TransactionTypeExpense, "50.25"))

			if tt.wantError {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTransactionRepository_FindByID(t *testing.T) {
	occurred := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	updated := time.Date(2024, 1, 16, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		wantError bool
		wantErr   error
		checkFunc func(*testing.T, *transaction.Transaction)
	}{
		{
			name: "正常系: トランザクションが見つかる",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(transactionColumns).
					AddRow("txn123", "user123", "income", "1000.0000", "Salary", "", occurred, created, updated)
				mock.ExpectQuery(`SELECT .* FROM transactions WHERE user_id = \? AND transaction_id = \?`).
					WithArgs("user123", "txn123").
					WillReturnRows(rows)
			},
			checkFunc: func(t *testing.T, got *transaction.Transaction) {
				assert.Equal(t, "txn123", got.TransactionID())
				assert.Equal(t, "user123", got.UserID())
				assert.Equal(t, transaction.TransactionTypeIncome, got.TransactionType())
				assert.True(t, decimal.NewFromInt(1000).Equal(got.Amount()))
				assert.Equal(t, "Salary", got.Category())
				assert.Equal(t, occurred, got.Date())
				assert.Equal(t, created, got.CreatedAt())
				require.NotNil(t, got.UpdatedAt())
				assert.Equal(t, updated, *got.UpdatedAt())
			},
		},
		{
			name: "正常系: 未更新のトランザクション",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(transactionColumns).
					AddRow("txn123", "user123", "expense", "12.5000", "Food", "lunch", occurred, created, nil)
				mock.ExpectQuery(`SELECT`).
					WithArgs("user123", "txn123").
					WillReturnRows(rows)
			},
			checkFunc: func(t *testing.T, got *transaction.Transaction) {
				assert.True(t, decimal.RequireFromString("12.5").Equal(got.Amount()))
				assert.Nil(t, got.UpdatedAt())
			},
		},
		{
			name: "異常系: トランザクションが見つからない",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT`).
					WithArgs("user123", "txn123").
					WillReturnError(sql.ErrNoRows)
			},
			wantError: true,
			wantErr:   transaction.ErrTransactionNotFound,
		},
		{
			name: "異常系: DBエラー",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT`).
					WithArgs("user123", "txn123").
					WillReturnError(sql.ErrConnDone)
			},
			wantError: true,
			wantErr:   sql.ErrConnDone,
		},
		{
			name: "異常系: 不正なタイプが保存されている",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(transactionColumns).
					AddRow("txn123", "user123", "transfer", "1", "Food", "", occurred, created, nil)
				mock.ExpectQuery(`SELECT`).
					WithArgs("user123", "txn123").
					WillReturnRows(rows)
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestRepository(t)
			tt.setupMock(mock)

			got, err := repo.FindByID(context.Background(), "user123", "txn123")

			if tt.wantError {
				require.Error(t, err)
				assert.Nil(t, got)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
			} else {
				require.NoError(t, err)
				tt.checkFunc(t, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTransactionRepository_FindByUserID(t *testing.T) {
	occurred := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	jan, err := transaction.ParseMonth("2024-01")
	require.NoError(t, err)

	tests := []struct {
		name      string
		filter    transaction.ListFilter
		setupMock func(sqlmock.Sqlmock)
		wantCount int
		wantError bool
	}{
		{
			name:   "正常系: フィルタなし",
			filter: transaction.ListFilter{},
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(transactionColumns).
					AddRow("txn2", "user123", "expense", "300", "Rent", "", occurred, created, nil).
					AddRow("txn1", "user123", "income", "1000", "Salary", "", occurred.AddDate(0, 0, -1), created, nil)
				mock.ExpectQuery(`FROM transactions WHERE user_id = \? ORDER BY occurred_at DESC, created_at DESC, transaction_id ASC$`).
					WithArgs("user123").
					WillReturnRows(rows)
			},
			wantCount: 2,
		},
		{
			name:   "正常系: 月・カテゴリ・件数で絞り込み",
			filter: transaction.ListFilter{Month: &jan, Category: "Food", Limit: 5},
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(transactionColumns).
					AddRow("txn3", "user123", "expense", "50", "Food", "", occurred, created, nil)
				mock.ExpectQuery(`WHERE user_id = \? AND occurred_at >= \? AND occurred_at < \? AND category = \? ORDER BY .* LIMIT \?`).
					WithArgs(
						"user123",
						time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
						time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
						"Food",
						5,
					).
					WillReturnRows(rows)
			},
			wantCount: 1,
		},
		{
			name:   "正常系: 該当なしは空スライス",
			filter: transaction.ListFilter{Category: "Healthcare"},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT`).
					WithArgs("user123", "Healthcare").
					WillReturnRows(sqlmock.NewRows(transactionColumns))
			},
			wantCount: 0,
		},
		{
			name:   "異常系: DBエラー",
			filter: transaction.ListFilter{},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT`).
					WithArgs("user123").
					WillReturnError(sql.ErrConnDone)
			},
			wantError: true,
		},
		{
			name:   "異常系: 行の読み取りエラー",
			filter: transaction.ListFilter{},
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(transactionColumns).
					AddRow("txn1", "user123", "income", "1000", "Salary", "", occurred, created, nil).
					RowError(0, errors.New("row error"))
				mock.ExpectQuery(`SELECT`).
					WithArgs("user123").
					WillReturnRows(rows)
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestRepository(t)
			tt.setupMock(mock)

			got, err := repo.FindByUserID(context.Background(), "user123", tt.filter)

			if tt.wantError {
				assert.Error(t, err)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, got)
				assert.Len(t, got, tt.wantCount)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTransactionRepository_Update(t *testing.T) {
	updatedAt := time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC)

	newUpdated := func() *transaction.Transaction {
		txn := newTestTransaction("txn123", transaction.TransactionTypeExpense, "50")
		require.NoError(t, txn.Update(transaction.Fields{
			Amount:   decimal.RequireFromString("75.5"),
			Category: "Transport",
			Date:     time.Date(2024, 1, 18, 0, 0, 0, 0, time.UTC),
		}, updatedAt))
		return txn
	}

	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name: "正常系: 更新",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT transaction_id FROM transactions WHERE user_id = \? AND transaction_id = \? FOR UPDATE`).
					WithArgs("user123", "txn123").
					WillReturnRows(sqlmock.NewRows([]string{"transaction_id"}).AddRow("txn123"))
				mock.ExpectExec(`UPDATE transactions`).
					WithArgs(
						"75.5",
						"Transport",
						"",
						time.Date(2024, 1, 18, 0, 0, 0, 0, time.UTC),
						updatedAt,
						"user123",
						"txn123",
					).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "異常系: 存在しない",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT transaction_id FROM transactions`).
					WithArgs("user123", "txn123").
					WillReturnRows(sqlmock.NewRows([]string{"transaction_id"}))
				mock.ExpectRollback()
			},
			wantErr: transaction.ErrTransactionNotFound,
		},
		{
			name: "異常系: UPDATEエラーでロールバック",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT transaction_id FROM transactions`).
					WithArgs("user123", "txn123").
					WillReturnRows(sqlmock.NewRows([]string{"transaction_id"}).AddRow("txn123"))
				mock.ExpectExec(`UPDATE transactions`).
					WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			wantErr: sql.ErrConnDone,
		},
		{
			name: "異常系: コミットエラー",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT transaction_id FROM transactions`).
					WithArgs("user123", "txn123").
					WillReturnRows(sqlmock.NewRows([]string{"transaction_id"}).AddRow("txn123"))
				mock.ExpectExec(`UPDATE transactions`).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit().WillReturnError(sql.ErrTxDone)
			},
			wantErr: sql.ErrTxDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestRepository(t)
			tt.setupMock(mock)

			err := repo.Update(context.Background(), newUpdated())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTransactionRepository_Delete(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name: "正常系: 削除",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM transactions WHERE user_id = \? AND transaction_id = \?`).
					WithArgs("user123", "txn123").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "異常系: 存在しない",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM transactions`).
					WithArgs("user123", "txn123").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: transaction.ErrTransactionNotFound,
		},
		{
			name: "異常系: DBエラー",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM transactions`).
					WithArgs("user123", "txn123").
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
		{
			name: "異常系: 影響行数の取得エラー",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM transactions`).
					WithArgs("user123", "txn123").
					WillReturnResult(sqlmock.NewErrorResult(sql.ErrConnDone))
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestRepository(t)
			tt.setupMock(mock)

			err := repo.Delete(context.Background(), "user123", "txn123")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBuildListQuery(t *testing.T) {
	query, args := buildListQuery("user123", transaction.ListFilter{Limit: 3})

	assert.Contains(t, query, "WHERE user_id = ?")
	assert.NotContains(t, query, "occurred_at >=")
	assert.NotContains(t, query, "category = ?")
	assert.Contains(t, query, "LIMIT ?")
	assert.Equal(t, []interface{}{"user123", 3}, args)
}
