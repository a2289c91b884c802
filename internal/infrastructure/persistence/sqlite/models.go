package sqlite

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"finance-tracker/internal/domain/transaction"
)

// transactionModel transactionsテーブルの行
// 金額は精度を保つため文字列で保存する
type transactionModel struct {
	UserID          string     `gorm:"primaryKey;size:255;index:idx_transactions_user_occurred,priority:1"`
	TransactionID   string     `gorm:"primaryKey;size:255"`
	TransactionType string     `gorm:"size:16;not null"`
	Amount          string     `gorm:"type:text;not null"`
	Category        string     `gorm:"size:255;not null"`
	Description     string     `gorm:"type:text;not null;default:''"`
	OccurredAt      time.Time  `gorm:"not null;index:idx_transactions_user_occurred,priority:2"`
	Created         time.Time  `gorm:"column:created_at;not null"`
	Updated         *time.Time `gorm:"column:updated_at"`
}

func (transactionModel) TableName() string {
	return "transactions"
}

func toModel(t *transaction.Transaction) *transactionModel {
	return &transactionModel{
		UserID:          t.UserID(),
		TransactionID:   t.TransactionID(),
		TransactionType: t.TransactionType().String(),
		Amount:          t.Amount().String(),
		Category:        t.Category(),
		Description:     t.Description(),
		OccurredAt:      t.Date(),
		Created:         t.CreatedAt(),
		Updated:         t.UpdatedAt(),
	}
}

func (m *transactionModel) toEntity() (*transaction.Transaction, error) {
	tt, err := transaction.NewTransactionType(m.TransactionType)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction type: %w", err)
	}
	amount, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", m.Amount, err)
	}
	return transaction.Restore(
		m.TransactionID,
		m.UserID,
		tt,
		amount,
		m.Category,
		m.OccurredAt,
		m.Description,
		m.Created,
		m.Updated,
	), nil
}
