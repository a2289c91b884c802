package sqlite

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"finance-tracker/internal/domain/transaction"
)

// TransactionRepository SQLite実装のTransactionRepository
type TransactionRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewTransactionRepository 新しいTransactionRepositoryを作成
func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		tracer: otel.Tracer("sqlite-transaction-repository"),
	}
}

// Create トランザクションを新規保存
func (r *TransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	ctx, span := r.tracer.Start(ctx, "TransactionRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.transaction_id", t.TransactionID()),
		attribute.String("db.user_id", t.UserID()),
		attribute.String("db.operation", "INSERT"),
	)

	err := r.db.WithContext(ctx).Create(toModel(t)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		span.SetStatus(otelcodes.Error, "duplicate transaction id")
		return transaction.ErrDuplicateTransactionID
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "transaction created")
	return nil
}

// FindByID ユーザーIDとトランザクションIDでトランザクションを取得
func (r *TransactionRepository) FindByID(ctx context.Context, userID, transactionID string) (*transaction.Transaction, error) {
	ctx, span := r.tracer.Start(ctx, "TransactionRepository.FindByID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.transaction_id", transactionID),
		attribute.String("db.user_id", userID),
		attribute.String("db.operation", "SELECT"),
	)

	var m transactionModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND transaction_id = ?", userID, transactionID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		span.SetStatus(otelcodes.Ok, "transaction not found")
		return nil, transaction.ErrTransactionNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}

	t, err := m.toEntity()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(otelcodes.Ok, "transaction found")
	return t, nil
}

// FindByUserID ユーザーIDでトランザクション一覧を取得（取引日の降順）
func (r *TransactionRepository) FindByUserID(ctx context.Context, userID string, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	ctx, span := r.tracer.Start(ctx, "TransactionRepository.FindByUserID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.user_id", userID),
		attribute.String("db.category", filter.Category),
		attribute.Int("db.limit", filter.Limit),
		attribute.String("db.operation", "SELECT"),
	)

	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Month != nil {
		start, end := filter.Month.Range()
		q = q.Where("occurred_at >= ? AND occurred_at < ?", start, end)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	q = q.Order("occurred_at DESC").Order("created_at DESC").Order("transaction_id ASC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var models []transactionModel
	if err := q.Find(&models).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}

	transactions := make([]*transaction.Transaction, 0, len(models))
	for i := range models {
		t, err := models[i].toEntity()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, err
		}
		transactions = append(transactions, t)
	}

	span.SetAttributes(attribute.Int("db.result_count", len(transactions)))
	span.SetStatus(otelcodes.Ok, fmt.Sprintf("found %d transactions", len(transactions)))
	return transactions, nil
}

// Update 既存トランザクションを更新
func (r *TransactionRepository) Update(ctx context.Context, t *transaction.Transaction) error {
	ctx, span := r.tracer.Start(ctx, "TransactionRepository.Update")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.transaction_id", t.TransactionID()),
		attribute.String("db.user_id", t.UserID()),
		attribute.String("db.operation", "UPDATE"),
	)

	m := toModel(t)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&transactionModel{}).
			Where("user_id = ? AND transaction_id = ?", m.UserID, m.TransactionID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check transaction: %w", err)
		}
		if count == 0 {
			return transaction.ErrTransactionNotFound
		}

		if err := tx.Model(&transactionModel{}).
			Where("user_id = ? AND transaction_id = ?", m.UserID, m.TransactionID).
			Updates(map[string]interface{}{
				"amount":      m.Amount,
				"category":    m.Category,
				"description": m.Description,
				"occurred_at": m.OccurredAt,
				"updated_at":  m.Updated,
			}).Error; err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		return nil
	})

	if errors.Is(err, transaction.ErrTransactionNotFound) {
		span.SetStatus(otelcodes.Ok, "transaction not found")
		return err
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	span.SetStatus(otelcodes.Ok, "transaction updated")
	return nil
}

// Delete トランザクションを物理削除
func (r *TransactionRepository) Delete(ctx context.Context, userID, transactionID string) error {
	ctx, span := r.tracer.Start(ctx, "TransactionRepository.Delete")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.transaction_id", transactionID),
		attribute.String("db.user_id", userID),
		attribute.String("db.operation", "DELETE"),
	)

	result := r.db.WithContext(ctx).
		Where("user_id = ? AND transaction_id = ?", userID, transactionID).
		Delete(&transactionModel{})
	if result.Error != nil {
		span.RecordError(result.Error)
		span.SetStatus(otelcodes.Error, result.Error.Error())
		return fmt.Errorf("failed to delete transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		span.SetStatus(otelcodes.Ok, "transaction not found")
		return transaction.ErrTransactionNotFound
	}

	span.SetStatus(otelcodes.Ok, "transaction deleted")
	return nil
}
