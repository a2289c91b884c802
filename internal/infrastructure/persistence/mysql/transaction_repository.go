package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"finance-tracker/internal/domain/transaction"
)

const errDuplicateEntry = 1062

const selectColumns = `
	transaction_id, user_id, transaction_type, amount,
	category, description, occurred_at, created_at, updated_at
`

// TransactionRepository MySQL実装のTransactionRepository
type TransactionRepository struct {
	db     *DB
	tm     *TransactionManager
	tracer trace.Tracer
}

// NewTransactionRepository 新しいTransactionRepositoryを作成
func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		tm:     NewTransactionManager(db),
		tracer: otel.Tracer("transaction-repository"),
	}
}

// Create トランザクションを新規保存
func (r *TransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	ctx, span := r.tracer.Start(ctx, "TransactionRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.transaction_id", t.TransactionID()),
		attribute.String("db.user_id", t.UserID()),
		attribute.String("db.transaction_type", t.TransactionType().String()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "transactions"),
	)

	query := `
		INSERT INTO transactions (
			transaction_id, user_id, transaction_type, amount,
			category, description, occurred_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		t.TransactionID(),
		t.UserID(),
		t.TransactionType().String(),
		t.Amount().String(),
		t.Category(),
		t.Description(),
		t.Date(),
		t.CreatedAt(),
		nullTime(t.UpdatedAt()),
	)
	if err != nil {
		var mysqlErr *mysqldriver.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == errDuplicateEntry {
			span.SetStatus(otelcodes.Error, "duplicate transaction id")
			return transaction.ErrDuplicateTransactionID
		}
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
		attribute.String("db.transaction_id", transactionID),
		attribute.String("db.user_id", userID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "transactions"),
	)

	query := `SELECT ` + selectColumns + ` FROM transactions WHERE user_id = ? AND transaction_id = ?`

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, userID, transactionID))
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(otelcodes.Ok, "transaction not found")
		return nil, transaction.ErrTransactionNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "transaction found")
	return t, nil
}

// FindByUserID ユーザーIDでトランザクション一覧を取得（取引日の降順）
func (r *TransactionRepository) FindByUserID(ctx context.Context, userID string, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	ctx, span := r.tracer.Start(ctx, "TransactionRepository.FindByUserID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.user_id", userID),
		attribute.String("db.category", filter.Category),
		attribute.Int("db.limit", filter.Limit),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "transactions"),
	)

	query, args := buildListQuery(userID, filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]*transaction.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	span.SetAttributes(attribute.Int("db.result_count", len(transactions)))
	span.SetStatus(otelcodes.Ok, fmt.Sprintf("found %d transactions", len(transactions)))
	return transactions, nil
}

// buildListQuery 一覧取得のクエリと引数を組み立てる
func buildListQuery(userID string, filter transaction.ListFilter) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + selectColumns + ` FROM transactions WHERE user_id = ?`)
	args := []interface{}{userID}

	if filter.Month != nil {
		start, end := filter.Month.Range()
		sb.WriteString(` AND occurred_at >= ? AND occurred_at < ?`)
		args = append(args, start, end)
	}
	if filter.Category != "" {
		sb.WriteString(` AND category = ?`)
		args = append(args, filter.Category)
	}

	sb.WriteString(` ORDER BY occurred_at DESC, created_at DESC, transaction_id ASC`)

	if filter.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, filter.Limit)
	}
	return sb.String(), args
}

// Update 既存トランザクションを更新
// 存在確認と更新を1つのSQLトランザクションで行う
func (r *TransactionRepository) Update(ctx context.Context, t *transaction.Transaction) error {
	ctx, span := r.tracer.Start(ctx, "TransactionRepository.Update")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.transaction_id", t.TransactionID()),
		attribute.String("db.user_id", t.UserID()),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.table", "transactions"),
	)

	err := r.tm.WithTransaction(ctx, func(tx *sql.Tx) error {
		var id string
		err := tx.QueryRowContext(ctx,
			`SELECT transaction_id FROM transactions WHERE user_id = ? AND transaction_id = ? FOR UPDATE`,
			t.UserID(), t.TransactionID(),
		).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return transaction.ErrTransactionNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock transaction: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE transactions
			SET amount = ?, category = ?, description = ?, occurred_at = ?, updated_at = ?
			WHERE user_id = ? AND transaction_id = ?
		`,
			t.Amount().String(),
			t.Category(),
			t.Description(),
			t.Date(),
			nullTime(t.UpdatedAt()),
			t.UserID(),
			t.TransactionID(),
		)
		if err != nil {
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
		attribute.String("db.transaction_id", transactionID),
		attribute.String("db.user_id", userID),
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.table", "transactions"),
	)

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE user_id = ? AND transaction_id = ?`,
		userID, transactionID,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		span.SetStatus(otelcodes.Ok, "transaction not found")
		return transaction.ErrTransactionNotFound
	}

	span.SetStatus(otelcodes.Ok, "transaction deleted")
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanTransaction 1行をTransactionエンティティに変換
func scanTransaction(row rowScanner) (*transaction.Transaction, error) {
	var (
		transactionID, userID, transactionType string
		amount                                 decimal.Decimal
		category, description                  string
		occurredAt, createdAt                  time.Time
		updatedAt                              sql.NullTime
	)

	if err := row.Scan(
		&transactionID,
		&userID,
		&transactionType,
		&amount,
		&category,
		&description,
		&occurredAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	tt, err := transaction.NewTransactionType(transactionType)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction type: %w", err)
	}

	var updatedAtPtr *time.Time
	if updatedAt.Valid {
		updatedAtPtr = &updatedAt.Time
	}

	return transaction.Restore(
		transactionID,
		userID,
		tt,
		amount,
		category,
		occurredAt,
		description,
		createdAt,
		updatedAtPtr,
	), nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
