package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"finance-tracker/internal/domain/transaction"
	otelinfra "finance-tracker/internal/infrastructure/observability/otel"
)

// LedgerApplicationService 収支トランザクションのアプリケーションサービス
// すべての操作は認証済みユーザーIDの名前空間に限定される
type LedgerApplicationService struct {
	transactionRepo transaction.TransactionRepository
	logger          *otelinfra.Logger
	metrics         *otelinfra.Metrics
	tracer          trace.Tracer
	now             func() time.Time
	newID           func() string
}

// Option LedgerApplicationServiceのオプション
type Option func(*LedgerApplicationService)

// WithClock 現在時刻の取得関数を差し替える
func WithClock(now func() time.Time) Option {
	return func(s *LedgerApplicationService) {
		s.now = now
	}
}

// WithIDGenerator トランザクションIDの生成関数を差し替える
func WithIDGenerator(newID func() string) Option {
	return func(s *LedgerApplicationService) {
		s.newID = newID
	}
}

// NewLedgerApplicationService 新しいLedgerApplicationServiceを作成
func NewLedgerApplicationService(
	transactionRepo transaction.TransactionRepository,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	opts ...Option,
) *LedgerApplicationService {
	s := &LedgerApplicationService{
		transactionRepo: transactionRepo,
		logger:          logger,
		metrics:         metrics,
		tracer:          otel.Tracer("ledger-service"),
		now:             time.Now,
		newID:           uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListTransactions トランザクション一覧を取得
func (s *LedgerApplicationService) ListTransactions(ctx context.Context, req *ListTransactionsRequest) (*ListTransactionsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "LedgerApplicationService.ListTransactions")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.String("month", req.Month),
		attribute.String("category", req.Category),
		attribute.String("limit", req.Limit),
	)

	filter, err := transaction.NewListFilter(req.Month, req.Category, req.Limit)
	if err != nil {
		recordError(span, err)
		s.logger.Warn(ctx, "Invalid list filter", map[string]interface{}{
			"user_id": req.UserID,
			"error":   err.Error(),
		})
		return nil, err
	}

	transactions, err := s.transactionRepo.FindByUserID(ctx, req.UserID, filter)
	if err != nil {
		recordError(span, err)
		s.logger.Error(ctx, "Failed to list transactions", err, map[string]interface{}{
			"user_id": req.UserID,
		})
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	span.SetAttributes(attribute.Int("result_count", len(transactions)))
	return &ListTransactionsResponse{
		Transactions: transactions,
	}, nil
}

// GetTransaction トランザクションを1件取得
func (s *LedgerApplicationService) GetTransaction(ctx context.Context, req *GetTransactionRequest) (*GetTransactionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "LedgerApplicationService.GetTransaction")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.String("transaction_id", req.TransactionID),
	)

	t, err := s.transactionRepo.FindByID(ctx, req.UserID, req.TransactionID)
	if err != nil {
		recordError(span, err)
		if errors.Is(err, transaction.ErrTransactionNotFound) {
			return nil, err
		}
		s.logger.Error(ctx, "Failed to get transaction", err, map[string]interface{}{
			"user_id":        req.UserID,
			"transaction_id": req.TransactionID,
		})
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return &GetTransactionResponse{Transaction: t}, nil
}

// CreateTransaction トランザクションを作成
// 入力の検証はストアへのアクセスより先に行う
func (s *LedgerApplicationService) CreateTransaction(ctx context.Context, req *CreateTransactionRequest) (*CreateTransactionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "LedgerApplicationService.CreateTransaction")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", req.UserID))

	normalized, err := req.Input.Normalize()
	if err != nil {
		recordError(span, err)
		s.logger.Warn(ctx, "Invalid transaction data", map[string]interface{}{
			"user_id": req.UserID,
			"error":   err.Error(),
		})
		return nil, err
	}

	t, err := transaction.NewTransaction(s.newID(), req.UserID, normalized.Type, normalized.Fields, s.now())
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("transaction_id", t.TransactionID()),
		attribute.String("transaction_type", t.TransactionType().String()),
		attribute.String("category", t.Category()),
	)

	if err := s.transactionRepo.Create(ctx, t); err != nil {
		recordError(span, err)
		s.logger.Error(ctx, "Failed to create transaction", err, map[string]interface{}{
			"user_id":        req.UserID,
			"transaction_id": t.TransactionID(),
		})
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.metrics.RecordTransaction(ctx, "create", t.TransactionType().String())
	s.metrics.RecordTransactionAmount(ctx, t.TransactionType().String(), t.Amount().InexactFloat64())

	s.logger.Info(ctx, "Transaction created", map[string]interface{}{
		"user_id":          req.UserID,
		"transaction_id":   t.TransactionID(),
		"transaction_type": t.TransactionType().String(),
	})

	return &CreateTransactionResponse{
		TransactionID: t.TransactionID(),
		Transaction:   t,
	}, nil
}

// UpdateTransaction トランザクションを更新
// 金額・カテゴリ・取引日・説明を置き換える。タイプは検証のみ行い変更しない
func (s *LedgerApplicationService) UpdateTransaction(ctx context.Context, req *UpdateTransactionRequest) (*UpdateTransactionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "LedgerApplicationService.UpdateTransaction")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.String("transaction_id", req.TransactionID),
	)

	normalized, err := req.Input.Normalize()
	if err != nil {
		recordError(span, err)
		s.logger.Warn(ctx, "Invalid transaction data", map[string]interface{}{
			"user_id":        req.UserID,
			"transaction_id": req.TransactionID,
			"error":          err.Error(),
		})
		return nil, err
	}

	t, err := s.transactionRepo.FindByID(ctx, req.UserID, req.TransactionID)
	if err != nil {
		recordError(span, err)
		if errors.Is(err, transaction.ErrTransactionNotFound) {
			return nil, err
		}
		s.logger.Error(ctx, "Failed to get transaction", err, map[string]interface{}{
			"user_id":        req.UserID,
			"transaction_id": req.TransactionID,
		})
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	if err := t.Update(normalized.Fields, s.now()); err != nil {
		recordError(span, err)
		return nil, err
	}

	if err := s.transactionRepo.Update(ctx, t); err != nil {
		recordError(span, err)
		if errors.Is(err, transaction.ErrTransactionNotFound) {
			return nil, err
		}
		s.logger.Error(ctx, "Failed to update transaction", err, map[string]interface{}{
			"user_id":        req.UserID,
			"transaction_id": req.TransactionID,
		})
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	s.metrics.RecordTransaction(ctx, "update", t.TransactionType().String())
	s.metrics.RecordTransactionAmount(ctx, t.TransactionType().String(), t.Amount().InexactFloat64())

	s.logger.Info(ctx, "Transaction updated", map[string]interface{}{
		"user_id":        req.UserID,
		"transaction_id": req.TransactionID,
	})

	return &UpdateTransactionResponse{
		TransactionID: t.TransactionID(),
		Transaction:   t,
	}, nil
}

// DeleteTransaction トランザクションを削除
func (s *LedgerApplicationService) DeleteTransaction(ctx context.Context, req *DeleteTransactionRequest) (*DeleteTransactionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "LedgerApplicationService.DeleteTransaction")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.String("transaction_id", req.TransactionID),
	)

	if err := s.transactionRepo.Delete(ctx, req.UserID, req.TransactionID); err != nil {
		recordError(span, err)
		if errors.Is(err, transaction.ErrTransactionNotFound) {
			return nil, err
		}
		s.logger.Error(ctx, "Failed to delete transaction", err, map[string]interface{}{
			"user_id":        req.UserID,
			"transaction_id": req.TransactionID,
		})
		return nil, fmt.Errorf("failed to delete transaction: %w", err)
	}

	s.metrics.RecordTransaction(ctx, "delete", "unknown")

	s.logger.Info(ctx, "Transaction deleted", map[string]interface{}{
		"user_id":        req.UserID,
		"transaction_id": req.TransactionID,
	})

	return &DeleteTransactionResponse{TransactionID: req.TransactionID}, nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())
}
