package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"go.opentelemetry.io/otel/trace/noop"

	ledgerapp "finance-tracker/internal/application/ledger"
	"finance-tracker/internal/domain/transaction"
	otelinfra "finance-tracker/internal/infrastructure/observability/otel"
	restmiddleware "finance-tracker/internal/presentation/rest/middleware"
)

// MockTransactionRepository モックトランザクションリポジトリ
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, userID, transactionID string) (*transaction.Transaction, error) {
	args := m.Called(ctx, userID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByUserID(ctx context.Context, userID string, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Update(ctx context.Context, t *transaction.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, userID, transactionID string) error {
	args := m.Called(ctx, userID, transactionID)
	return args.Error(0)
}

// MockHealthChecker モックヘルスチェッカー
type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var testNow = time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)

func newTestLogger() *otelinfra.Logger {
	return otelinfra.NewLogger(noop.NewTracerProvider().Tracer("test"))
}

func newTestLedgerService(repo transaction.TransactionRepository) *ledgerapp.LedgerApplicationService {
	metrics, _ := otelinfra.NewMetrics("test")
	return ledgerapp.NewLedgerApplicationService(repo, newTestLogger(), metrics,
		ledgerapp.WithClock(func() time.Time { return testNow }),
		ledgerapp.WithIDGenerator(func() string { return "txn-new" }),
	)
}

// withUser 認証済みユーザーを設定するテスト用ミドルウェア
func withUser(userID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if userID != "" {
				c.Set(restmiddleware.UserIDKey, userID)
			}
			return next(c)
		}
	}
}
