package dashboard

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"finance-tracker/internal/domain/analytics"
	"finance-tracker/internal/domain/transaction"
	otelinfra "finance-tracker/internal/infrastructure/observability/otel"
)

// MaxTrendPoints トレンドの最大点数
const MaxTrendPoints = 100

// DashboardApplicationService ダッシュボード集計アプリケーションサービス
type DashboardApplicationService struct {
	transactionRepo transaction.TransactionRepository
	logger          *otelinfra.Logger
}

// NewDashboardApplicationService 新しいDashboardApplicationServiceを作成
func NewDashboardApplicationService(
	transactionRepo transaction.TransactionRepository,
	logger *otelinfra.Logger,
) *DashboardApplicationService {
	return &DashboardApplicationService{
		transactionRepo: transactionRepo,
		logger:          logger,
	}
}

// GetSummary ユーザーのトランザクションを集計する
// 件数制限は適用せず、月とカテゴリの条件に一致するすべてを対象とする
func (s *DashboardApplicationService) GetSummary(ctx context.Context, req *GetSummaryRequest) (*GetSummaryResponse, error) {
	tracer := otel.Tracer("dashboard-service")
	ctx, span := tracer.Start(ctx, "DashboardApplicationService.GetSummary")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.String("month", req.Month),
		attribute.String("category", req.Category),
	)

	trendPoints, err := parseTrendPoints(req.Trend)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	filter, err := transaction.NewListFilter(req.Month, req.Category, "")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	transactions, err := s.transactionRepo.FindByUserID(ctx, req.UserID, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error(ctx, "Failed to list transactions for summary", err, map[string]interface{}{
			"user_id": req.UserID,
		})
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	summary := analytics.Summarize(transactions, trendPoints, transaction.DefaultCategories)

	span.SetAttributes(
		attribute.Int("transaction_count", summary.TransactionCount),
		attribute.Int("trend_points", len(summary.Trend)),
	)

	return &GetSummaryResponse{Summary: summary}, nil
}

// parseTrendPoints トレンド点数を解析する
// 未指定はデフォルト値、最大値を超える場合は最大値に丸める
func parseTrendPoints(s string) (int, error) {
	if s == "" {
		return analytics.DefaultTrendPoints, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, transaction.Invalid("trend must be a non-negative integer")
	}
	if n > MaxTrendPoints {
		n = MaxTrendPoints
	}
	return n, nil
}
