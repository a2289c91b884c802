package handler

import (
	"context"

	dashboardapp "finance-tracker/internal/application/dashboard"
	ledgerapp "finance-tracker/internal/application/ledger"
	"finance-tracker/internal/domain/identity"
	"finance-tracker/internal/presentation/grpc/interceptor"
	"finance-tracker/internal/presentation/presenter"

	"google.golang.org/protobuf/types/known/structpb"
)

// TransactionHandler gRPCトランザクションサービスハンドラー
type TransactionHandler struct {
	ledgerService    *ledgerapp.LedgerApplicationService
	dashboardService *dashboardapp.DashboardApplicationService
}

var _ TransactionServiceServer = (*TransactionHandler)(nil)

// NewTransactionHandler 新しいTransactionHandlerを作成
func NewTransactionHandler(
	ledgerService *ledgerapp.LedgerApplicationService,
	dashboardService *dashboardapp.DashboardApplicationService,
) *TransactionHandler {
	return &TransactionHandler{
		ledgerService:    ledgerService,
		dashboardService: dashboardService,
	}
}

// ListTransactions トランザクション一覧取得
func (h *TransactionHandler) ListTransactions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, handleError(err)
	}

	resp, err := h.ledgerService.ListTransactions(ctx, &ledgerapp.ListTransactionsRequest{
		UserID:   userID,
		Month:    stringField(req, "month"),
		Category: stringField(req, "category"),
		Limit:    stringField(req, "limit"),
	})
	if err != nil {
		return nil, handleError(err)
	}

	return respond(map[string]interface{}{
		"transactions": presenter.NewTransactions(resp.Transactions),
	})
}

// GetTransaction トランザクション取得
func (h *TransactionHandler) GetTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, handleError(err)
	}

	resp, err := h.ledgerService.GetTransaction(ctx, &ledgerapp.GetTransactionRequest{
		UserID:        userID,
		TransactionID: stringField(req, "id"),
	})
	if err != nil {
		return nil, handleError(err)
	}

	return respond(presenter.NewTransaction(resp.Transaction))
}

// CreateTransaction トランザクション作成
func (h *TransactionHandler) CreateTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, handleError(err)
	}

	input, err := transactionInput(req)
	if err != nil {
		return nil, handleError(err)
	}

	resp, err := h.ledgerService.CreateTransaction(ctx, &ledgerapp.CreateTransactionRequest{
		UserID: userID,
		Input:  input,
	})
	if err != nil {
		return nil, handleError(err)
	}

	return respond(presenter.MutationResult{Success: true, ID: resp.TransactionID})
}

// UpdateTransaction トランザクション更新
func (h *TransactionHandler) UpdateTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, handleError(err)
	}

	input, err := transactionInput(req)
	if err != nil {
		return nil, handleError(err)
	}

	resp, err := h.ledgerService.UpdateTransaction(ctx, &ledgerapp.UpdateTransactionRequest{
		UserID:        userID,
		TransactionID: stringField(req, "id"),
		Input:         input,
	})
	if err != nil {
		return nil, handleError(err)
	}

	return respond(presenter.MutationResult{Success: true, ID: resp.TransactionID})
}

// DeleteTransaction トランザクション削除
func (h *TransactionHandler) DeleteTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, handleError(err)
	}

	resp, err := h.ledgerService.DeleteTransaction(ctx, &ledgerapp.DeleteTransactionRequest{
		UserID:        userID,
		TransactionID: stringField(req, "id"),
	})
	if err != nil {
		return nil, handleError(err)
	}

	return respond(presenter.MutationResult{Success: true, ID: resp.TransactionID})
}

// GetSummary 収支サマリー取得
func (h *TransactionHandler) GetSummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, handleError(err)
	}

	resp, err := h.dashboardService.GetSummary(ctx, &dashboardapp.GetSummaryRequest{
		UserID:   userID,
		Month:    stringField(req, "month"),
		Category: stringField(req, "category"),
		Trend:    stringField(req, "trend"),
	})
	if err != nil {
		return nil, handleError(err)
	}

	return respond(presenter.NewSummary(resp.Summary))
}

func currentUserID(ctx context.Context) (string, error) {
	userID, ok := interceptor.UserIDFromContext(ctx)
	if !ok {
		return "", identity.ErrUnauthorized
	}
	return userID, nil
}

func respond(v interface{}) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		return nil, handleError(err)
	}
	return out, nil
}
