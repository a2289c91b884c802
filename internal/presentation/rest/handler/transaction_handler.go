package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	ledgerapp "finance-tracker/internal/application/ledger"
	"finance-tracker/internal/domain/identity"
	"finance-tracker/internal/domain/transaction"
	"finance-tracker/internal/presentation/presenter"
	restmiddleware "finance-tracker/internal/presentation/rest/middleware"
)

// TransactionHandler トランザクション関連ハンドラー
type TransactionHandler struct {
	ledgerService *ledgerapp.LedgerApplicationService
}

// NewTransactionHandler 新しいTransactionHandlerを作成
func NewTransactionHandler(ledgerService *ledgerapp.LedgerApplicationService) *TransactionHandler {
	return &TransactionHandler{
		ledgerService: ledgerService,
	}
}

// ListTransactions トランザクション一覧取得ハンドラー
// @Summary トランザクション一覧を取得
// @Description 自分のトランザクションを取引日の降順で取得します
// @Tags transactions
// @Produce json
// @Security Bearer
// @Param month query string false "年月（YYYY-MM）" example(2024-01)
// @Param category query string false "カテゴリ（完全一致）" example(Food)
// @Param limit query int false "最大件数" example(10)
// @Success 200 {array} presenter.Transaction "一覧取得成功"
// @Failure 400 {object} restmiddleware.ErrorResponse "不正なクエリ"
// @Failure 401 {object} restmiddleware.ErrorResponse "認証エラー"
// @Router /transactions [get]
func (h *TransactionHandler) ListTransactions(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	resp, err := h.ledgerService.ListTransactions(c.Request().Context(), &ledgerapp.ListTransactionsRequest{
		UserID:   userID,
		Month:    c.QueryParam("month"),
		Category: c.QueryParam("category"),
		Limit:    c.QueryParam("limit"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, presenter.NewTransactions(resp.Transactions))
}

// GetTransaction トランザクション取得ハンドラー
// @Summary トランザクションを取得
// @Tags transactions
// @Produce json
// @Security Bearer
// @Param id path string true "トランザクションID"
// @Success 200 {object} presenter.Transaction "取得成功"
// @Failure 401 {object} restmiddleware.ErrorResponse "認証エラー"
// @Failure 404 {object} restmiddleware.ErrorResponse "存在しない"
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	resp, err := h.ledgerService.GetTransaction(c.Request().Context(), &ledgerapp.GetTransactionRequest{
		UserID:        userID,
		TransactionID: c.Param("id"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, presenter.NewTransaction(resp.Transaction))
}

// CreateTransaction トランザクション作成ハンドラー
// @Summary トランザクションを作成
// @Description amountは数値、dateはISO文字列・{_seconds,_nanoseconds}・エポックミリ秒を受け付けます
// @Tags transactions
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body TransactionRequest true "トランザクション"
// @Success 201 {object} presenter.MutationResult "作成成功"
// @Failure 400 {object} restmiddleware.ErrorResponse "不正なリクエスト"
// @Failure 401 {object} restmiddleware.ErrorResponse "認証エラー"
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	input, err := bindTransactionInput(c)
	if err != nil {
		return err
	}

	resp, err := h.ledgerService.CreateTransaction(c.Request().Context(), &ledgerapp.CreateTransactionRequest{
		UserID: userID,
		Input:  input,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, presenter.MutationResult{
		Success: true,
		ID:      resp.TransactionID,
	})
}

// UpdateTransaction トランザクション更新ハンドラー
// @Summary トランザクションを更新
// @Description 金額・カテゴリ・取引日・説明を置き換えます。typeは検証されますが変更されません
// @Tags transactions
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "トランザクションID"
// @Param request body TransactionRequest true "トランザクション"
// @Success 200 {object} presenter.MutationResult "更新成功"
// @Failure 400 {object} restmiddleware.ErrorResponse "不正なリクエスト"
// @Failure 401 {object} restmiddleware.ErrorResponse "認証エラー"
// @Failure 404 {object} restmiddleware.ErrorResponse "存在しない"
// @Router /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	input, err := bindTransactionInput(c)
	if err != nil {
		return err
	}

	resp, err := h.ledgerService.UpdateTransaction(c.Request().Context(), &ledgerapp.UpdateTransactionRequest{
		UserID:        userID,
		TransactionID: c.Param("id"),
		Input:         input,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, presenter.MutationResult{
		Success: true,
		ID:      resp.TransactionID,
	})
}

// DeleteTransaction トランザクション削除ハンドラー
// @Summary トランザクションを削除
// @Tags transactions
// @Produce json
// @Security Bearer
// @Param id path string true "トランザクションID"
// @Success 200 {object} presenter.MutationResult "削除成功"
// @Failure 401 {object} restmiddleware.ErrorResponse "認証エラー"
// @Failure 404 {object} restmiddleware.ErrorResponse "存在しない"
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	resp, err := h.ledgerService.DeleteTransaction(c.Request().Context(), &ledgerapp.DeleteTransactionRequest{
		UserID:        userID,
		TransactionID: c.Param("id"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, presenter.MutationResult{
		Success: true,
		ID:      resp.TransactionID,
	})
}

// bindTransactionInput リクエストボディをTransactionInputに変換
func bindTransactionInput(c echo.Context) (transaction.TransactionInput, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return transaction.TransactionInput{}, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return transaction.DecodeTransactionInput(body)
}

// currentUserID 認証ミドルウェアが設定したユーザーIDを取得
func currentUserID(c echo.Context) (string, error) {
	userID, ok := c.Get(restmiddleware.UserIDKey).(string)
	if !ok || userID == "" {
		return "", identity.ErrUnauthorized
	}
	return userID, nil
}
