// Package presenter REST・gRPCで共通のレスポンス表現
package presenter

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"finance-tracker/internal/domain/analytics"
	"finance-tracker/internal/domain/transaction"
)

// TimeLayout 日時の出力形式
const TimeLayout = time.RFC3339Nano

// Transaction トランザクションのレスポンス表現
// @Description トランザクション
type Transaction struct {
	ID          string      `json:"id" example:"0b8f7c1e-4f5a-4d69-9a43-2b1c5f0b9e11"`
	Amount      json.Number `json:"amount" swaggertype:"number" example:"12.5"`
	Type        string      `json:"type" example:"expense"`
	Category    string      `json:"category" example:"Food"`
	Date        string      `json:"date" example:"2024-01-15T00:00:00Z"`
	Description string      `json:"description" example:"lunch"`
	CreatedAt   string      `json:"createdAt" example:"2024-01-15T12:00:00Z"`
	UpdatedAt   *string     `json:"updatedAt"`
}

// MutationResult 作成・更新・削除のレスポンス
// @Description 書き込み結果
type MutationResult struct {
	Success bool   `json:"success" example:"true"`
	ID      string `json:"id" example:"0b8f7c1e-4f5a-4d69-9a43-2b1c5f0b9e11"`
}

// TrendPoint トレンドの1点
type TrendPoint struct {
	ID     string      `json:"id"`
	Date   string      `json:"date"`
	Amount json.Number `json:"amount" swaggertype:"number"`
	Type   string      `json:"type"`
}

// CategoryTotal カテゴリ別の支出合計
type CategoryTotal struct {
	Category string      `json:"category"`
	Total    json.Number `json:"total" swaggertype:"number"`
}

// Summary ダッシュボード集計のレスポンス表現
// @Description ダッシュボード集計
type Summary struct {
	TotalIncome       json.Number     `json:"totalIncome" swaggertype:"number"`
	TotalExpenses     json.Number     `json:"totalExpenses" swaggertype:"number"`
	Balance           json.Number     `json:"balance" swaggertype:"number"`
	TransactionCount  int             `json:"transactionCount"`
	IncomeCount       int             `json:"incomeCount"`
	ExpenseCount      int             `json:"expenseCount"`
	Trend             []TrendPoint    `json:"trend"`
	CategoryBreakdown []CategoryTotal `json:"categoryBreakdown"`
}

// NewTransaction エンティティをレスポンス表現に変換
func NewTransaction(t *transaction.Transaction) Transaction {
	resp := Transaction{
		ID:          t.TransactionID(),
		Amount:      number(t.Amount()),
		Type:        t.TransactionType().String(),
		Category:    t.Category(),
		Date:        t.Date().UTC().Format(TimeLayout),
		Description: t.Description(),
		CreatedAt:   t.CreatedAt().UTC().Format(TimeLayout),
	}
	if u := t.UpdatedAt(); u != nil {
		s := u.UTC().Format(TimeLayout)
		resp.UpdatedAt = &s
	}
	return resp
}

// NewTransactions エンティティの一覧をレスポンス表現に変換（空の場合も空配列）
func NewTransactions(ts []*transaction.Transaction) []Transaction {
	items := make([]Transaction, len(ts))
	for i, t := range ts {
		items[i] = NewTransaction(t)
	}
	return items
}

// NewSummary 集計結果をレスポンス表現に変換
func NewSummary(s analytics.Summary) Summary {
	trend := make([]TrendPoint, len(s.Trend))
	for i, p := range s.Trend {
		trend[i] = TrendPoint{
			ID:     p.TransactionID,
			Date:   p.Date.UTC().Format(TimeLayout),
			Amount: number(p.Amount),
			Type:   p.Type.String(),
		}
	}
	breakdown := make([]CategoryTotal, len(s.CategoryBreakdown))
	for i, c := range s.CategoryBreakdown {
		breakdown[i] = CategoryTotal{
			Category: c.Category,
			Total:    number(c.Total),
		}
	}
	return Summary{
		TotalIncome:       number(s.TotalIncome),
		TotalExpenses:     number(s.TotalExpenses),
		Balance:           number(s.Balance),
		TransactionCount:  s.TransactionCount,
		IncomeCount:       s.IncomeCount,
		ExpenseCount:      s.ExpenseCount,
		Trend:             trend,
		CategoryBreakdown: breakdown,
	}
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
