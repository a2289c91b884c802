// Package analytics はダッシュボード表示用の集計を行う純粋関数を提供する。
// いずれの関数も入力スライスを変更せず、同じ入力に対して常に同じ結果を返す。
package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"finance-tracker/internal/domain/transaction"
)

// DefaultTrendPoints トレンドグラフの既定の点数
const DefaultTrendPoints = 7

// TrendPoint トレンドグラフの1点
type TrendPoint struct {
	TransactionID string
	Date          time.Time
	Amount        decimal.Decimal // 絶対値
	Type          transaction.TransactionType
}

// CategoryTotal カテゴリ別の支出合計
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// Summary ダッシュボード用の集計結果
type Summary struct {
	TotalIncome       decimal.Decimal
	TotalExpenses     decimal.Decimal
	Balance           decimal.Decimal
	TransactionCount  int
	IncomeCount       int
	ExpenseCount      int
	Trend             []TrendPoint
	CategoryBreakdown []CategoryTotal
}

// TotalIncome 収入の絶対値の合計を返す
func TotalIncome(transactions []*transaction.Transaction) decimal.Decimal {
	return sumByType(transactions, transaction.TransactionTypeIncome)
}

// TotalExpenses 支出の絶対値の合計を返す
func TotalExpenses(transactions []*transaction.Transaction) decimal.Decimal {
	return sumByType(transactions, transaction.TransactionTypeExpense)
}

// Balance 収入合計から支出合計を引いた残高を返す
func Balance(transactions []*transaction.Transaction) decimal.Decimal {
	return TotalIncome(transactions).Sub(TotalExpenses(transactions))
}

func sumByType(transactions []*transaction.Transaction, tt transaction.TransactionType) decimal.Decimal {
	total := decimal.Zero
	for _, t := range transactions {
		if t.TransactionType() == tt {
			total = total.Add(t.Amount().Abs())
		}
	}
	return total
}

// TrendSeries 取引日の降順に並んだ入力の先頭n件を時系列順（古い順）に並べ替えて返す
// 補間やバケット化は行わない
func TrendSeries(transactions []*transaction.Transaction, n int) []TrendPoint {
	if n <= 0 {
		return []TrendPoint{}
	}
	if n > len(transactions) {
		n = len(transactions)
	}

	points := make([]TrendPoint, n)
	for i := 0; i < n; i++ {
		t := transactions[i]
		points[n-1-i] = TrendPoint{
			TransactionID: t.TransactionID(),
			Date:          t.Date(),
			Amount:        t.Amount().Abs(),
			Type:          t.TransactionType(),
		}
	}
	return points
}

// CategoryBreakdown カテゴリごとの支出合計を、指定カテゴリの順序で返す
// 合計がゼロのカテゴリは含めない
func CategoryBreakdown(transactions []*transaction.Transaction, categories []string) []CategoryTotal {
	totals := make(map[string]decimal.Decimal, len(categories))
	for _, t := range transactions {
		if !t.TransactionType().IsExpense() {
			continue
		}
		totals[t.Category()] = totals[t.Category()].Add(t.Amount().Abs())
	}

	result := make([]CategoryTotal, 0, len(categories))
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		if seen[c] {
			continue
		}
		seen[c] = true
		total := totals[c]
		if total.IsZero() {
			continue
		}
		result = append(result, CategoryTotal{Category: c, Total: total})
	}
	return result
}

// Summarize すべての集計をまとめて返す
func Summarize(transactions []*transaction.Transaction, trendPoints int, categories []string) Summary {
	s := Summary{
		TotalIncome:       TotalIncome(transactions),
		TotalExpenses:     TotalExpenses(transactions),
		TransactionCount:  len(transactions),
		Trend:             TrendSeries(transactions, trendPoints),
		CategoryBreakdown: CategoryBreakdown(transactions, categories),
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpenses)
	for _, t := range transactions {
		if t.TransactionType().IsIncome() {
			s.IncomeCount++
		} else if t.TransactionType().IsExpense() {
			s.ExpenseCount++
		}
	}
	return s
}
