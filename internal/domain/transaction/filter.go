package transaction

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Month 年月（YYYY-MM）を表す値オブジェクト
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth "YYYY-MM" 形式の文字列をMonthに変換する
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-1", s)
	if err != nil {
		return Month{}, Invalid(fmt.Sprintf("month must be in YYYY-MM format: %q", s))
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// Range 月初（含む）から翌月初（含まない）までの範囲をUTCで返す
func (m Month) Range() (time.Time, time.Time) {
	start := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// Contains 指定時刻が月の範囲内かどうかを返す
func (m Month) Contains(t time.Time) bool {
	start, end := m.Range()
	return !t.Before(start) && t.Before(end)
}

// String 文字列表現を返す
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// ListFilter 一覧取得のフィルタ条件（すべてAND条件）
type ListFilter struct {
	Month    *Month // 任意: 年月で絞り込み
	Category string // 任意: カテゴリ完全一致
	Limit    int    // 任意: 0以下は無制限
}

// NewListFilter クエリパラメータ文字列からListFilterを作成する
func NewListFilter(month, category, limit string) (ListFilter, error) {
	var f ListFilter
	if month != "" {
		m, err := ParseMonth(month)
		if err != nil {
			return ListFilter{}, err
		}
		f.Month = &m
	}
	f.Category = category
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			return ListFilter{}, Invalid("limit must be a positive integer")
		}
		f.Limit = n
	}
	return f, nil
}

// Matches トランザクションがフィルタ条件に一致するかどうかを返す
func (f ListFilter) Matches(t *Transaction) bool {
	if f.Month != nil && !f.Month.Contains(t.Date()) {
		return false
	}
	if f.Category != "" && t.Category() != f.Category {
		return false
	}
	return true
}

// Apply フィルタ・並び替え（取引日の降順）・件数制限をこの順に適用する
func (f ListFilter) Apply(transactions []*Transaction) []*Transaction {
	result := make([]*Transaction, 0, len(transactions))
	for _, t := range transactions {
		if f.Matches(t) {
			result = append(result, t)
		}
	}
	SortByDateDesc(result)
	if f.Limit > 0 && len(result) > f.Limit {
		result = result[:f.Limit]
	}
	return result
}

// SortByDateDesc 取引日の降順に並び替える（同日時は作成日時の降順、次にIDの昇順）
func SortByDateDesc(transactions []*Transaction) {
	sort.SliceStable(transactions, func(i, j int) bool {
		a, b := transactions[i], transactions[j]
		if !a.Date().Equal(b.Date()) {
			return a.Date().After(b.Date())
		}
		if !a.CreatedAt().Equal(b.CreatedAt()) {
			return a.CreatedAt().After(b.CreatedAt())
		}
		return a.TransactionID() < b.TransactionID()
	})
}
