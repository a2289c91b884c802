package transaction

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finance-tracker/internal/domain/identity"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-\.\@]{1,255}$`)

const (
	// MaxCategoryLength カテゴリ名の最大長
	MaxCategoryLength = 255
	// MaxDescriptionLength 説明の最大バイト数
	MaxDescriptionLength = 65535
)

// timePrecision 保存する時刻の精度（DATETIME(6)と同じマイクロ秒）
const timePrecision = time.Microsecond

func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(timePrecision)
}

// Transaction 収入・支出トランザクションエンティティ
type Transaction struct {
	transactionID   string
	userID          string
	transactionType TransactionType
	amount          decimal.Decimal // 常に非負の絶対値。符号はtransactionTypeから導出する
	category        string
	date            time.Time // 取引日（UTC）
	description     string
	createdAt       time.Time
	updatedAt       *time.Time
}

// NewTransaction 新しいTransactionエンティティを作成
func NewTransaction(
	transactionID string,
	userID string,
	transactionType TransactionType,
	fields Fields,
	now time.Time,
) (*Transaction, error) {
	if !idRegex.MatchString(transactionID) {
		return nil, Invalid("invalid transaction id")
	}
	if !identity.ValidUserID(userID) {
		return nil, Invalid("invalid user id")
	}
	if !transactionType.Valid() {
		return nil, Invalid("type must be income or expense")
	}
	if err := fields.validate(); err != nil {
		return nil, err
	}

	return &Transaction{
		transactionID:   transactionID,
		userID:          userID,
		transactionType: transactionType,
		amount:          fields.Amount.Abs(),
		category:        fields.Category,
		date:            normalizeTime(fields.Date),
		description:     fields.Description,
		createdAt:       normalizeTime(now),
	}, nil
}

// Restore 永続化層から読み出した値でTransactionを復元する（検証は行わない）
func Restore(
	transactionID string,
	userID string,
	transactionType TransactionType,
	amount decimal.Decimal,
	category string,
	date time.Time,
	description string,
	createdAt time.Time,
	updatedAt *time.Time,
) *Transaction {
	var updated *time.Time
	if updatedAt != nil {
		u := updatedAt.UTC()
		updated = &u
	}
	return &Transaction{
		transactionID:   transactionID,
		userID:          userID,
		transactionType: transactionType,
		amount:          amount,
		category:        category,
		date:            date.UTC(),
		description:     description,
		createdAt:       createdAt.UTC(),
		updatedAt:       updated,
	}
}

// TransactionID トランザクションIDを返す
func (t *Transaction) TransactionID() string {
	return t.transactionID
}

// UserID ユーザーIDを返す
func (t *Transaction) UserID() string {
	return t.userID
}

// TransactionType トランザクションタイプを返す
func (t *Transaction) TransactionType() TransactionType {
	return t.transactionType
}

// Amount 金額（絶対値）を返す
func (t *Transaction) Amount() decimal.Decimal {
	return t.amount
}

// SignedAmount 符号付き金額を返す（支出は負）
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.transactionType.IsExpense() {
		return t.amount.Abs().Neg()
	}
	return t.amount.Abs()
}

// Category カテゴリを返す
func (t *Transaction) Category() string {
	return t.category
}

// Date 取引日を返す
func (t *Transaction) Date() time.Time {
	return t.date
}

// Description 説明を返す
func (t *Transaction) Description() string {
	return t.description
}

// CreatedAt 作成日時を返す
func (t *Transaction) CreatedAt() time.Time {
	return t.createdAt
}

// UpdatedAt 更新日時を返す（未更新の場合はnil）
func (t *Transaction) UpdatedAt() *time.Time {
	return t.updatedAt
}

// Update 金額・カテゴリ・取引日・説明を置き換え、更新日時を再設定する
// IDと作成日時、タイプは変更しない
func (t *Transaction) Update(fields Fields, now time.Time) error {
	if err := fields.validate(); err != nil {
		return err
	}
	t.amount = fields.Amount.Abs()
	t.category = fields.Category
	t.date = normalizeTime(fields.Date)
	t.description = fields.Description
	updated := normalizeTime(now)
	t.updatedAt = &updated
	return nil
}

// Clone ディープコピーを返す
func (t *Transaction) Clone() *Transaction {
	return Restore(
		t.transactionID,
		t.userID,
		t.transactionType,
		t.amount,
		t.category,
		t.date,
		t.description,
		t.createdAt,
		t.updatedAt,
	)
}

// Fields 書き込み時に置き換え可能な正規化済みフィールド
type Fields struct {
	Amount      decimal.Decimal
	Category    string
	Date        time.Time
	Description string
}

// validate 正規化済みフィールドの不変条件を検証
func (f Fields) validate() error {
	if strings.TrimSpace(f.Category) == "" {
		return Invalid("category must be a non-empty string")
	}
	if len(f.Category) > MaxCategoryLength {
		return Invalid("category is too long")
	}
	if len(f.Description) > MaxDescriptionLength {
		return Invalid("description is too long")
	}
	if f.Date.IsZero() {
		return Invalid("date is required")
	}
	if err := validateAmount(f.Amount); err != nil {
		return err
	}
	return nil
}

// MustNewTransaction テスト用ヘルパー: NewTransactionを呼び出し、エラーが発生した場合はpanicする
func MustNewTransaction(
	transactionID string,
	userID string,
	transactionType TransactionType,
	fields Fields,
	now time.Time,
) *Transaction {
	tx, err := NewTransaction(transactionID, userID, transactionType, fields, now)
	if err != nil {
		panic(err)
	}
	return tx
}
