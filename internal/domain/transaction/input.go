package transaction

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// TransactionInput 作成・更新リクエストのワイヤ表現
// 各フィールドは型検証のため未解析のJSONのまま保持する
type TransactionInput struct {
	Amount      json.RawMessage `json:"amount"`
	Type        json.RawMessage `json:"type"`
	Category    json.RawMessage `json:"category"`
	Date        json.RawMessage `json:"date"`
	Description json.RawMessage `json:"description,omitempty"`
}

// NormalizedInput 検証・正規化済みの入力
type NormalizedInput struct {
	Type   TransactionType
	Fields Fields
}

// DecodeTransactionInput JSONオブジェクトをTransactionInputに変換する
func DecodeTransactionInput(data []byte) (TransactionInput, error) {
	var in TransactionInput
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return in, Invalid("request body must be a JSON object")
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return in, Invalid("request body is not valid JSON")
	}
	return in, nil
}

// Normalize 入力を検証し、正規化済みの値を返す
// ストアへのアクセス前に呼び出し、失敗した場合はErrInvalidTransactionを返す
func (in TransactionInput) Normalize() (NormalizedInput, error) {
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return NormalizedInput{}, err
	}

	var typeStr string
	if !isJSONString(in.Type) || json.Unmarshal(in.Type, &typeStr) != nil {
		return NormalizedInput{}, Invalid("type must be income or expense")
	}
	transactionType, err := NewTransactionType(typeStr)
	if err != nil {
		return NormalizedInput{}, Invalid("type must be income or expense")
	}

	var category string
	if !isJSONString(in.Category) || json.Unmarshal(in.Category, &category) != nil {
		return NormalizedInput{}, Invalid("category must be a string")
	}

	date, err := ResolveDate(in.Date)
	if err != nil {
		return NormalizedInput{}, err
	}

	var description string
	if len(bytes.TrimSpace(in.Description)) > 0 && !bytes.Equal(bytes.TrimSpace(in.Description), []byte("null")) {
		if !isJSONString(in.Description) || json.Unmarshal(in.Description, &description) != nil {
			return NormalizedInput{}, Invalid("description must be a string")
		}
	}

	fields := Fields{
		Amount:      amount.Abs(),
		Category:    category,
		Date:        date,
		Description: description,
	}
	if err := fields.validate(); err != nil {
		return NormalizedInput{}, err
	}

	return NormalizedInput{Type: transactionType, Fields: fields}, nil
}

// ParseAmount JSON数値を金額に変換する（文字列は受け付けない）
func ParseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, Invalid("amount is required")
	}
	if raw[0] != '-' && (raw[0] < '0' || raw[0] > '9') {
		return decimal.Zero, Invalid("amount must be a number")
	}
	amount, err := decimal.NewFromString(string(raw))
	if err != nil {
		return decimal.Zero, Invalid("amount must be a number")
	}
	if err := validateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

const (
	// MaxAmountIntegerDigits 金額の整数部の最大桁数（DECIMAL(19,4)）
	MaxAmountIntegerDigits = 15
	// MaxAmountScale 金額の小数部の最大桁数
	MaxAmountScale = 4
)

// validateAmount 金額が保存可能な範囲と精度に収まるかを検証する
// 小数部は末尾の0を除いた桁数で判定する
func validateAmount(amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}
	if amount.Exponent() < -64 {
		return Invalid("amount has too many decimal places")
	}
	if amount.NumDigits()+int(amount.Exponent()) > MaxAmountIntegerDigits {
		return Invalid("amount is too large")
	}
	if !amount.Round(MaxAmountScale).Equal(amount) {
		return Invalid("amount has too many decimal places")
	}
	return nil
}

func isJSONString(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '"'
}
