package transaction

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

// DateInput 取引日の入力表現（IsoString / EpochSeconds / EpochMillis のいずれか）
type DateInput interface {
	// Resolve 正規化された時刻（UTC）を返す
	Resolve() (time.Time, error)
	isDateInput()
}

// IsoString ISO 8601形式などの日付文字列
type IsoString string

// EpochSeconds `{"_seconds": n, "_nanoseconds": m}` 形式のタイムスタンプ
type EpochSeconds struct {
	Seconds     int64
	Nanoseconds int64
}

// EpochMillis エポックミリ秒の数値（フォールバック）
type EpochMillis int64

func (IsoString) isDateInput()    {}
func (EpochSeconds) isDateInput() {}
func (EpochMillis) isDateInput()  {}

var (
	minDate = time.Date(1000, time.January, 1, 0, 0, 0, 0, time.UTC)
	maxDate = time.Date(9999, time.December, 31, 23, 59, 59, 999999999, time.UTC)
)

// maxEpochSeconds int64変換前の粗い上限（正確な範囲はcheckRangeで判定）
const maxEpochSeconds = 1e12

// isoLayouts 優先的に試すISO系レイアウト
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// genericParser 汎用日付パーサー（タイムゾーン無指定はUTCとみなす）
var genericParser = &now.Config{TimeLocation: time.UTC}

// Resolve 日付文字列を解析する
func (s IsoString) Resolve() (time.Time, error) {
	str := strings.TrimSpace(string(s))
	if str == "" {
		return time.Time{}, Invalid("date is required")
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, str, time.UTC); err == nil {
			return checkRange(t)
		}
	}
	t, err := genericParser.Parse(str)
	if err != nil {
		return time.Time{}, Invalid("date is not a valid date string")
	}
	return checkRange(t)
}

// Resolve 秒とナノ秒から時刻を返す
func (e EpochSeconds) Resolve() (time.Time, error) {
	return checkRange(time.Unix(e.Seconds, e.Nanoseconds))
}

// Resolve エポックミリ秒から時刻を返す
func (m EpochMillis) Resolve() (time.Time, error) {
	return checkRange(time.UnixMilli(int64(m)))
}

// checkRange 保存可能な範囲の時刻かを確認しUTCに揃える
func checkRange(t time.Time) (time.Time, error) {
	t = t.UTC()
	if t.Before(minDate) || t.After(maxDate) {
		return time.Time{}, Invalid("date is out of range")
	}
	return t, nil
}

// ParseDateInput JSON値をDateInputに変換する
func ParseDateInput(raw json.RawMessage) (DateInput, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, Invalid("date is required")
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, Invalid("date is not a valid string")
		}
		if s == "" {
			return nil, Invalid("date is required")
		}
		return IsoString(s), nil
	case '{':
		var ts struct {
			Seconds     *float64 `json:"_seconds"`
			Nanoseconds *float64 `json:"_nanoseconds"`
		}
		if err := json.Unmarshal(raw, &ts); err != nil {
			return nil, Invalid("date is not a valid timestamp object")
		}
		if ts.Seconds == nil || *ts.Seconds == 0 {
			return nil, Invalid("date object must contain _seconds")
		}
		if math.Abs(*ts.Seconds) > maxEpochSeconds {
			return nil, Invalid("date is out of range")
		}
		sec, frac := math.Modf(*ts.Seconds)
		nanos := int64(math.Round(frac * 1e9))
		if ts.Nanoseconds != nil {
			n := *ts.Nanoseconds
			if n < 0 || n >= 1e9 || n != math.Trunc(n) {
				return nil, Invalid("date _nanoseconds must be an integer in [0, 1e9)")
			}
			nanos += int64(n)
		}
		return EpochSeconds{Seconds: int64(sec), Nanoseconds: nanos}, nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var ms float64
		if err := json.Unmarshal(raw, &ms); err != nil {
			return nil, Invalid("date is not a valid number")
		}
		if ms == 0 {
			return nil, Invalid("date is required")
		}
		if math.Abs(ms) > float64(math.MaxInt64) {
			return nil, Invalid("date is out of range")
		}
		return EpochMillis(int64(ms)), nil
	default:
		return nil, Invalid("date has an unsupported shape")
	}
}

// ResolveDate JSON値を解析して正規化済みの時刻を返す
func ResolveDate(raw json.RawMessage) (time.Time, error) {
	in, err := ParseDateInput(raw)
	if err != nil {
		return time.Time{}, err
	}
	return in.Resolve()
}
