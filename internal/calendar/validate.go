package calendar

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidTimestamp はValidateが返すエラーの判定に使う番兵エラー。
var ErrInvalidTimestamp = errors.New("invalid civil timestamp")

// FieldError は1フィールド分の検証エラー。
type FieldError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s=%d (want %d..%d)", e.Field, e.Value, e.Min, e.Max)
}

// ValidationError はCivilTimestampが暦として不正であることを表す。
type ValidationError struct {
	Timestamp CivilTimestamp
	Fields    []FieldError
}

// Error はerrorインターフェースを実装する。
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("%s %s: %s", ErrInvalidTimestamp, e.Timestamp, strings.Join(parts, ", "))
}

// Unwrap はerrors.Isで番兵エラーと比較できるようにする。
func (e *ValidationError) Unwrap() error {
	return ErrInvalidTimestamp
}

// 外部入力として受け付ける年と月の上限。
// ToEpochSecondsは年と月に比例して時間がかかるため、上限を超える値は計算しない。
const (
	MaxYear  = 9999
	MaxMonth = 9999
)

// CheckBounds はtが計算と保存に耐える範囲にあるかを検証する。
// Validateと異なり暦としての妥当性は問わず、4月35日や13月も受け付ける。
// 年と月はMaxYear/MaxMonth以下、すべてのフィールドは32ビット整数に収まる必要がある。
func CheckBounds(t CivilTimestamp) error {
	var fields []FieldError

	check := func(name string, v, hi int) {
		if v < math.MinInt32 || v > hi {
			fields = append(fields, FieldError{Field: name, Value: v, Min: math.MinInt32, Max: hi})
		}
	}

	check("year", t.Year, MaxYear)
	check("month", t.Month, MaxMonth)
	check("day", t.Day, math.MaxInt32)
	check("hour", t.Hour, math.MaxInt32)
	check("minute", t.Minute, math.MaxInt32)
	check("second", t.Second, math.MaxInt32)

	if len(fields) > 0 {
		return &ValidationError{Timestamp: t, Fields: fields}
	}
	return nil
}

// Validate はtが暦として妥当かを検証する任意利用の層。
// ToEpochSeconds自体は検証を行わないため、入力を拒否したい呼び出し側だけが使う。
// 妥当な場合はtをそのまま返す。
func Validate(t CivilTimestamp) (CivilTimestamp, error) {
	var fields []FieldError

	check := func(name string, v, lo, hi int) {
		if v < lo || v > hi {
			fields = append(fields, FieldError{Field: name, Value: v, Min: lo, Max: hi})
		}
	}

	check("year", t.Year, 1, MaxYear)
	check("month", t.Month, 1, 12)

	// 月が不正な場合は日の上限を決められないため31で代用する
	maxDay := DaysInMonth(t.Month, t.Year)
	if maxDay == 0 {
		maxDay = 31
	}
	check("day", t.Day, 1, maxDay)
	check("hour", t.Hour, 0, 23)
	check("minute", t.Minute, 0, 59)
	check("second", t.Second, 0, 59)

	if len(fields) > 0 {
		return CivilTimestamp{}, &ValidationError{Timestamp: t, Fields: fields}
	}
	return t, nil
}
