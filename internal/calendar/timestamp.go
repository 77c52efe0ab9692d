// Package calendar は先発グレゴリオ暦に基づく日時計算のコアを提供する。
// 日時（年・月・日・時・分・秒）を1年1月1日00:00:00起点の通算秒数へ変換し、
// 2つの日時の差を符号付きの期間として求める。
// すべての関数は純粋関数であり、外部リソースを持たず並行に呼び出して安全である。
package calendar

import "fmt"

// CivilTimestamp は6つの整数フィールドで表す暦日時。
// 生成後に正規化は行わず、値として扱う（イミュータブル）。
// 日付として妥当な値を渡すのは呼び出し側の責務であり、
// 変換処理は月ごとの日数の範囲をチェックしない。
type CivilTimestamp struct {
	Year   int // 1以上
	Month  int // 1〜12を想定
	Day    int // 1〜31を想定
	Hour   int // 0〜23
	Minute int // 0〜59
	Second int // 0〜59
}

// New はCivilTimestampを生成する。値の検証は行わない。
func New(year, month, day, hour, minute, second int) CivilTimestamp {
	return CivilTimestamp{
		Year:   year,
		Month:  month,
		Day:    day,
		Hour:   hour,
		Minute: minute,
		Second: second,
	}
}

// String はYYYY-MM-DDTHH:MM:SS形式の文字列を返す。
func (t CivilTimestamp) String() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d",
		t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second)
}

// Before はtがuより辞書順（年, 月, 日, 時, 分, 秒）で前にあるかを返す。
func (t CivilTimestamp) Before(u CivilTimestamp) bool {
	a := [6]int{t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second}
	b := [6]int{u.Year, u.Month, u.Day, u.Hour, u.Minute, u.Second}
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// IsZero は全フィールドが0の日時（デフォルト値）かを返す。
func (t CivilTimestamp) IsZero() bool {
	return t == CivilTimestamp{}
}
