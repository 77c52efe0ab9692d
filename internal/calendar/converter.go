package calendar

import "github.com/hitoshi/datecalc/internal/duration"

// 単位換算の定数
const (
	SecondsPerMinute = 60
	SecondsPerHour   = 60 * SecondsPerMinute
	SecondsPerDay    = 24 * SecondsPerHour
)

// monthDays は平年の月ごとの日数。インデックス0は未使用。
var monthDays = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// IsLeapYear は先発グレゴリオ暦でyearが閏年かを返す。
// 4で割り切れて100で割り切れない年、または400で割り切れる年が閏年。
func IsLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// DaysInMonth はyear年month月の日数を返す。
// monthが1〜12の範囲外の場合はエラーではなく0を返す。
func DaysInMonth(month, year int) int {
	if month < 1 || month > 12 {
		return 0
	}
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return monthDays[month]
}

// DaysInYear はyear年の日数（365または366）を返す。
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// ToEpochSeconds はtを1年1月1日00:00:00からの通算秒数に変換する。
//
// 1年からt.Year-1年までを1年ずつ加算し、続いて1月からt.Month-1月までを
// t.Yearの月日数で加算し、最後に日・時・分・秒を加える。
// 計算量はt.Yearに比例する。日の範囲はチェックしないため、
// 4月35日のような値も決定的な（暦としては誤った）秒数になる。
func ToEpochSeconds(t CivilTimestamp) int64 {
	var total int64

	for y := 1; y < t.Year; y++ {
		total += int64(DaysInYear(y)) * SecondsPerDay
	}

	for m := 1; m < t.Month; m++ {
		total += int64(DaysInMonth(m, t.Year)) * SecondsPerDay
	}

	total += int64(t.Day-1) * SecondsPerDay
	total += int64(t.Hour)*SecondsPerHour + int64(t.Minute)*SecondsPerMinute + int64(t.Second)

	return total
}

// Difference はa - bを期間として返す。オーバーフローはチェックしない。
func Difference(a, b CivilTimestamp) duration.Duration {
	return duration.New(ToEpochSeconds(a) - ToEpochSeconds(b))
}
