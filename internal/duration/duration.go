// Package duration は符号付きの通算秒数で表す期間と、その日・時・分・秒への分解を提供する。
package duration

import "github.com/rickb777/period"

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
)

// Duration は符号付きの通算秒数を保持する期間。イミュータブル。
type Duration struct {
	totalSeconds int64
}

// New は通算秒数からDurationを生成する。
func New(totalSeconds int64) Duration {
	return Duration{totalSeconds: totalSeconds}
}

// TotalSeconds は符号付きの通算秒数を返す。
func (d Duration) TotalSeconds() int64 {
	return d.totalSeconds
}

// Negate は符号を反転した期間を返す。
func (d Duration) Negate() Duration {
	return Duration{totalSeconds: -d.totalSeconds}
}

// IsNegative は期間が負かを返す。
func (d Duration) IsNegative() bool {
	return d.totalSeconds < 0
}

// Breakdown は期間を日・時・分・秒に分解した結果。
// 符号はNegativeで1度だけ表し、各フィールドは常に0以上。
type Breakdown struct {
	Negative bool
	Days     int64 // 上限なし
	Hours    int64 // 0〜23
	Minutes  int64 // 0〜59
	Seconds  int64 // 0〜59
}

// Decompose は期間を符号と絶対値の日・時・分・秒に分解する。
// 表示側では時・分・秒を2桁ゼロ埋め、日はゼロ埋めなしで出力すること。
func (d Duration) Decompose() Breakdown {
	v := d.totalSeconds
	b := Breakdown{}
	if v < 0 {
		b.Negative = true
		v = -v
	}

	b.Days = v / secondsPerDay
	rem := v % secondsPerDay

	b.Hours = rem / secondsPerHour
	rem %= secondsPerHour

	b.Minutes = rem / secondsPerMinute
	b.Seconds = rem % secondsPerMinute

	return b
}

// ISO8601 はISO 8601形式の期間表記（例: P366D、-P1DT1H1M1S）を返す。
// 0の場合はP0D。
func (d Duration) ISO8601() string {
	if d.totalSeconds == 0 {
		return period.Zero.String()
	}
	b := d.Decompose()
	p := period.New(0, 0, 0, int(b.Days), int(b.Hours), int(b.Minutes), int(b.Seconds))
	if b.Negative {
		p = p.Negate()
	}
	return p.String()
}
