// Package clock はホストの現在時刻を暦日時として取得する機能を提供する。
package clock

import (
	"time"

	"github.com/hitoshi/datecalc/internal/calendar"
)

// Clock は現在時刻の取得を抽象化する。テストで時刻を固定するために使う。
type Clock interface {
	Now() time.Time
}

// SystemClock はホストのローカル時刻を返すClock。
type SystemClock struct{}

// Now は現在のローカル時刻を返す。
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock は常に同じ時刻を返すClock。
type FixedClock struct {
	T time.Time
}

// Now は固定時刻を返す。
func (c FixedClock) Now() time.Time {
	return c.T
}

// FromTime はtをtのロケーションにおける暦日時に変換する。
func FromTime(t time.Time) calendar.CivilTimestamp {
	return calendar.New(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// Civil はcの現在時刻をローカル時刻の暦日時として返す。
// 返り値は手入力された日時と同じように扱ってよい。
func Civil(c Clock) calendar.CivilTimestamp {
	return FromTime(c.Now().Local())
}
