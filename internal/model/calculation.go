// Package model はドメインモデルを定義する。
package model

import (
	"time"

	"github.com/hitoshi/datecalc/internal/calendar"
	"github.com/hitoshi/datecalc/internal/duration"
)

// Calculation は2つの暦日時の差の計算結果を表す。
// TotalSecondsはTo - Fromの通算秒数。
type Calculation struct {
	ID           string
	From         calendar.CivilTimestamp
	To           calendar.CivilTimestamp
	TotalSeconds int64
	CreatedAt    time.Time
}

// Duration は計算結果を期間として返す。
func (c *Calculation) Duration() duration.Duration {
	return duration.New(c.TotalSeconds)
}
