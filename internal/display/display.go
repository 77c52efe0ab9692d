// Package display は暦日時と期間のコンソール表示を提供する。
package display

import (
	"fmt"
	"io"

	"github.com/hitoshi/datecalc/internal/calendar"
	"github.com/hitoshi/datecalc/internal/duration"
)

// Separator はデモ出力の区切り線。
const Separator = "----------------------"

// Date は"Date: MM/DD/YYYY"形式の行を返す。
func Date(t calendar.CivilTimestamp) string {
	return fmt.Sprintf("Date: %02d/%02d/%d", t.Month, t.Day, t.Year)
}

// Time は"Time: HH:MM:SS"形式の行を返す。
func Time(t calendar.CivilTimestamp) string {
	return fmt.Sprintf("Time: %02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// ISO はYYYY-MM-DDTHH:MM:SS形式の文字列を返す。
func ISO(t calendar.CivilTimestamp) string {
	return t.String()
}

// Magnitude は期間の絶対値を"N days, HH hours, MM minutes, SS seconds"形式で返す。
// 時・分・秒は2桁ゼロ埋め、日はゼロ埋めしない。
func Magnitude(b duration.Breakdown) string {
	return fmt.Sprintf("%d days, %02d hours, %02d minutes, %02d seconds",
		b.Days, b.Hours, b.Minutes, b.Seconds)
}

// Duration は期間の表示行を返す。
// 負の場合は"Duration: -"を1行目に出し、2行目に絶対値を出す。
func Duration(d duration.Duration) string {
	b := d.Decompose()
	line := "Duration: " + Magnitude(b)
	if b.Negative {
		return "Duration: -\n" + line
	}
	return line
}

// Signed は期間を1行で"-N days, ..."のように符号付きで返す。
func Signed(d duration.Duration) string {
	b := d.Decompose()
	if b.Negative {
		return "-" + Magnitude(b)
	}
	return Magnitude(b)
}

// Writer は表示行をio.Writerへ出力する。
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter はWriterを生成する。
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Line は1行を出力する。
func (p *Writer) Line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, s)
}

// Timestamp は日付行と時刻行を出力する。
func (p *Writer) Timestamp(t calendar.CivilTimestamp) {
	p.Line(Date(t))
	p.Line(Time(t))
}

// Duration は期間を出力する。
func (p *Writer) Duration(d duration.Duration) {
	p.Line(Duration(d))
}

// Separator は区切り線を出力する。
func (p *Writer) Separator() {
	p.Line(Separator)
}

// Err は最初に発生した書き込みエラーを返す。
func (p *Writer) Err() error {
	return p.err
}
