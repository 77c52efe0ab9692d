// Package entry は暦日時の手入力（対話プロンプトと文字列パース）を提供する。
// ここでは数値としてのパースのみを行い、暦としての妥当性は検証しない。
package entry

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hitoshi/datecalc/internal/calendar"
)

// FieldNames は入力を求める順序でのフィールド名。
var FieldNames = [6]string{"year", "month", "day", "hour", "minute", "second"}

// ErrNoInput は入力が途中で終わったことを表す。
var ErrNoInput = errors.New("unexpected end of input")

// ParseError は数値として解釈できないトークンを表す。
type ParseError struct {
	Field string
	Token string
	Err   error
}

// Error はerrorインターフェースを実装する。
func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Token, e.Err)
}

// Unwrap は元のエラーを返す。
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Prompter は対話的に6つの整数を読み取る。
// トークンは空白区切りで、複数行にまたがってもよい。
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewPrompter はinから読み取りoutへプロンプトを出力するPrompterを生成する。
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	s := bufio.NewScanner(in)
	s.Split(bufio.ScanWords)
	return &Prompter{scanner: s, out: out}
}

// ReadTimestamp は年・月・日・時・分・秒の順にプロンプトを出して値を読み取る。
func (p *Prompter) ReadTimestamp() (calendar.CivilTimestamp, error) {
	var values [6]int
	for i, name := range FieldNames {
		fmt.Fprintf(p.out, "Enter %s: ", name)

		if !p.scanner.Scan() {
			if err := p.scanner.Err(); err != nil {
				return calendar.CivilTimestamp{}, fmt.Errorf("failed to read %s: %w", name, err)
			}
			return calendar.CivilTimestamp{}, fmt.Errorf("failed to read %s: %w", name, ErrNoInput)
		}

		v, err := parseInt(name, p.scanner.Text())
		if err != nil {
			return calendar.CivilTimestamp{}, err
		}
		values[i] = v
	}
	return fromValues(values), nil
}

// ParseFields は空白区切りの6つの整数（年 月 日 時 分 秒）をパースする。
func ParseFields(s string) (calendar.CivilTimestamp, error) {
	tokens := strings.Fields(s)
	if len(tokens) != len(FieldNames) {
		return calendar.CivilTimestamp{}, fmt.Errorf("expected %d fields, got %d", len(FieldNames), len(tokens))
	}

	var values [6]int
	for i, tok := range tokens {
		v, err := parseInt(FieldNames[i], tok)
		if err != nil {
			return calendar.CivilTimestamp{}, err
		}
		values[i] = v
	}
	return fromValues(values), nil
}

// ParseISO はYYYY-MM-DDTHH:MM:SS形式をパースする。
// 日付と時刻の区切りは'T'または空白を受け付け、時刻を省略した場合は00:00:00とする。
// 範囲の検証は行わないため、2024-04-35のような値もそのまま返す。
func ParseISO(s string) (calendar.CivilTimestamp, error) {
	s = strings.TrimSpace(s)

	datePart, timePart := s, ""
	if i := strings.IndexAny(s, "T "); i >= 0 {
		datePart, timePart = s[:i], s[i+1:]
	}

	dateFields := strings.Split(datePart, "-")
	if len(dateFields) != 3 {
		return calendar.CivilTimestamp{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", datePart)
	}

	timeFields := []string{"0", "0", "0"}
	if timePart != "" {
		timeFields = strings.Split(timePart, ":")
		if len(timeFields) != 3 {
			return calendar.CivilTimestamp{}, fmt.Errorf("invalid time %q: want HH:MM:SS", timePart)
		}
	}

	var values [6]int
	for i, tok := range append(dateFields, timeFields...) {
		v, err := parseInt(FieldNames[i], tok)
		if err != nil {
			return calendar.CivilTimestamp{}, err
		}
		values[i] = v
	}
	return fromValues(values), nil
}

func parseInt(field, tok string) (int, error) {
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, &ParseError{Field: field, Token: tok, Err: err}
	}
	return v, nil
}

func fromValues(v [6]int) calendar.CivilTimestamp {
	return calendar.New(v[0], v[1], v[2], v[3], v[4], v[5])
}
