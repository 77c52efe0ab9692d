package handler

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/hitoshi/datecalc/internal/calendar"
	"github.com/hitoshi/datecalc/internal/entry"
)

// timestampJSON はリクエスト中の暦日時。
// {"year":2020,"month":1,...}のオブジェクト形式と"2020-01-01T00:00:00"の文字列形式を受け付ける。
// オブジェクト形式で省略したフィールドは0になる。
type timestampJSON struct {
	calendar.CivilTimestamp
}

type timestampFields struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

// UnmarshalJSON はjson.Unmarshalerを実装する。
func (t *timestampJSON) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		ts, err := entry.ParseISO(s)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		t.CivilTimestamp = ts
		return nil
	}

	var f timestampFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	t.CivilTimestamp = calendar.New(f.Year, f.Month, f.Day, f.Hour, f.Minute, f.Second)
	return nil
}

// timestampResponse はレスポンス中の暦日時。
type timestampResponse struct {
	timestampFields
	ISO string `json:"iso"`
}

func toTimestampResponse(t calendar.CivilTimestamp) timestampResponse {
	return timestampResponse{
		timestampFields: timestampFields{
			Year:   t.Year,
			Month:  t.Month,
			Day:    t.Day,
			Hour:   t.Hour,
			Minute: t.Minute,
			Second: t.Second,
		},
		ISO: t.String(),
	}
}
