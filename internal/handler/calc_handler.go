package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/datecalc/internal/calendar"
	"github.com/hitoshi/datecalc/internal/display"
	"github.com/hitoshi/datecalc/internal/middleware"
	"github.com/hitoshi/datecalc/internal/model"
)

// CalcServiceInterface は計算ハンドラーが必要とするサービスインターフェース。
type CalcServiceInterface interface {
	// Epoch はtの通算秒を返す。
	Epoch(ctx context.Context, t calendar.CivilTimestamp) (int64, error)
	// Difference はto - fromを計算する。
	Difference(ctx context.Context, from, to calendar.CivilTimestamp) (*model.Calculation, error)
	// SinceNow は現在時刻 - tを計算する。
	SinceNow(ctx context.Context, t calendar.CivilTimestamp) (*model.Calculation, error)
	// Now は現在の暦日時を返す。
	Now() calendar.CivilTimestamp
	// History は計算履歴を新しい順に返す。
	History(ctx context.Context, limit int) ([]*model.Calculation, error)
	// Calculation は指定IDの計算履歴を返す。
	Calculation(ctx context.Context, id string) (*model.Calculation, error)
}

// CalcHandler は暦日時計算のHTTPハンドラー。
type CalcHandler struct {
	service CalcServiceInterface
}

// NewCalcHandler はCalcHandlerを生成する。
func NewCalcHandler(service CalcServiceInterface) *CalcHandler {
	return &CalcHandler{service: service}
}

// epochRequest は通算秒変換リクエストのボディ。
type epochRequest struct {
	Timestamp *timestampJSON `json:"timestamp"`
}

// epochResponse は通算秒変換のAPIレスポンス。
type epochResponse struct {
	Timestamp    timestampResponse `json:"timestamp"`
	EpochSeconds int64             `json:"epoch_seconds"`
}

// differenceRequest は差分計算リクエストのボディ。
type differenceRequest struct {
	From *timestampJSON `json:"from"`
	To   *timestampJSON `json:"to"`
}

// calculationResponse は差分計算結果のAPIレスポンス。
type calculationResponse struct {
	ID           string            `json:"id"`
	From         timestampResponse `json:"from"`
	To           timestampResponse `json:"to"`
	TotalSeconds int64             `json:"total_seconds"`
	Negative     bool              `json:"negative"`
	Days         int64             `json:"days"`
	Hours        int64             `json:"hours"`
	Minutes      int64             `json:"minutes"`
	Seconds      int64             `json:"seconds"`
	ISO8601      string            `json:"iso8601"`
	Display      string            `json:"display"`
	CreatedAt    time.Time         `json:"created_at"`
}

// historyResponse は計算履歴一覧のAPIレスポンス。
type historyResponse struct {
	Calculations []calculationResponse `json:"calculations"`
}

// calendarResponse は月情報のAPIレスポンス。
type calendarResponse struct {
	Year       int  `json:"year"`
	Month      int  `json:"month"`
	LeapYear   bool `json:"leap_year"`
	Days       int  `json:"days"`
	DaysInYear int  `json:"days_in_year"`
}

// Epoch は暦日時を通算秒に変換する。
// POST /api/epoch
func (h *CalcHandler) Epoch(w http.ResponseWriter, r *http.Request) {
	var req epochRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.Timestamp == nil {
		writeBadRequest(w, "timestampが指定されていません")
		return
	}

	secs, err := h.service.Epoch(r.Context(), req.Timestamp.CivilTimestamp)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, epochResponse{
		Timestamp:    toTimestampResponse(req.Timestamp.CivilTimestamp),
		EpochSeconds: secs,
	})
}

// Difference は2つの暦日時の差（to - from）を計算する。
// POST /api/difference
func (h *CalcHandler) Difference(w http.ResponseWriter, r *http.Request) {
	var req differenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.From == nil || req.To == nil {
		writeBadRequest(w, "fromとtoの両方を指定してください")
		return
	}

	calc, err := h.service.Difference(r.Context(), req.From.CivilTimestamp, req.To.CivilTimestamp)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, toCalculationResponse(calc))
}

// Since は現在時刻からの差（now - timestamp）を計算する。
// POST /api/since
func (h *CalcHandler) Since(w http.ResponseWriter, r *http.Request) {
	var req epochRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.Timestamp == nil {
		writeBadRequest(w, "timestampが指定されていません")
		return
	}

	calc, err := h.service.SinceNow(r.Context(), req.Timestamp.CivilTimestamp)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, toCalculationResponse(calc))
}

// Now は現在の暦日時を返す。
// GET /api/now
func (h *CalcHandler) Now(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, toTimestampResponse(h.service.Now()))
}

// Calendar は指定年月の日数とうるう年判定を返す。
// 範囲外の月に対してはdaysが0になる。
// GET /api/calendar/{year}/{month}
func (h *CalcHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeBadRequest(w, "yearは整数で指定してください")
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		writeBadRequest(w, "monthは整数で指定してください")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, calendarResponse{
		Year:       year,
		Month:      month,
		LeapYear:   calendar.IsLeapYear(year),
		Days:       calendar.DaysInMonth(month, year),
		DaysInYear: calendar.DaysInYear(year),
	})
}

// History は計算履歴一覧を返す。
// GET /api/history?limit=N
func (h *CalcHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeBadRequest(w, "limitは1以上の整数で指定してください")
			return
		}
		limit = n
	}

	calcs, err := h.service.History(r.Context(), limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := historyResponse{Calculations: make([]calculationResponse, len(calcs))}
	for i, c := range calcs {
		resp.Calculations[i] = toCalculationResponse(c)
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}

// GetCalculation は指定IDの計算履歴を返す。
// GET /api/history/{id}
func (h *CalcHandler) GetCalculation(w http.ResponseWriter, r *http.Request) {
	calc, err := h.service.Calculation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toCalculationResponse(calc))
}

// --- ヘルパー関数 ---

// toCalculationResponse はmodel.CalculationからAPIレスポンスに変換する。
func toCalculationResponse(c *model.Calculation) calculationResponse {
	d := c.Duration()
	b := d.Decompose()
	return calculationResponse{
		ID:           c.ID,
		From:         toTimestampResponse(c.From),
		To:           toTimestampResponse(c.To),
		TotalSeconds: c.TotalSeconds,
		Negative:     b.Negative,
		Days:         b.Days,
		Hours:        b.Hours,
		Minutes:      b.Minutes,
		Seconds:      b.Seconds,
		ISO8601:      d.ISO8601(),
		Display:      display.Signed(d),
		CreatedAt:    c.CreatedAt,
	}
}
