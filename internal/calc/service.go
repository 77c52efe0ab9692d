// Package calc は暦日時の変換と差分計算のユースケースを提供する。
// 通算秒への変換結果をメモ化し、計算履歴が有効な場合は差分計算を永続化する。
package calc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/hitoshi/datecalc/internal/calendar"
	"github.com/hitoshi/datecalc/internal/clock"
	"github.com/hitoshi/datecalc/internal/metrics"
	"github.com/hitoshi/datecalc/internal/model"
	"github.com/hitoshi/datecalc/internal/repository"
)

// 履歴一覧の件数制限
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// Config はServiceの動作設定。
type Config struct {
	// StrictValidation がtrueの場合、暦として不正な日時をINVALID_TIMESTAMPで拒否する。
	StrictValidation bool
	// CacheTTL は通算秒のメモ化の有効期間。0以下の場合はメモ化しない。
	CacheTTL time.Duration
}

// Service は変換・差分計算のサービス層。
type Service struct {
	repo    repository.CalculationRepository // nilの場合は履歴を保存しない
	clock   clock.Clock
	metrics metrics.MetricsCollector
	memo    *cache.Cache
	strict  bool
}

// NewService はServiceの新しいインスタンスを生成する。
// repoにnilを渡すと計算履歴は無効になる。mcがnilの場合はメトリクスを記録しない。
func NewService(
	repo repository.CalculationRepository,
	clk clock.Clock,
	mc metrics.MetricsCollector,
	cfg Config,
) *Service {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	if mc == nil {
		mc = metrics.NopCollector{}
	}
	s := &Service{
		repo:    repo,
		clock:   clk,
		metrics: mc,
		strict:  cfg.StrictValidation,
	}
	if cfg.CacheTTL > 0 {
		s.memo = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return s
}

// HistoryEnabled は計算履歴が有効かを返す。
func (s *Service) HistoryEnabled() bool {
	return s.repo != nil
}

// Now はサービスのClockから現在の暦日時を返す。
func (s *Service) Now() calendar.CivilTimestamp {
	return clock.Civil(s.clock)
}

// Epoch はtの通算秒（0001-01-01T00:00:00からの秒数）を返す。
func (s *Service) Epoch(ctx context.Context, t calendar.CivilTimestamp) (int64, error) {
	if err := s.check(t); err != nil {
		return 0, err
	}
	return s.epochSeconds(t), nil
}

// Difference はto - fromを計算し、計算結果を返す。
// 計算履歴が有効な場合は結果を永続化する。
func (s *Service) Difference(ctx context.Context, from, to calendar.CivilTimestamp) (*model.Calculation, error) {
	if err := s.check(from); err != nil {
		return nil, err
	}
	if err := s.check(to); err != nil {
		return nil, err
	}

	start := time.Now()
	total := s.epochSeconds(to) - s.epochSeconds(from)
	s.metrics.RecordCalculationLatency(time.Since(start))
	s.metrics.RecordDifference(total < 0)

	calc := &model.Calculation{
		ID:           uuid.New().String(),
		From:         from,
		To:           to,
		TotalSeconds: total,
		CreatedAt:    s.clock.Now().UTC(),
	}

	if s.repo != nil {
		if err := s.repo.Create(ctx, calc); err != nil {
			return nil, fmt.Errorf("計算履歴の保存に失敗しました: %w", err)
		}
		s.metrics.RecordHistorySaved()
	}

	slog.DebugContext(ctx, "difference calculated",
		slog.String("calculation_id", calc.ID),
		slog.String("from", from.String()),
		slog.String("to", to.String()),
		slog.Int64("total_seconds", total),
	)

	return calc, nil
}

// SinceNow は現在時刻 - tを計算する。
func (s *Service) SinceNow(ctx context.Context, t calendar.CivilTimestamp) (*model.Calculation, error) {
	return s.Difference(ctx, t, s.Now())
}

// History は計算履歴を新しい順に返す。
// limitが1未満の場合はDefaultHistoryLimit、MaxHistoryLimitを超える場合はMaxHistoryLimitを使う。
func (s *Service) History(ctx context.Context, limit int) ([]*model.Calculation, error) {
	if s.repo == nil {
		return nil, model.NewHistoryDisabledError()
	}
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	calcs, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("計算履歴一覧の取得に失敗しました: %w", err)
	}
	return calcs, nil
}

// Calculation は指定IDの計算履歴を返す。
func (s *Service) Calculation(ctx context.Context, id string) (*model.Calculation, error) {
	if s.repo == nil {
		return nil, model.NewHistoryDisabledError()
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.NewCalculationNotFoundError(id)
	}

	calc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("計算履歴の取得に失敗しました: %w", err)
	}
	if calc == nil {
		return nil, model.NewCalculationNotFoundError(id)
	}
	return calc, nil
}

// check はtを検証し、不正ならINVALID_TIMESTAMPを返す。
// 計算可能な範囲（calendar.CheckBounds）は常に検証し、
// 厳格モードの場合は暦としての妥当性（calendar.Validate）も検証する。
func (s *Service) check(t calendar.CivilTimestamp) error {
	err := calendar.CheckBounds(t)
	if err == nil && s.strict {
		_, err = calendar.Validate(t)
	}
	if err == nil {
		return nil
	}

	s.metrics.RecordValidationFailure()

	var verr *calendar.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("日時の検証に失敗しました: %w", err)
	}
	fields := make([]string, len(verr.Fields))
	for i, f := range verr.Fields {
		fields[i] = f.String()
	}
	return model.NewInvalidTimestampError(t.String(), fields)
}

// epochSeconds はToEpochSecondsと同じ値を返す。
// 年と月のループ部分（その月の1日00:00:00の通算秒）だけをメモ化するため、
// メモの件数はMaxYear×12件で頭打ちになる。範囲外の月や1年より前の年はループが
// 短いためメモ化しない。
func (s *Service) epochSeconds(t calendar.CivilTimestamp) int64 {
	// 1年1月は年と月のループを通らないため、日・時・分・秒の寄与だけが残る
	rest := calendar.ToEpochSeconds(calendar.New(1, 1, t.Day, t.Hour, t.Minute, t.Second))

	if s.memo == nil || !memoizable(t) {
		s.metrics.RecordConversion(false)
		return s.monthStart(t) + rest
	}

	key := memoKey(t)
	if v, ok := s.memo.Get(key); ok {
		s.metrics.RecordConversion(true)
		return v.(int64) + rest
	}

	start := s.monthStart(t)
	s.memo.Set(key, start, cache.DefaultExpiration)
	s.metrics.RecordConversion(false)
	return start + rest
}

// monthStart はtの年月の1日00:00:00の通算秒を返す。
func (s *Service) monthStart(t calendar.CivilTimestamp) int64 {
	return calendar.ToEpochSeconds(calendar.New(t.Year, t.Month, 1, 0, 0, 0))
}

func memoizable(t calendar.CivilTimestamp) bool {
	return t.Year >= 1 && t.Year <= calendar.MaxYear && t.Month >= 1 && t.Month <= 12
}

// memoKey は年月ごとのメモのキーを返す。
func memoKey(t calendar.CivilTimestamp) string {
	return fmt.Sprintf("%d-%d", t.Year, t.Month)
}
