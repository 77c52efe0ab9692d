// Package cleanup は計算履歴の自動削除ジョブを提供する。
// 保持期間（デフォルト30日）を超過した計算履歴を定期バッチで削除する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/datecalc/internal/metrics"
)

// Deleter は保持期間を超過した計算履歴の削除を抽象化するインターフェース。
// repository.CalculationRepository が満たす。
type Deleter interface {
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}

// CleanupJob は保持期間を超過した計算履歴の自動削除ジョブ。
// 削除処理は冪等で、対象がなくてもエラーにならない。
type CleanupJob struct {
	repo          Deleter
	logger        *slog.Logger
	metrics       metrics.MetricsCollector
	RetentionDays int // 計算履歴の保持日数（デフォルト: 30）
}

// NewCleanupJob は新しいCleanupJobを生成する。
// mcがnilの場合はメトリクスを記録しない。
func NewCleanupJob(repo Deleter, logger *slog.Logger, mc metrics.MetricsCollector) *CleanupJob {
	if mc == nil {
		mc = metrics.NopCollector{}
	}
	return &CleanupJob{
		repo:          repo,
		logger:        logger,
		metrics:       mc,
		RetentionDays: 30,
	}
}

// Run は保持期間を超過した計算履歴を1回削除する。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	deletedCount, err := j.repo.DeleteOlderThan(ctx, j.RetentionDays)
	if err != nil {
		j.logger.Error("計算履歴クリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.RetentionDays),
		)
		return fmt.Errorf("計算履歴クリーンアップの実行に失敗: %w", err)
	}

	j.metrics.RecordHistoryDeleted(deletedCount)

	elapsed := time.Since(start)
	j.logger.Info("計算履歴クリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Int("retention_days", j.RetentionDays),
		slog.Float64("duration_ms", float64(elapsed.Milliseconds())),
	)

	return nil
}

// DefaultInterval はStartに0以下の間隔が渡されたときに使う実行間隔。
const DefaultInterval = 24 * time.Hour

// Start は起動直後に1回Runを実行し、以降interval毎に繰り返す。
// ctxがキャンセルされるまでブロックする。Runのエラーはログに記録して継続する。
// intervalが0以下の場合はDefaultIntervalを使う。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		j.logger.Warn("invalid cleanup interval, using default",
			slog.Duration("interval", interval),
			slog.Duration("default", DefaultInterval),
		)
		interval = DefaultInterval
	}

	if err := j.Run(ctx); err != nil && ctx.Err() == nil {
		j.logger.Warn("cleanup job failed, will retry next interval")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil && ctx.Err() == nil {
				j.logger.Warn("cleanup job failed, will retry next interval")
			}
		}
	}
}
