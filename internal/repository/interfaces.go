// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/datecalc/internal/model"
)

// CalculationRepository は計算履歴の永続化インターフェース。
type CalculationRepository interface {
	// Create は計算履歴を作成する。
	Create(ctx context.Context, calc *model.Calculation) error

	// FindByID は指定IDの計算履歴を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Calculation, error)

	// ListRecent は計算履歴をcreated_at降順で最大limit件返す。
	ListRecent(ctx context.Context, limit int) ([]*model.Calculation, error)

	// DeleteOlderThan はdays日より前に作成された計算履歴を削除し、削除件数を返す。
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}
