package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/datecalc/internal/model"
)

const calculationColumns = `id,
	from_year, from_month, from_day, from_hour, from_minute, from_second,
	to_year, to_month, to_day, to_hour, to_minute, to_second,
	total_seconds, created_at`

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// PostgresCalculationRepo はPostgreSQLを使用した計算履歴リポジトリ。
type PostgresCalculationRepo struct {
	db *sql.DB
}

// NewPostgresCalculationRepo はPostgresCalculationRepoを生成する。
func NewPostgresCalculationRepo(db *sql.DB) *PostgresCalculationRepo {
	return &PostgresCalculationRepo{db: db}
}

// Create は計算履歴を作成する。
func (r *PostgresCalculationRepo) Create(ctx context.Context, calc *model.Calculation) error {
	f, t := calc.From, calc.To
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO calculations (`+calculationColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		calc.ID,
		f.Year, f.Month, f.Day, f.Hour, f.Minute, f.Second,
		t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second,
		calc.TotalSeconds, calc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert calculation: %w", err)
	}
	return nil
}

// FindByID は指定IDの計算履歴を取得する。見つからない場合はnilを返す。
func (r *PostgresCalculationRepo) FindByID(ctx context.Context, id string) (*model.Calculation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+calculationColumns+` FROM calculations WHERE id = $1`,
		id,
	)
	calc, err := scanCalculation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find calculation by ID: %w", err)
	}
	return calc, nil
}

// ListRecent は計算履歴をcreated_at降順で最大limit件返す。
func (r *PostgresCalculationRepo) ListRecent(ctx context.Context, limit int) ([]*model.Calculation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+calculationColumns+` FROM calculations
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list calculations: %w", err)
	}
	defer rows.Close()

	var calcs []*model.Calculation
	for rows.Next() {
		calc, err := scanCalculation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calculation: %w", err)
		}
		calcs = append(calcs, calc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate calculations: %w", err)
	}
	return calcs, nil
}

// DeleteOlderThan はdays日より前に作成された計算履歴を削除し、削除件数を返す。
// 削除対象がない場合は0を返す。
func (r *PostgresCalculationRepo) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	interval := fmt.Sprintf("%d days", days)
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM calculations WHERE created_at < now() - $1::interval`,
		interval,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old calculations: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func scanCalculation(s rowScanner) (*model.Calculation, error) {
	calc := &model.Calculation{}
	f, t := &calc.From, &calc.To
	err := s.Scan(
		&calc.ID,
		&f.Year, &f.Month, &f.Day, &f.Hour, &f.Minute, &f.Second,
		&t.Year, &t.Month, &t.Day, &t.Hour, &t.Minute, &t.Second,
		&calc.TotalSeconds, &calc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return calc, nil
}

// compile-time interface check
var _ CalculationRepository = (*PostgresCalculationRepo)(nil)
