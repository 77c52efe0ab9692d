// Package database は計算履歴ストア（calculationsテーブル）への接続と
// スキーマ管理を提供する。
package database

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// calculationsスキーマのマイグレーション。バイナリに埋め込まれる。
//
//go:embed migrations/*.sql
var calculationsSchema embed.FS

// ErrSchemaAhead はDBに適用済みのスキーマが、このバイナリの知る最新版より新しいことを示す。
var ErrSchemaAhead = errors.New("calculations schema is newer than this binary")

func schemaSource() (source.Driver, error) {
	src, err := iofs.New(calculationsSchema, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open embedded calculations schema: %w", err)
	}
	return src, nil
}

// LatestVersion は埋め込まれたcalculationsスキーマの最新バージョン番号を返す。
// DBには接続しない。
func LatestVersion() (uint, error) {
	src, err := schemaSource()
	if err != nil {
		return 0, err
	}
	defer src.Close()

	v, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("no calculations migrations embedded: %w", err)
	}
	for {
		next, err := src.Next(v)
		if errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		if err != nil {
			return 0, fmt.Errorf("walk calculations migrations after %d: %w", v, err)
		}
		v = next
	}
}

// NewMigrator はcalculationsスキーマを対象とするmigrateインスタンスを返す。
// up/downの手動操作やテストで使う。呼び出し側がCloseすること。
func NewMigrator(databaseURL string) (*migrate.Migrate, error) {
	src, err := schemaSource()
	if err != nil {
		return nil, err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect migrator to history store: %w", err)
	}
	return m, nil
}

// RunMigrations はcalculationsテーブルと保持期間クリーンアップ用インデックスを
// 最新版まで作成し、適用後のスキーマバージョンを返す。
// 適用済みなら何もしない。dirtyな状態やDB側が新しい場合はエラー。
func RunMigrations(databaseURL string) (uint, error) {
	latest, err := LatestVersion()
	if err != nil {
		return 0, err
	}

	m, err := NewMigrator(databaseURL)
	if err != nil {
		return 0, err
	}
	defer m.Close()

	current, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("read calculations schema version: %w", err)
	}
	if current > latest {
		return current, fmt.Errorf("%w: db=%d binary=%d", ErrSchemaAhead, current, latest)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("apply calculations schema: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read calculations schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("calculations schema is dirty at version %d", version)
	}
	return version, nil
}
