// Package adapters はsymbolsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"

	"pricehistory_backend/internal/feature/symbols/domain/entity"
	"pricehistory_backend/internal/feature/symbols/usecase"

	"gorm.io/gorm"
)

// symbolGorm はSymbolRepositoryインターフェースのGORM実装です。
type symbolGorm struct {
	db *gorm.DB
}

var _ usecase.SymbolRepository = (*symbolGorm)(nil)

// NewSymbolRepository は指定されたDB接続でsymbolGormリポジトリの新しいインスタンスを生成します。
func NewSymbolRepository(db *gorm.DB) *symbolGorm {
	return &symbolGorm{db: db}
}

// ListAll は非アクティブなものを含むすべての銘柄をコード順に返します。
// カバレッジ集計では上場廃止・改名済みの銘柄も対象になるため、こちらを使います。
func (r *symbolGorm) ListAll(ctx context.Context) ([]entity.Symbol, error) {
	var symbols []entity.Symbol
	if err := r.db.WithContext(ctx).
		Order("code ASC").
		Find(&symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

// ListActive はコード順にすべてのアクティブな銘柄を返します。
func (r *symbolGorm) ListActive(ctx context.Context) ([]entity.Symbol, error) {
	var symbols []entity.Symbol
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("code ASC").
		Find(&symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

// ListActiveCodes はコード順にアクティブな銘柄のコードのみを返します。
func (r *symbolGorm) ListActiveCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&entity.Symbol{}).
		Where("is_active = ?", true).
		Order("code ASC").
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// ListChanges は銘柄変更履歴を変更日の昇順で返します。
func (r *symbolGorm) ListChanges(ctx context.Context) ([]entity.SymbolChange, error) {
	var changes []entity.SymbolChange
	if err := r.db.WithContext(ctx).
		Order("change_date ASC").
		Order("id ASC").
		Find(&changes).Error; err != nil {
		return nil, err
	}
	return changes, nil
}
