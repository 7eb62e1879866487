// Package usecase implements the business logic for symbol-related operations.
package usecase

import (
	"context"

	"pricehistory_backend/internal/feature/symbols/domain/entity"
)

// SymbolRepository abstracts the persistence layer for symbol (stock ticker) data.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SymbolRepository interface {
	ListAll(ctx context.Context) ([]entity.Symbol, error)
	ListActive(ctx context.Context) ([]entity.Symbol, error)
	ListActiveCodes(ctx context.Context) ([]string, error)
	ListChanges(ctx context.Context) ([]entity.SymbolChange, error)
}

// SymbolUsecase provides business logic for symbol operations.
type SymbolUsecase struct {
	repo SymbolRepository
}

// NewSymbolUsecase creates a new SymbolUsecase with the given repository.
func NewSymbolUsecase(r SymbolRepository) *SymbolUsecase {
	return &SymbolUsecase{repo: r}
}

// ListActiveSymbols returns all active symbols from the repository.
func (u *SymbolUsecase) ListActiveSymbols(ctx context.Context) ([]entity.Symbol, error) {
	return u.repo.ListActive(ctx)
}

// ListChanges returns every recorded ticker rename ordered by change date.
func (u *SymbolUsecase) ListChanges(ctx context.Context) ([]entity.SymbolChange, error) {
	return u.repo.ListChanges(ctx)
}
