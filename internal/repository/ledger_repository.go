package repository

import (
	"context"

	"github.com/skilllink/marketplace/internal/domain"
	"github.com/skilllink/marketplace/internal/persistence"
)

// LedgerRepository reads settlement ledger entries. Entries are only
// written by settlement inside Store.Update.
type LedgerRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.LedgerEntry, error)
}

type ledgerRepository struct {
	store *persistence.Store
}

// NewLedgerRepository instantiates repository.
func NewLedgerRepository(store *persistence.Store) LedgerRepository {
	return &ledgerRepository{store: store}
}

func (r *ledgerRepository) ListByUser(ctx context.Context, userID string) ([]domain.LedgerEntry, error) {
	entries, err := r.store.Ledger(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]domain.LedgerEntry, 0)
	for _, e := range entries {
		if e.UserID == userID {
			result = append(result, e)
		}
	}
	return result, nil
}
