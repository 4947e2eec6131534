package access

import (
	"context"

	"github.com/dropDatabas3/usercards/internal/domain/repository"
)

type storeLookup struct {
	store repository.Store
}

// StoreLookup adapta un repository.Store a Lookup.
func StoreLookup(s repository.Store) Lookup {
	return storeLookup{store: s}
}

func (l storeLookup) EmailByID(ctx context.Context, userID int64) (string, error) {
	return l.store.Users().EmailByID(ctx, userID)
}

func (l storeLookup) OwnerEmail(ctx context.Context, cardID int64) (string, error) {
	return l.store.Cards().OwnerEmail(ctx, cardID)
}
