package postgres

import (
	"context"

	"github.com/google/uuid"

	"finledger/internal/ledger"
)

// SeedDev inserts a fresh user row for quick local testing. Accounts, cards
// and categories are then created through the services so balances and
// validation behave exactly as in production.
func (s *Store) SeedDev(ctx context.Context) (ledger.User, error) {
	user := ledger.User{ID: uuid.New()}
	if _, err := s.db.Exec(ctx, `insert into users (id, email) values ($1, null)`, user.ID); err != nil {
		return ledger.User{}, err
	}
	return user, nil
}
