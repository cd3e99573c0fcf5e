package postgres

import (
	"context"
	"fmt"

	"finledger/internal/storage"
)

// WithinTx runs fn against a transaction-bound Store. The transaction commits
// when fn returns nil and rolls back otherwise, so a mutation sequence that
// fails partway leaves balances untouched.
func (s *Store) WithinTx(ctx context.Context, fn func(storage.Store) error) error {
	if s.pool == nil {
		// Already inside a transaction; reuse it.
		return fn(s)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil { return fmt.Errorf("begin tx: %w", err) }
	defer func() { _ = tx.Rollback(ctx) }()
	if err := fn(&Store{db: tx}); err != nil { return err }
	return tx.Commit(ctx)
}

// Compile-time interface assertions documenting what Store satisfies.
var (
	_ storage.Store   = (*Store)(nil)
	_ storage.TxStore = (*Store)(nil)
)
