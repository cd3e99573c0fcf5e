package memory

import (
	"context"
	"sync"

	"finledger/internal/storage"
)

// Receipts is an in-memory receipt registry. References are opaque strings;
// Remove is idempotent, matching how object-store deletes behave.
type Receipts struct {
	mu   sync.Mutex
	refs map[string]struct{}
}

var _ storage.ReceiptStore = (*Receipts)(nil)

func NewReceipts() *Receipts {
	return &Receipts{refs: make(map[string]struct{})}
}

// Put registers a reference so tests can assert cleanup.
func (r *Receipts) Put(ref string) {
	r.mu.Lock()
	r.refs[ref] = struct{}{}
	r.mu.Unlock()
}

// Has reports whether ref is still registered.
func (r *Receipts) Has(ref string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.refs[ref]
	return ok
}

func (r *Receipts) Remove(_ context.Context, ref string) error {
	r.mu.Lock()
	delete(r.refs, ref)
	r.mu.Unlock()
	return nil
}
