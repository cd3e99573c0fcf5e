package engine

import (
	"sync"

	"github.com/google/uuid"
)

// ownerLocks serializes engine mutations per owner. The store transaction
// already makes each operation atomic; this lock additionally orders
// concurrent operations on the same owner's records so two edits can never
// interleave their reverse/reapply steps.
type ownerLocks struct {
	mu sync.Mutex
	m  map[uuid.UUID]*sync.Mutex
}

// lock acquires the owner's mutex and returns its release func.
func (l *ownerLocks) lock(ownerID uuid.UUID) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[uuid.UUID]*sync.Mutex)
	}
	om, ok := l.m[ownerID]
	if !ok {
		om = &sync.Mutex{}
		l.m[ownerID] = om
	}
	l.mu.Unlock()
	om.Lock()
	return om.Unlock
}
