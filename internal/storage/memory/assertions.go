package memory

import (
	"finledger/internal/storage"
)

// Compile-time interface assertions documenting what Store satisfies.
var (
	_ storage.Store   = (*Store)(nil)
	_ storage.TxStore = (*Store)(nil)
)
