package lifecycle

import "errors"

// Error yang dikembalikan engine ke pemanggil. Semuanya hasil yang memang
// diharapkan (bukan bug), dikembalikan sinkron dan tidak pernah di-retry
// otomatis karena operasi lifecycle tidak idempoten.
var (
	ErrTableNotFound  = errors.New("table not found")
	ErrSessionExists  = errors.New("table already has an active session")
	ErrNoSession      = errors.New("no active session on this table")
	ErrUnpaidOrders   = errors.New("table still has unsettled orders")
	ErrTableOccupied  = errors.New("target table is occupied")
	ErrInvalidRequest = errors.New("invalid request")
)
