package shared

import "context"

// TransactionManager runs a unit of work atomically. Repository calls made
// with the callback's context join the same database transaction, so a
// payment and the entry it settles are written together or not at all.
type TransactionManager interface {
	// WithinTransaction executes fn inside a transaction. Returning an error
	// rolls back; returning nil commits.
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
