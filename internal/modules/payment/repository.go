package payment

import "context"

// Repository defines data access for terminal transactions.
type Repository interface {
	Migrate(ctx context.Context) error
	// Create commits a new record in its own unit of work. A second record
	// with the same (tid, transaction id) fails with ErrDuplicateTransaction.
	Create(ctx context.Context, t *Transaction) error
	Get(ctx context.Context, tid, transactionID string) (*Transaction, error)
	ListByTerminal(ctx context.Context, terminalID string) ([]*Transaction, error)
	// Apply loads the record by (tid, transaction id), lets fn mutate it and
	// commits, all in one unit of work. Nothing is written when fn fails.
	Apply(ctx context.Context, tid, transactionID string, fn func(t *Transaction) error) (*Transaction, error)
}
