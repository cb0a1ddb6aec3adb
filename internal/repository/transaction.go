package repository

import (
	"context"

	"ridepay/internal/domain"
)

// TransactionRepository defines the persistence operations for payment transactions.
type TransactionRepository interface {
	// Create persists a new transaction.
	Create(ctx context.Context, txn *domain.Transaction) error

	// GetByID retrieves a transaction by ID.
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)

	// GetByIdempotencyKey retrieves the owner's transaction recorded under the
	// given idempotency key. Returns nil if none exists.
	GetByIdempotencyKey(ctx context.Context, ownerID, key string) (*domain.Transaction, error)

	// ListByOwner retrieves the owner's most recent transactions, newest-first,
	// each joined with its payment method's provider and account details.
	// limit <= 0 means no limit.
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*domain.Transaction, error)
}
