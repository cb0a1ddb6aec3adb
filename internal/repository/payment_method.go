package repository

import (
	"context"

	"ridepay/internal/domain"
)

// PaymentMethodRepository defines the persistence operations for payment methods.
type PaymentMethodRepository interface {
	// Create persists a new payment method.
	Create(ctx context.Context, method *domain.PaymentMethod) error

	// GetByIDForOwner retrieves a payment method by ID, scoped to the owner.
	GetByIDForOwner(ctx context.Context, id, ownerID string) (*domain.PaymentMethod, error)

	// ListActiveByOwner retrieves all active methods for an owner, newest-first.
	ListActiveByOwner(ctx context.Context, ownerID string) ([]*domain.PaymentMethod, error)

	// ClearDefaults clears the default flag on every method owned by ownerID.
	ClearDefaults(ctx context.Context, ownerID string) error

	// SetDefault makes the given method the owner's only default in a single
	// conditional update.
	SetDefault(ctx context.Context, ownerID, id string) error
}
