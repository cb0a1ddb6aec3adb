package domain

import (
	"encoding/json"
	"time"
)

// CurrencyGHS is the only currency the platform settles in.
const CurrencyGHS = "GHS"

// TransactionStatus represents the current status of a payment transaction.
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusProcessing TransactionStatus = "processing"
	TransactionStatusCompleted  TransactionStatus = "completed"
	TransactionStatusFailed     TransactionStatus = "failed"
	TransactionStatusCancelled  TransactionStatus = "cancelled"
)

// Transaction records the outcome of a payment attempt against a ride.
// ProviderResponse is the provider payload stored verbatim for audit.
type Transaction struct {
	ID               string
	OwnerID          string
	RideID           string
	Amount           float64
	Currency         string
	PaymentMethodID  string
	Kind             PaymentKind
	Status           TransactionStatus
	TransactionRef   string
	IdempotencyKey   string
	ProviderResponse json.RawMessage
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Joined from the payment method for display; not columns on the
	// transactions table itself.
	MethodProvider string
	MethodDetails  AccountDetails
}
