package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"ridepay/internal/domain"
	"ridepay/internal/repository"
)

// defaultHistoryLimit caps transaction history when the caller passes none.
const defaultHistoryLimit = 50

// LedgerService records payment outcomes and serves transaction history.
type LedgerService struct {
	txnRepo repository.TransactionRepository
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(txnRepo repository.TransactionRepository) *LedgerService {
	return &LedgerService{txnRepo: txnRepo}
}

// RecordTransactionRequest contains the parameters for recording a transaction.
type RecordTransactionRequest struct {
	OwnerID          string
	RideID           string
	Amount           float64
	PaymentMethodID  string
	Kind             domain.PaymentKind
	TransactionRef   string
	IdempotencyKey   string
	ProviderResponse json.RawMessage
}

// Record persists a completed transaction. When an idempotency key is
// supplied and a transaction already exists under it, that transaction is
// returned instead of creating a duplicate.
func (s *LedgerService) Record(ctx context.Context, req RecordTransactionRequest) (*domain.Transaction, error) {
	if req.OwnerID == "" {
		return nil, ErrInvalidOwnerID
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidPaymentAmount
	}
	if req.PaymentMethodID == "" {
		return nil, ErrInvalidPaymentMethodID
	}

	if req.IdempotencyKey != "" {
		existing, err := s.txnRepo.GetByIdempotencyKey(ctx, req.OwnerID, req.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		if existing != nil {
			return existing, nil
		}
	}

	txn := &domain.Transaction{
		ID:               uuid.New().String(),
		OwnerID:          req.OwnerID,
		RideID:           req.RideID,
		Amount:           req.Amount,
		Currency:         domain.CurrencyGHS,
		PaymentMethodID:  req.PaymentMethodID,
		Kind:             req.Kind,
		Status:           domain.TransactionStatusCompleted,
		TransactionRef:   req.TransactionRef,
		IdempotencyKey:   req.IdempotencyKey,
		ProviderResponse: req.ProviderResponse,
	}

	if err := s.txnRepo.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return txn, nil
}

// FindByIdempotencyKey returns the owner's transaction recorded under key,
// or nil when none exists.
func (s *LedgerService) FindByIdempotencyKey(ctx context.Context, ownerID, key string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.GetByIdempotencyKey(ctx, ownerID, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return txn, nil
}

// Get retrieves one of the owner's transactions by ID.
func (s *LedgerService) Get(ctx context.Context, ownerID, txnID string) (*domain.Transaction, error) {
	if ownerID == "" {
		return nil, ErrInvalidOwnerID
	}

	txn, err := s.txnRepo.GetByID(ctx, txnID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	// Transactions are private to their owner.
	if txn.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}

	return txn, nil
}

// History returns the owner's most recent transactions, newest-first, each
// joined with its payment method's provider and account details.
func (s *LedgerService) History(ctx context.Context, ownerID string, limit int) ([]*domain.Transaction, error) {
	if ownerID == "" {
		return nil, ErrInvalidOwnerID
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	txns, err := s.txnRepo.ListByOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return txns, nil
}

// KindSummary aggregates transactions of one payment kind.
type KindSummary struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// PaymentAnalytics summarizes an owner's transaction activity.
type PaymentAnalytics struct {
	TotalTransactions int                                `json:"total_transactions"`
	TotalAmount       float64                            `json:"total_amount"`
	ByKind            map[domain.PaymentKind]KindSummary `json:"by_payment_type"`
	Recent            []*domain.Transaction              `json:"-"`
}

// Analytics aggregates all of an owner's transactions: totals, a per-kind
// breakdown, and the ten most recent records.
func (s *LedgerService) Analytics(ctx context.Context, ownerID string) (*PaymentAnalytics, error) {
	if ownerID == "" {
		return nil, ErrInvalidOwnerID
	}

	txns, err := s.txnRepo.ListByOwner(ctx, ownerID, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	analytics := &PaymentAnalytics{
		TotalTransactions: len(txns),
		ByKind:            make(map[domain.PaymentKind]KindSummary),
	}

	for _, txn := range txns {
		analytics.TotalAmount += txn.Amount
		summary := analytics.ByKind[txn.Kind]
		summary.Count++
		summary.Amount += txn.Amount
		analytics.ByKind[txn.Kind] = summary
	}

	recent := txns
	if len(recent) > 10 {
		recent = recent[:10]
	}
	analytics.Recent = recent

	return analytics, nil
}
