package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"ridepay/internal/domain"
	"ridepay/internal/repository"
)

// TransactionRepository is a PostgreSQL implementation of repository.TransactionRepository.
type TransactionRepository struct {
	q Querier
}

// NewTransactionRepository creates a new PostgreSQL transaction repository.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{q: db}
}

// NewTransactionRepositoryWithTx creates a transaction repository using a transaction.
func NewTransactionRepositoryWithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Create persists a new transaction.
func (r *TransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	query := `
		INSERT INTO payment_transactions
			(id, user_id, ride_id, amount, currency, payment_method_id, payment_type, status,
			 transaction_ref, idempotency_key, provider_response)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11)
		RETURNING created_at, updated_at
	`

	var response []byte
	if len(txn.ProviderResponse) > 0 {
		response = txn.ProviderResponse
	}

	return r.q.QueryRowContext(ctx, query,
		txn.ID,
		txn.OwnerID,
		txn.RideID,
		txn.Amount,
		txn.Currency,
		txn.PaymentMethodID,
		txn.Kind,
		txn.Status,
		txn.TransactionRef,
		txn.IdempotencyKey,
		response,
	).Scan(&txn.CreatedAt, &txn.UpdatedAt)
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := selectTransaction + ` WHERE t.id = $1`

	txn, err := r.scanTransaction(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return txn, nil
}

// GetByIdempotencyKey retrieves the owner's transaction recorded under the
// given idempotency key. Returns nil if none exists.
func (r *TransactionRepository) GetByIdempotencyKey(ctx context.Context, ownerID, key string) (*domain.Transaction, error) {
	query := selectTransaction + ` WHERE t.user_id = $1 AND t.idempotency_key = $2`

	txn, err := r.scanTransaction(r.q.QueryRowContext(ctx, query, ownerID, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return txn, nil
}

// ListByOwner retrieves the owner's most recent transactions, newest-first.
// limit <= 0 means no limit.
func (r *TransactionRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*domain.Transaction, error) {
	query := selectTransaction + ` WHERE t.user_id = $1 ORDER BY t.created_at DESC`
	args := []any{ownerID}

	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*domain.Transaction
	for rows.Next() {
		txn, err := r.scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

// selectTransaction joins each transaction with its payment method so history
// rows carry the provider and account details for display.
const selectTransaction = `
	SELECT t.id, t.user_id, COALESCE(t.ride_id, ''), t.amount, t.currency,
	       t.payment_method_id, t.payment_type, t.status, t.transaction_ref,
	       COALESCE(t.idempotency_key, ''), t.provider_response,
	       t.created_at, t.updated_at,
	       m.provider, m.account_details
	FROM payment_transactions t
	JOIN payment_methods m ON m.id = t.payment_method_id
`

func (r *TransactionRepository) scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var txn domain.Transaction
	var response []byte
	var details []byte

	err := row.Scan(
		&txn.ID,
		&txn.OwnerID,
		&txn.RideID,
		&txn.Amount,
		&txn.Currency,
		&txn.PaymentMethodID,
		&txn.Kind,
		&txn.Status,
		&txn.TransactionRef,
		&txn.IdempotencyKey,
		&response,
		&txn.CreatedAt,
		&txn.UpdatedAt,
		&txn.MethodProvider,
		&details,
	)
	if err != nil {
		return nil, err
	}

	if len(response) > 0 {
		txn.ProviderResponse = json.RawMessage(response)
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &txn.MethodDetails); err != nil {
			return nil, err
		}
	}

	return &txn, nil
}
