package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"ridepay/internal/domain"
	"ridepay/internal/repository"
)

// PaymentMethodRepository is a PostgreSQL implementation of repository.PaymentMethodRepository.
type PaymentMethodRepository struct {
	q Querier
}

// NewPaymentMethodRepository creates a new PostgreSQL payment method repository.
func NewPaymentMethodRepository(db *sql.DB) *PaymentMethodRepository {
	return &PaymentMethodRepository{q: db}
}

// NewPaymentMethodRepositoryWithTx creates a payment method repository using a transaction.
func NewPaymentMethodRepositoryWithTx(tx *sql.Tx) *PaymentMethodRepository {
	return &PaymentMethodRepository{q: tx}
}

// Create persists a new payment method.
func (r *PaymentMethodRepository) Create(ctx context.Context, method *domain.PaymentMethod) error {
	details, err := json.Marshal(method.AccountDetails)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO payment_methods (id, user_id, type, provider, account_details, is_default, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	return r.q.QueryRowContext(ctx, query,
		method.ID,
		method.OwnerID,
		method.Kind,
		method.Provider,
		details,
		method.IsDefault,
		method.Status,
	).Scan(&method.CreatedAt, &method.UpdatedAt)
}

// GetByIDForOwner retrieves a payment method by ID, scoped to the owner.
func (r *PaymentMethodRepository) GetByIDForOwner(ctx context.Context, id, ownerID string) (*domain.PaymentMethod, error) {
	query := `
		SELECT id, user_id, type, provider, account_details, is_default, status, created_at, updated_at
		FROM payment_methods WHERE id = $1 AND user_id = $2
	`

	return r.scanMethod(r.q.QueryRowContext(ctx, query, id, ownerID))
}

// ListActiveByOwner retrieves all active methods for an owner, newest-first.
func (r *PaymentMethodRepository) ListActiveByOwner(ctx context.Context, ownerID string) ([]*domain.PaymentMethod, error) {
	query := `
		SELECT id, user_id, type, provider, account_details, is_default, status, created_at, updated_at
		FROM payment_methods
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, ownerID, domain.PaymentMethodStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var methods []*domain.PaymentMethod
	for rows.Next() {
		method, err := r.scanMethodRow(rows)
		if err != nil {
			return nil, err
		}
		methods = append(methods, method)
	}
	return methods, rows.Err()
}

// ClearDefaults clears the default flag on every method owned by ownerID.
func (r *PaymentMethodRepository) ClearDefaults(ctx context.Context, ownerID string) error {
	query := `UPDATE payment_methods SET is_default = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_default`

	_, err := r.q.ExecContext(ctx, query, ownerID)
	return err
}

// SetDefault makes the given method the owner's only default. The flag is
// recomputed for the whole owner set in one conditional update, so no
// intermediate state with zero or two defaults is observable.
func (r *PaymentMethodRepository) SetDefault(ctx context.Context, ownerID, id string) error {
	query := `UPDATE payment_methods SET is_default = (id = $2), updated_at = NOW() WHERE user_id = $1`

	result, err := r.q.ExecContext(ctx, query, ownerID, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PaymentMethodRepository) scanMethod(row *sql.Row) (*domain.PaymentMethod, error) {
	method, err := r.scanMethodRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return method, nil
}

func (r *PaymentMethodRepository) scanMethodRow(row rowScanner) (*domain.PaymentMethod, error) {
	var method domain.PaymentMethod
	var details []byte

	err := row.Scan(
		&method.ID,
		&method.OwnerID,
		&method.Kind,
		&method.Provider,
		&details,
		&method.IsDefault,
		&method.Status,
		&method.CreatedAt,
		&method.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(details) > 0 {
		if err := json.Unmarshal(details, &method.AccountDetails); err != nil {
			return nil, err
		}
	}

	return &method, nil
}
