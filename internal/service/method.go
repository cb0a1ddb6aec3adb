package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ridepay/internal/domain"
	"ridepay/internal/redis"
	"ridepay/internal/repository"
	"ridepay/internal/repository/postgres"
)

const ownerLockTTL = 5 * time.Second

// MethodService manages an owner's stored payment instruments.
// Invariant: at most one method per owner has the default flag set.
type MethodService struct {
	db         *sql.DB
	methodRepo repository.PaymentMethodRepository
	lockStore  redis.LockStoreInterface
	cacheStore *redis.CacheStore
}

// NewMethodService creates a new MethodService.
func NewMethodService(
	db *sql.DB,
	methodRepo repository.PaymentMethodRepository,
	lockStore redis.LockStoreInterface,
	cacheStore *redis.CacheStore,
) *MethodService {
	return &MethodService{
		db:         db,
		methodRepo: methodRepo,
		lockStore:  lockStore,
		cacheStore: cacheStore,
	}
}

// AddMethodRequest contains the parameters for registering a payment method.
type AddMethodRequest struct {
	OwnerID        string
	Kind           domain.PaymentKind
	Provider       string
	AccountDetails domain.AccountDetails
	IsDefault      bool
}

// Add registers a new active payment method. When IsDefault is set, the
// owner's previous default is cleared in the same database transaction as the
// insert, under a per-owner lock, so no interleaving leaves zero or two
// defaults.
func (s *MethodService) Add(ctx context.Context, req AddMethodRequest) (*domain.PaymentMethod, error) {
	if req.OwnerID == "" {
		return nil, ErrInvalidOwnerID
	}

	switch req.Kind {
	case domain.PaymentKindMobileMoney, domain.PaymentKindCreditCard, domain.PaymentKindBankCard:
	default:
		return nil, ErrUnsupportedPaymentMethodType
	}

	if req.IsDefault && s.lockStore != nil {
		locked, err := s.lockStore.AcquireOwnerLock(ctx, req.OwnerID, ownerLockTTL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		if !locked {
			return nil, ErrDefaultUpdateInProgress
		}
		defer s.lockStore.ReleaseOwnerLock(ctx, req.OwnerID)
	}

	method := &domain.PaymentMethod{
		ID:             uuid.New().String(),
		OwnerID:        req.OwnerID,
		Kind:           req.Kind,
		Provider:       req.Provider,
		AccountDetails: req.AccountDetails,
		IsDefault:      req.IsDefault,
		Status:         domain.PaymentMethodStatusActive,
	}

	if err := s.insert(ctx, method, req.IsDefault); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateMethods(ctx, req.OwnerID)
	}

	return method, nil
}

// insert persists the method, clearing existing defaults first when needed.
func (s *MethodService) insert(ctx context.Context, method *domain.PaymentMethod, clearDefaults bool) error {
	if !clearDefaults || s.db == nil {
		// Mock-backed path (tests) or plain insert.
		if clearDefaults {
			if err := s.methodRepo.ClearDefaults(ctx, method.OwnerID); err != nil {
				return err
			}
		}
		return s.methodRepo.Create(ctx, method)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txMethodRepo := postgres.NewPaymentMethodRepositoryWithTx(tx)

	if err = txMethodRepo.ClearDefaults(ctx, method.OwnerID); err != nil {
		return err
	}
	if err = txMethodRepo.Create(ctx, method); err != nil {
		return err
	}

	return tx.Commit()
}

// List returns all active methods for an owner, newest-first.
func (s *MethodService) List(ctx context.Context, ownerID string) ([]*domain.PaymentMethod, error) {
	if ownerID == "" {
		return nil, ErrInvalidOwnerID
	}

	if s.cacheStore != nil {
		cached, err := s.cacheStore.GetMethods(ctx, ownerID)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	methods, err := s.methodRepo.ListActiveByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if s.cacheStore != nil && len(methods) > 0 {
		_ = s.cacheStore.SetMethods(ctx, ownerID, methods)
	}

	return methods, nil
}

// SetDefault makes the given method the owner's default. The flag is
// recomputed across the owner's whole set in one conditional update.
func (s *MethodService) SetDefault(ctx context.Context, ownerID, methodID string) (*domain.PaymentMethod, error) {
	if ownerID == "" {
		return nil, ErrInvalidOwnerID
	}
	if methodID == "" {
		return nil, ErrInvalidPaymentMethodID
	}

	if s.lockStore != nil {
		locked, err := s.lockStore.AcquireOwnerLock(ctx, ownerID, ownerLockTTL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		if !locked {
			return nil, ErrDefaultUpdateInProgress
		}
		defer s.lockStore.ReleaseOwnerLock(ctx, ownerID)
	}

	method, err := s.methodRepo.GetByIDForOwner(ctx, methodID, ownerID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrPaymentMethodNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := s.methodRepo.SetDefault(ctx, ownerID, methodID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	method.IsDefault = true

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateMethods(ctx, ownerID)
	}

	return method, nil
}
