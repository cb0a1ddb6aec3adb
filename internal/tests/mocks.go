package tests

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"ridepay/internal/domain"
	"ridepay/internal/provider"
	"ridepay/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK PAYMENT METHOD REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentMethodRepository is a mock implementation of PaymentMethodRepository.
type MockPaymentMethodRepository struct {
	mu      sync.RWMutex
	methods map[string]*domain.PaymentMethod

	// Counters for verification
	CreateCallCount        int32
	GetByIDCallCount       int32
	ClearDefaultsCallCount int32
	SetDefaultCallCount    int32

	// Error injection
	CreateError     error
	ListError       error
	SetDefaultError error
}

// NewMockPaymentMethodRepository creates a new mock payment method repository.
func NewMockPaymentMethodRepository() *MockPaymentMethodRepository {
	return &MockPaymentMethodRepository{
		methods: make(map[string]*domain.PaymentMethod),
	}
}

// AddMethod adds a method to the mock repository.
func (m *MockPaymentMethodRepository) AddMethod(method *domain.PaymentMethod) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.methods[method.ID] = method
}

func (m *MockPaymentMethodRepository) Create(ctx context.Context, method *domain.PaymentMethod) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	method.CreatedAt = time.Now()
	m.methods[method.ID] = method
	return nil
}

func (m *MockPaymentMethodRepository) GetByIDForOwner(ctx context.Context, id, ownerID string) (*domain.PaymentMethod, error) {
	atomic.AddInt32(&m.GetByIDCallCount, 1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	method, ok := m.methods[id]
	if !ok || method.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *method
	return &copy, nil
}

func (m *MockPaymentMethodRepository) ListActiveByOwner(ctx context.Context, ownerID string) ([]*domain.PaymentMethod, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.PaymentMethod, 0)
	for _, method := range m.methods {
		if method.OwnerID == ownerID && method.Status == domain.PaymentMethodStatusActive {
			copy := *method
			result = append(result, &copy)
		}
	}
	// Newest-first, matching the postgres ORDER BY.
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].CreatedAt.After(result[i].CreatedAt) {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	return result, nil
}

func (m *MockPaymentMethodRepository) ClearDefaults(ctx context.Context, ownerID string) error {
	atomic.AddInt32(&m.ClearDefaultsCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, method := range m.methods {
		if method.OwnerID == ownerID {
			method.IsDefault = false
		}
	}
	return nil
}

func (m *MockPaymentMethodRepository) SetDefault(ctx context.Context, ownerID, id string) error {
	atomic.AddInt32(&m.SetDefaultCallCount, 1)
	if m.SetDefaultError != nil {
		return m.SetDefaultError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.methods[id]
	if !ok || target.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	// Recompute the flag across the owner's whole set, like the single
	// conditional UPDATE does.
	for _, method := range m.methods {
		if method.OwnerID == ownerID {
			method.IsDefault = method.ID == id
		}
	}
	return nil
}

// GetMethod returns a method for test assertions.
func (m *MockPaymentMethodRepository) GetMethod(id string) *domain.PaymentMethod {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.methods[id]
}

// CountDefaults counts the owner's methods with the default flag set.
func (m *MockPaymentMethodRepository) CountDefaults(ownerID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, method := range m.methods {
		if method.OwnerID == ownerID && method.IsDefault {
			count++
		}
	}
	return count
}

// ──────────────────────────────────────────────
// MOCK TRANSACTION REPOSITORY
// ──────────────────────────────────────────────

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu   sync.RWMutex
	txns []*domain.Transaction

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
	ListError   error
}

// NewMockTransactionRepository creates a new mock transaction repository.
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		txns: make([]*domain.Transaction, 0),
	}
}

// AddTransaction adds a transaction to the mock repository.
func (m *MockTransactionRepository) AddTransaction(txn *domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns = append(m.txns, txn)
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	txn.CreatedAt = time.Now()
	txn.UpdatedAt = txn.CreatedAt
	m.txns = append(m.txns, txn)
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, txn := range m.txns {
		if txn.ID == id {
			copy := *txn
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockTransactionRepository) GetByIdempotencyKey(ctx context.Context, ownerID, key string) (*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, txn := range m.txns {
		if txn.OwnerID == ownerID && txn.IdempotencyKey == key {
			copy := *txn
			return &copy, nil
		}
	}
	return nil, nil // Not found, but not an error for idempotency check
}

func (m *MockTransactionRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*domain.Transaction, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	// Newest-first: reverse insertion order.
	result := make([]*domain.Transaction, 0)
	for i := len(m.txns) - 1; i >= 0; i-- {
		if m.txns[i].OwnerID != ownerID {
			continue
		}
		copy := *m.txns[i]
		result = append(result, &copy)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

// CountTransactions returns the number of stored transactions.
func (m *MockTransactionRepository) CountTransactions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.txns)
}

// ──────────────────────────────────────────────
// MOCK PROVIDER DISPATCHER
// ──────────────────────────────────────────────

// MockDispatcher is a mock implementation of ProviderDispatcher.
type MockDispatcher struct {
	mu sync.Mutex

	// Counters
	ProcessCallCount int32

	// Error injection
	ProcessError error

	// Canned result; a generic success is synthesized when nil.
	Result *provider.Result

	// Last call captured for assertions.
	LastKind     domain.PaymentKind
	LastProvider string
	LastRequest  provider.Request
}

// NewMockDispatcher creates a new mock dispatcher.
func NewMockDispatcher() *MockDispatcher {
	return &MockDispatcher{}
}

func (m *MockDispatcher) Process(ctx context.Context, kind domain.PaymentKind, providerName string, req provider.Request) (*provider.Result, error) {
	atomic.AddInt32(&m.ProcessCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastKind = kind
	m.LastProvider = providerName
	m.LastRequest = req

	if m.ProcessError != nil {
		return nil, m.ProcessError
	}
	if m.Result != nil {
		return m.Result, nil
	}

	body, _ := json.Marshal(map[string]string{
		"transactionId": fmt.Sprintf("mock_%d", time.Now().UnixMilli()),
		"status":        "SUCCESS",
	})
	return &provider.Result{
		Status:       "SUCCESS",
		ProviderTxID: "mock-txn",
		Response:     body,
	}, nil
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStore.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
	}
}

func (m *MockLockStore) AcquireOwnerLock(ctx context.Context, ownerID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "lock:owner-methods:" + ownerID
	if expiry, exists := m.locks[key]; exists {
		if time.Now().Before(expiry) {
			return false, nil // Lock still held.
		}
	}

	m.locks[key] = time.Now().Add(ttl)
	return true, nil
}

func (m *MockLockStore) ReleaseOwnerLock(ctx context.Context, ownerID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, "lock:owner-methods:"+ownerID)
	return nil
}

// IsLocked checks if an owner is locked (for test assertions).
func (m *MockLockStore) IsLocked(ownerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks["lock:owner-methods:"+ownerID]
	return exists && time.Now().Before(expiry)
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockTimeout      = errors.New("mock: operation timeout")
)
