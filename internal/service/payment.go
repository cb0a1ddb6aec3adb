package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ridepay/internal/domain"
	"ridepay/internal/provider"
	"ridepay/internal/repository"
)

// ProviderDispatcher routes a normalized charge to the adapter matching a
// payment method's (kind, provider) pair.
type ProviderDispatcher interface {
	Process(ctx context.Context, kind domain.PaymentKind, providerName string, req provider.Request) (*provider.Result, error)
}

// PaymentService orchestrates ride payments: method lookup, provider
// dispatch, ledger write.
type PaymentService struct {
	methodRepo repository.PaymentMethodRepository
	ledger     *LedgerService
	dispatcher ProviderDispatcher
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	methodRepo repository.PaymentMethodRepository,
	ledger *LedgerService,
	dispatcher ProviderDispatcher,
) *PaymentService {
	return &PaymentService{
		methodRepo: methodRepo,
		ledger:     ledger,
		dispatcher: dispatcher,
	}
}

// ProcessRidePaymentRequest contains the parameters for charging a ride.
type ProcessRidePaymentRequest struct {
	RideID          string
	OwnerID         string
	Amount          float64
	PaymentMethodID string

	// TransactionRef is the correlation reference; generated when empty.
	TransactionRef string

	// IdempotencyKey deduplicates repeated submissions. Without one, every
	// call produces a distinct transaction.
	IdempotencyKey string
}

// Failure codes carried on payment results.
const (
	CodePaymentMethodNotFound    = "PAYMENT_METHOD_NOT_FOUND"
	CodeUnsupportedPaymentMethod = "UNSUPPORTED_PAYMENT_METHOD"
	CodeUnsupportedProvider      = "UNSUPPORTED_PROVIDER"
	CodeIncompletePaymentMethod  = "INCOMPLETE_PAYMENT_METHOD"
	CodeProviderError            = "PROVIDER_ERROR"
	CodeStorageError             = "STORAGE_ERROR"
	CodeInvalidRequest           = "INVALID_REQUEST"
	CodePaymentFailed            = "PAYMENT_FAILED"
)

// ProcessRidePaymentResult is the user-facing outcome of a payment attempt.
// Failures are normalized here; nothing propagates to the caller as a panic
// or raw error.
type ProcessRidePaymentResult struct {
	Success     bool
	Transaction *domain.Transaction
	ErrorCode   string
	Error       string
}

// ProcessRidePayment charges a ride against one of the owner's stored
// payment methods and records the outcome in the ledger.
func (s *PaymentService) ProcessRidePayment(ctx context.Context, req ProcessRidePaymentRequest) *ProcessRidePaymentResult {
	txn, err := s.process(ctx, req)
	if err != nil {
		return &ProcessRidePaymentResult{
			Success:   false,
			ErrorCode: failureCode(err),
			Error:     failureMessage(err),
		}
	}

	return &ProcessRidePaymentResult{Success: true, Transaction: txn}
}

func (s *PaymentService) process(ctx context.Context, req ProcessRidePaymentRequest) (*domain.Transaction, error) {
	if req.OwnerID == "" {
		return nil, ErrInvalidOwnerID
	}
	if req.RideID == "" {
		return nil, ErrInvalidRideID
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidPaymentAmount
	}
	if req.PaymentMethodID == "" {
		return nil, ErrInvalidPaymentMethodID
	}

	// A repeated submission with the same key returns the original
	// transaction without touching the provider again.
	if req.IdempotencyKey != "" {
		existing, err := s.ledger.FindByIdempotencyKey(ctx, req.OwnerID, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	method, err := s.methodRepo.GetByIDForOwner(ctx, req.PaymentMethodID, req.OwnerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaymentMethodNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	ref := req.TransactionRef
	if ref == "" {
		ref = fmt.Sprintf("RIDE_%s_%d", req.RideID, time.Now().UnixMilli())
	}

	providerReq, err := buildProviderRequest(method, req, ref)
	if err != nil {
		return nil, err
	}

	result, err := s.dispatcher.Process(ctx, method.Kind, method.Provider, providerReq)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrUnsupportedProvider):
			return nil, ErrUnsupportedProvider
		case errors.Is(err, provider.ErrUnsupportedKind):
			return nil, ErrUnsupportedPaymentMethodType
		default:
			return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
		}
	}

	return s.ledger.Record(ctx, RecordTransactionRequest{
		OwnerID:          req.OwnerID,
		RideID:           req.RideID,
		Amount:           req.Amount,
		PaymentMethodID:  method.ID,
		Kind:             method.Kind,
		TransactionRef:   ref,
		IdempotencyKey:   req.IdempotencyKey,
		ProviderResponse: result.Response,
	})
}

// buildProviderRequest normalizes the stored method into an adapter request.
// Missing instrument fields fail closed; placeholder data is never
// substituted.
func buildProviderRequest(method *domain.PaymentMethod, req ProcessRidePaymentRequest, ref string) (provider.Request, error) {
	base := provider.Request{
		Amount:      req.Amount,
		Currency:    domain.CurrencyGHS,
		Reference:   ref,
		Description: fmt.Sprintf("Payment for ride %s", req.RideID),
	}

	switch method.Kind {
	case domain.PaymentKindMobileMoney:
		if method.AccountDetails.Phone == "" {
			return provider.Request{}, ErrIncompletePaymentMethod
		}
		base.Phone = method.AccountDetails.Phone
		base.PayerMessage = fmt.Sprintf("Payment for ride %s", req.RideID)
		base.PayeeNote = "Sankofa Ride payment"
		return base, nil

	case domain.PaymentKindCreditCard, domain.PaymentKindBankCard:
		details := method.AccountDetails
		if details.CardNumber == "" || details.ExpiryMonth == "" || details.ExpiryYear == "" || details.CardholderName == "" {
			return provider.Request{}, ErrIncompletePaymentMethod
		}
		base.CardNumber = details.CardNumber
		base.ExpiryMonth = details.ExpiryMonth
		base.ExpiryYear = details.ExpiryYear
		base.CVV = details.CVV
		base.CardholderName = details.CardholderName
		return base, nil

	default:
		return provider.Request{}, ErrUnsupportedPaymentMethodType
	}
}

// failureMessage maps an orchestration error to the message surfaced to the
// rider. The UI shows it verbatim.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, ErrPaymentMethodNotFound):
		return "Payment method not found"
	case errors.Is(err, ErrUnsupportedPaymentMethodType):
		return "Unsupported payment method type"
	case errors.Is(err, ErrUnsupportedProvider):
		return "Unsupported payment provider"
	case errors.Is(err, ErrIncompletePaymentMethod):
		return "Payment method details are incomplete"
	case errors.Is(err, ErrProviderFailure):
		return "Payment could not be processed by the provider"
	case errors.Is(err, ErrInvalidOwnerID),
		errors.Is(err, ErrInvalidRideID),
		errors.Is(err, ErrInvalidPaymentAmount),
		errors.Is(err, ErrInvalidPaymentMethodID):
		return "Invalid payment request"
	case errors.Is(err, ErrStorage):
		return "Payment processing failed"
	default:
		return "Payment processing failed"
	}
}

// failureCode maps an orchestration error to its machine-readable code.
func failureCode(err error) string {
	switch {
	case errors.Is(err, ErrPaymentMethodNotFound):
		return CodePaymentMethodNotFound
	case errors.Is(err, ErrUnsupportedPaymentMethodType):
		return CodeUnsupportedPaymentMethod
	case errors.Is(err, ErrUnsupportedProvider):
		return CodeUnsupportedProvider
	case errors.Is(err, ErrIncompletePaymentMethod):
		return CodeIncompletePaymentMethod
	case errors.Is(err, ErrProviderFailure):
		return CodeProviderError
	case errors.Is(err, ErrInvalidOwnerID),
		errors.Is(err, ErrInvalidRideID),
		errors.Is(err, ErrInvalidPaymentAmount),
		errors.Is(err, ErrInvalidPaymentMethodID):
		return CodeInvalidRequest
	case errors.Is(err, ErrStorage):
		return CodeStorageError
	default:
		return CodePaymentFailed
	}
}
