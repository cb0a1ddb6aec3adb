package tests

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"ridepay/internal/domain"
	"ridepay/internal/provider"
	"ridepay/internal/service"
)

// ──────────────────────────────────────────────
// 4. RIDE PAYMENT ORCHESTRATION
// ──────────────────────────────────────────────

func newPaymentFixture() (*service.PaymentService, *MockPaymentMethodRepository, *MockTransactionRepository, *MockDispatcher) {
	methodRepo := NewMockPaymentMethodRepository()
	txnRepo := NewMockTransactionRepository()
	dispatcher := NewMockDispatcher()
	ledger := service.NewLedgerService(txnRepo)
	paymentService := service.NewPaymentService(methodRepo, ledger, dispatcher)
	return paymentService, methodRepo, txnRepo, dispatcher
}

func TestRidePayment_MethodNotFound(t *testing.T) {
	t.Parallel()

	paymentService, _, txnRepo, dispatcher := newPaymentFixture()

	result := paymentService.ProcessRidePayment(context.Background(), service.ProcessRidePaymentRequest{
		RideID:          "ride-1",
		OwnerID:         "owner-1",
		Amount:          23.75,
		PaymentMethodID: "nonexistent",
	})

	if result.Success {
		t.Fatal("expected failure for unknown payment method")
	}
	if result.ErrorCode != service.CodePaymentMethodNotFound {
		t.Errorf("expected code %s, got %s", service.CodePaymentMethodNotFound, result.ErrorCode)
	}
	if result.Error != "Payment method not found" {
		t.Errorf("expected message %q, got %q", "Payment method not found", result.Error)
	}
	if dispatcher.ProcessCallCount != 0 {
		t.Error("expected no provider call for unknown method")
	}
	if txnRepo.CountTransactions() != 0 {
		t.Error("expected no ledger write for unknown method")
	}
}

func TestRidePayment_MobileMoneySuccess(t *testing.T) {
	t.Parallel()

	paymentService, methodRepo, txnRepo, dispatcher := newPaymentFixture()

	methodRepo.AddMethod(&domain.PaymentMethod{
		ID:       "method-1",
		OwnerID:  "owner-1",
		Kind:     domain.PaymentKindMobileMoney,
		Provider: provider.MTNMobileMoney,
		AccountDetails: domain.AccountDetails{
			Phone: "+233241234567",
		},
		Status: domain.PaymentMethodStatusActive,
	})

	result := paymentService.ProcessRidePayment(context.Background(), service.ProcessRidePaymentRequest{
		RideID:          "ride-1",
		OwnerID:         "owner-1",
		Amount:          23.75,
		PaymentMethodID: "method-1",
	})

	if !result.Success {
		t.Fatalf("expected success, got %s: %s", result.ErrorCode, result.Error)
	}

	txn := result.Transaction
	if txn.Kind != domain.PaymentKindMobileMoney {
		t.Errorf("expected mobile_money kind, got %s", txn.Kind)
	}
	if txn.Status != domain.TransactionStatusCompleted {
		t.Errorf("expected completed status, got %s", txn.Status)
	}
	if txn.Currency != domain.CurrencyGHS {
		t.Errorf("expected GHS, got %s", txn.Currency)
	}
	if !strings.HasPrefix(txn.TransactionRef, "RIDE_ride-1_") {
		t.Errorf("expected RIDE_<rideId>_<ts> reference, got %s", txn.TransactionRef)
	}

	if dispatcher.LastProvider != provider.MTNMobileMoney {
		t.Errorf("expected dispatch to %s, got %s", provider.MTNMobileMoney, dispatcher.LastProvider)
	}
	if dispatcher.LastRequest.Phone != "+233241234567" {
		t.Errorf("expected payer phone on request, got %q", dispatcher.LastRequest.Phone)
	}
	if txnRepo.CountTransactions() != 1 {
		t.Errorf("expected 1 ledger write, got %d", txnRepo.CountTransactions())
	}
}

func TestRidePayment_CardSuccess(t *testing.T) {
	t.Parallel()

	paymentService, methodRepo, _, dispatcher := newPaymentFixture()

	methodRepo.AddMethod(&domain.PaymentMethod{
		ID:       "method-1",
		OwnerID:  "owner-1",
		Kind:     domain.PaymentKindCreditCard,
		Provider: "Visa",
		AccountDetails: domain.AccountDetails{
			CardNumber:     "4111111111111111",
			ExpiryMonth:    "12",
			ExpiryYear:     "2028",
			CVV:            "123",
			CardholderName: "Ama Mensah",
		},
		Status: domain.PaymentMethodStatusActive,
	})

	result := paymentService.ProcessRidePayment(context.Background(), service.ProcessRidePaymentRequest{
		RideID:          "ride-2",
		OwnerID:         "owner-1",
		Amount:          40,
		PaymentMethodID: "method-1",
	})

	if !result.Success {
		t.Fatalf("expected success, got %s: %s", result.ErrorCode, result.Error)
	}
	if dispatcher.LastKind != domain.PaymentKindCreditCard {
		t.Errorf("expected credit_card dispatch, got %s", dispatcher.LastKind)
	}
	if dispatcher.LastRequest.CardNumber != "4111111111111111" {
		t.Error("expected card number forwarded to the adapter request")
	}
	if dispatcher.LastRequest.CardholderName != "Ama Mensah" {
		t.Error("expected cardholder name forwarded to the adapter request")
	}
}

func TestRidePayment_IncompleteCardFailsClosed(t *testing.T) {
	t.Parallel()

	paymentService, methodRepo, txnRepo, dispatcher := newPaymentFixture()

	// Stored method is missing expiry and cardholder name; no placeholder
	// data may be substituted.
	methodRepo.AddMethod(&domain.PaymentMethod{
		ID:       "method-1",
		OwnerID:  "owner-1",
		Kind:     domain.PaymentKindCreditCard,
		Provider: "Visa",
		AccountDetails: domain.AccountDetails{
			CardNumber: "4111111111111111",
		},
		Status: domain.PaymentMethodStatusActive,
	})

	result := paymentService.ProcessRidePayment(context.Background(), service.ProcessRidePaymentRequest{
		RideID:          "ride-1",
		OwnerID:         "owner-1",
		Amount:          10,
		PaymentMethodID: "method-1",
	})

	if result.Success {
		t.Fatal("expected failure for incomplete card details")
	}
	if result.ErrorCode != service.CodeIncompletePaymentMethod {
		t.Errorf("expected code %s, got %s", service.CodeIncompletePaymentMethod, result.ErrorCode)
	}
	if dispatcher.ProcessCallCount != 0 {
		t.Error("expected no provider call for incomplete method")
	}
	if txnRepo.CountTransactions() != 0 {
		t.Error("expected no ledger write for incomplete method")
	}
}

func TestRidePayment_IncompleteMobileMoneyFailsClosed(t *testing.T) {
	t.Parallel()

	paymentService, methodRepo, _, dispatcher := newPaymentFixture()

	methodRepo.AddMethod(&domain.PaymentMethod{
		ID:       "method-1",
		OwnerID:  "owner-1",
		Kind:     domain.PaymentKindMobileMoney,
		Provider: provider.MTNMobileMoney,
		Status:   domain.PaymentMethodStatusActive,
	})

	result := paymentService.ProcessRidePayment(context.Background(), service.ProcessRidePaymentRequest{
		RideID:          "ride-1",
		OwnerID:         "owner-1",
		Amount:          10,
		PaymentMethodID: "method-1",
	})

	if result.Success || result.ErrorCode != service.CodeIncompletePaymentMethod {
		t.Errorf("expected incomplete-method failure, got success=%v code=%s", result.Success, result.ErrorCode)
	}
	if dispatcher.ProcessCallCount != 0 {
		t.Error("expected no provider call without a payer phone")
	}
}

func TestRidePayment_UnsupportedProviderRejected(t *testing.T) {
	t.Parallel()

	paymentService, methodRepo, txnRepo, dispatcher := newPaymentFixture()
	dispatcher.ProcessError = provider.ErrUnsupportedProvider

	methodRepo.AddMethod(&domain.PaymentMethod{
		ID:             "method-1",
		OwnerID:        "owner-1",
		Kind:           domain.PaymentKindMobileMoney,
		Provider:       "AirtelTigo Money",
		AccountDetails: domain.AccountDetails{Phone: "+233271234567"},
		Status:         domain.PaymentMethodStatusActive,
	})

	result := paymentService.ProcessRidePayment(context.Background(), service.ProcessRidePaymentRequest{
		RideID:          "ride-1",
		OwnerID:         "owner-1",
		Amount:          10,
		PaymentMethodID: "method-1",
	})

	if result.Success {
		t.Fatal("expected failure for unknown provider")
	}
	if result.ErrorCode != service.CodeUnsupportedProvider {
		t.Errorf("expected code %s, got %s", service.CodeUnsupportedProvider, result.ErrorCode)
	}
	if txnRepo.CountTransactions() != 0 {
		t.Error("expected no ledger write for unsupported provider")
	}
}

func TestRidePayment_UnsupportedKindRejected(t *testing.T) {
	t.Parallel()

	paymentService, methodRepo, _, dispatcher := newPaymentFixture()

	methodRepo.AddMethod(&domain.PaymentMethod{
		ID:      "method-1",
		OwnerID: "owner-1",
		Kind:    domain.PaymentKindCash,
		Status:  domain.PaymentMethodStatusActive,
	})

	result := paymentService.ProcessRidePayment(context.Background(), service.ProcessRidePaymentRequest{
		RideID:          "ride-1",
		OwnerID:         "owner-1",
		Amount:          10,
		PaymentMethodID: "method-1",
	})

	if result.Success || result.ErrorCode != service.CodeUnsupportedPaymentMethod {
		t.Errorf("expected unsupported-kind failure, got success=%v code=%s", result.Success, result.ErrorCode)
	}
	if dispatcher.ProcessCallCount != 0 {
		t.Error("expected no provider call for cash methods")
	}
}

func TestRidePayment_ProviderErrorNormalized(t *testing.T) {
	t.Parallel()

	paymentService, methodRepo, txnRepo, dispatcher := newPaymentFixture()
	dispatcher.ProcessError = ErrMockTimeout

	methodRepo.AddMethod(&domain.PaymentMethod{
		ID:             "method-1",
		OwnerID:        "owner-1",
		Kind:           domain.PaymentKindMobileMoney,
		Provider:       provider.MTNMobileMoney,
		AccountDetails: domain.AccountDetails{Phone: "+233241234567"},
		Status:         domain.PaymentMethodStatusActive,
	})

	result := paymentService.ProcessRidePayment(context.Background(), service.ProcessRidePaymentRequest{
		RideID:          "ride-1",
		OwnerID:         "owner-1",
		Amount:          10,
		PaymentMethodID: "method-1",
	})

	if result.Success {
		t.Fatal("expected failure when the provider call fails")
	}
	if result.ErrorCode != service.CodeProviderError {
		t.Errorf("expected code %s, got %s", service.CodeProviderError, result.ErrorCode)
	}
	if result.Error != "Payment could not be processed by the provider" {
		t.Errorf("unexpected rider-facing message: %q", result.Error)
	}
	if txnRepo.CountTransactions() != 0 {
		t.Error("expected no ledger write for failed charge")
	}
}

func TestRidePayment_IdempotentReplay(t *testing.T) {
	t.Parallel()

	paymentService, methodRepo, txnRepo, dispatcher := newPaymentFixture()

	methodRepo.AddMethod(&domain.PaymentMethod{
		ID:             "method-1",
		OwnerID:        "owner-1",
		Kind:           domain.PaymentKindMobileMoney,
		Provider:       provider.MTNMobileMoney,
		AccountDetails: domain.AccountDetails{Phone: "+233241234567"},
		Status:         domain.PaymentMethodStatusActive,
	})

	req := service.ProcessRidePaymentRequest{
		RideID:          "ride-1",
		OwnerID:         "owner-1",
		Amount:          23.75,
		PaymentMethodID: "method-1",
		IdempotencyKey:  "key-abc",
	}

	first := paymentService.ProcessRidePayment(context.Background(), req)
	second := paymentService.ProcessRidePayment(context.Background(), req)

	if !first.Success || !second.Success {
		t.Fatal("expected both calls to succeed")
	}
	if first.Transaction.ID != second.Transaction.ID {
		t.Errorf("expected replay to return the original transaction, got %s and %s",
			first.Transaction.ID, second.Transaction.ID)
	}
	if dispatcher.ProcessCallCount != 1 {
		t.Errorf("expected the provider to be charged once, got %d calls", dispatcher.ProcessCallCount)
	}
	if txnRepo.CountTransactions() != 1 {
		t.Errorf("expected 1 stored transaction, got %d", txnRepo.CountTransactions())
	}
}

func TestRidePayment_NoKeyCreatesDistinctTransactions(t *testing.T) {
	t.Parallel()

	paymentService, methodRepo, txnRepo, dispatcher := newPaymentFixture()

	methodRepo.AddMethod(&domain.PaymentMethod{
		ID:             "method-1",
		OwnerID:        "owner-1",
		Kind:           domain.PaymentKindMobileMoney,
		Provider:       provider.MTNMobileMoney,
		AccountDetails: domain.AccountDetails{Phone: "+233241234567"},
		Status:         domain.PaymentMethodStatusActive,
	})

	req := service.ProcessRidePaymentRequest{
		RideID:          "ride-1",
		OwnerID:         "owner-1",
		Amount:          23.75,
		PaymentMethodID: "method-1",
	}

	first := paymentService.ProcessRidePayment(context.Background(), req)
	second := paymentService.ProcessRidePayment(context.Background(), req)

	if !first.Success || !second.Success {
		t.Fatal("expected both calls to succeed")
	}
	if first.Transaction.ID == second.Transaction.ID {
		t.Error("expected distinct transactions without an idempotency key")
	}
	if dispatcher.ProcessCallCount != 2 {
		t.Errorf("expected 2 provider calls, got %d", dispatcher.ProcessCallCount)
	}
	if txnRepo.CountTransactions() != 2 {
		t.Errorf("expected 2 stored transactions, got %d", txnRepo.CountTransactions())
	}
}

func TestRidePayment_InvalidRequestRejected(t *testing.T) {
	t.Parallel()

	paymentService, _, _, dispatcher := newPaymentFixture()

	result := paymentService.ProcessRidePayment(context.Background(), service.ProcessRidePaymentRequest{
		RideID:          "ride-1",
		OwnerID:         "owner-1",
		Amount:          0,
		PaymentMethodID: "method-1",
	})

	if result.Success || result.ErrorCode != service.CodeInvalidRequest {
		t.Errorf("expected invalid-request failure, got success=%v code=%s", result.Success, result.ErrorCode)
	}
	if result.Error != "Invalid payment request" {
		t.Errorf("unexpected rider-facing message: %q", result.Error)
	}
	if dispatcher.ProcessCallCount != 0 {
		t.Error("expected no provider call for invalid request")
	}
}

func TestRidePayment_EndToEndMobileMoneyStoresProviderResponse(t *testing.T) {
	t.Parallel()

	methodRepo := NewMockPaymentMethodRepository()
	txnRepo := NewMockTransactionRepository()
	ledger := service.NewLedgerService(txnRepo)

	// Real dispatcher over simulated adapters, no artificial latency.
	dispatcher := provider.NewDispatcher(
		provider.DispatcherConfig{Timeout: time.Second},
		[]provider.Provider{provider.NewMoMoAdapter(provider.Config{Mock: true})},
		nil,
	)
	paymentService := service.NewPaymentService(methodRepo, ledger, dispatcher)

	methodRepo.AddMethod(&domain.PaymentMethod{
		ID:             "method-1",
		OwnerID:        "owner-1",
		Kind:           domain.PaymentKindMobileMoney,
		Provider:       provider.MTNMobileMoney,
		AccountDetails: domain.AccountDetails{Phone: "0241234567"},
		Status:         domain.PaymentMethodStatusActive,
	})

	result := paymentService.ProcessRidePayment(context.Background(), service.ProcessRidePaymentRequest{
		RideID:          "ride-001",
		OwnerID:         "owner-1",
		Amount:          45.00,
		PaymentMethodID: "method-1",
	})

	if !result.Success {
		t.Fatalf("expected success, got %s: %s", result.ErrorCode, result.Error)
	}

	var payload struct {
		FinancialTransactionID string `json:"financialTransactionId"`
		Status                 string `json:"status"`
	}
	if err := json.Unmarshal(result.Transaction.ProviderResponse, &payload); err != nil {
		t.Fatalf("stored provider response is not valid JSON: %v", err)
	}
	if !strings.HasPrefix(payload.FinancialTransactionID, "mtn_") {
		t.Errorf("expected synthesized financial transaction id, got %q", payload.FinancialTransactionID)
	}
	if payload.Status != "SUCCESSFUL" {
		t.Errorf("expected SUCCESSFUL provider status, got %q", payload.Status)
	}
}

func TestRidePayment_ExplicitReferencePreserved(t *testing.T) {
	t.Parallel()

	paymentService, methodRepo, _, _ := newPaymentFixture()

	methodRepo.AddMethod(&domain.PaymentMethod{
		ID:             "method-1",
		OwnerID:        "owner-1",
		Kind:           domain.PaymentKindMobileMoney,
		Provider:       provider.MTNMobileMoney,
		AccountDetails: domain.AccountDetails{Phone: "+233241234567"},
		Status:         domain.PaymentMethodStatusActive,
	})

	result := paymentService.ProcessRidePayment(context.Background(), service.ProcessRidePaymentRequest{
		RideID:          "ride-1",
		OwnerID:         "owner-1",
		Amount:          10,
		PaymentMethodID: "method-1",
		TransactionRef:  "RIDE_custom_123",
	})

	if !result.Success {
		t.Fatalf("expected success, got %s: %s", result.ErrorCode, result.Error)
	}
	if result.Transaction.TransactionRef != "RIDE_custom_123" {
		t.Errorf("expected caller reference preserved, got %s", result.Transaction.TransactionRef)
	}
}
