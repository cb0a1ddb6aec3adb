package tests

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ridepay/internal/domain"
	"ridepay/internal/provider"
)

// ──────────────────────────────────────────────
// 5. PROVIDER ADAPTERS AND DISPATCH
// ──────────────────────────────────────────────

func TestMaskCard(t *testing.T) {
	t.Parallel()

	if got := provider.MaskCard("4111111111111111"); got != "****1111" {
		t.Errorf("expected ****1111, got %s", got)
	}
	if got := provider.MaskCard("4111 1111 1111 1234"); got != "****1234" {
		t.Errorf("expected ****1234, got %s", got)
	}
	// Too short to expose anything.
	if got := provider.MaskCard("123"); got != "****" {
		t.Errorf("expected ****, got %s", got)
	}
}

func TestMaskCVV(t *testing.T) {
	t.Parallel()

	if got := provider.MaskCVV("123"); got != "***" {
		t.Errorf("expected ***, got %s", got)
	}
	if got := provider.MaskCVV(""); got != "" {
		t.Errorf("expected empty mask for empty CVV, got %s", got)
	}
}

func TestMoMoAdapter_SimulatedCharge(t *testing.T) {
	t.Parallel()

	adapter := provider.NewMoMoAdapter(provider.Config{Mock: true})

	result, err := adapter.Process(context.Background(), provider.Request{
		Amount:       23.75,
		Currency:     domain.CurrencyGHS,
		Reference:    "RIDE_ride-1_1700000000000",
		Phone:        "+233241234567",
		PayerMessage: "Payment for ride ride-1",
		PayeeNote:    "Sankofa Ride payment",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != "SUCCESSFUL" {
		t.Errorf("expected SUCCESSFUL, got %s", result.Status)
	}
	if !strings.HasPrefix(result.ProviderTxID, "mtn_") {
		t.Errorf("expected mtn_ transaction ID, got %s", result.ProviderTxID)
	}

	var payload map[string]any
	if err := json.Unmarshal(result.Response, &payload); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	payer, ok := payload["payer"].(map[string]any)
	if !ok {
		t.Fatal("expected payer object in response")
	}
	if payer["partyIdType"] != "MSISDN" {
		t.Errorf("expected MSISDN party type, got %v", payer["partyIdType"])
	}
	if payload["amount"] != "23.75" {
		t.Errorf("expected string amount 23.75, got %v", payload["amount"])
	}
}

func TestVodafoneAdapter_SimulatedCharge(t *testing.T) {
	t.Parallel()

	adapter := provider.NewVodafoneAdapter(provider.Config{Mock: true})

	result, err := adapter.Process(context.Background(), provider.Request{
		Amount:    15,
		Currency:  domain.CurrencyGHS,
		Reference: "RIDE_ride-2_1700000000000",
		Phone:     "+233201112222",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != "SUCCESS" {
		t.Errorf("expected SUCCESS, got %s", result.Status)
	}
	if !strings.HasPrefix(result.ProviderTxID, "voda_") {
		t.Errorf("expected voda_ transaction ID, got %s", result.ProviderTxID)
	}
}

func TestCardAdapter_SimulatedCharge(t *testing.T) {
	t.Parallel()

	adapter := provider.NewCardAdapter(provider.Config{Mock: true})

	result, err := adapter.Process(context.Background(), provider.Request{
		Amount:         40,
		Currency:       domain.CurrencyGHS,
		Reference:      "RIDE_ride-3_1700000000000",
		CardNumber:     "4111111111111111",
		ExpiryMonth:    "12",
		ExpiryYear:     "2028",
		CVV:            "123",
		CardholderName: "Ama Mensah",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != "success" {
		t.Errorf("expected success, got %s", result.Status)
	}
	if !strings.HasPrefix(result.ProviderTxID, "card_") {
		t.Errorf("expected card_ transaction ID, got %s", result.ProviderTxID)
	}

	var payload map[string]any
	if err := json.Unmarshal(result.Response, &payload); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	auth, ok := payload["authorization"].(map[string]any)
	if !ok {
		t.Fatal("expected authorization object in response")
	}
	if auth["last4"] != "1111" {
		t.Errorf("expected last4 1111, got %v", auth["last4"])
	}
	if auth["bin"] != "411111" {
		t.Errorf("expected bin 411111, got %v", auth["bin"])
	}
	if !strings.HasPrefix(auth["authorization_code"].(string), "AUTH_") {
		t.Errorf("expected AUTH_ code, got %v", auth["authorization_code"])
	}

	// The stored payload must never carry the full PAN or the CVV.
	raw := string(result.Response)
	if strings.Contains(raw, "4111111111111111") {
		t.Error("full card number leaked into the stored provider response")
	}
	if strings.Contains(raw, `"123"`) {
		t.Error("CVV leaked into the stored provider response")
	}
}

func TestAdapter_SimulatedLatencyHonorsCancellation(t *testing.T) {
	t.Parallel()

	adapter := provider.NewMoMoAdapter(provider.Config{Mock: true, Latency: 5 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := adapter.Process(ctx, provider.Request{
		Amount:   10,
		Currency: domain.CurrencyGHS,
		Phone:    "+233241234567",
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("expected cancellation to cut the simulated latency short")
	}
}

// flakyProvider fails a fixed number of calls, then succeeds.
type flakyProvider struct {
	name     string
	failures int32
	calls    int32
}

func (p *flakyProvider) Name() string { return p.name }

func (p *flakyProvider) Process(ctx context.Context, req provider.Request) (*provider.Result, error) {
	n := atomic.AddInt32(&p.calls, 1)
	if n <= p.failures {
		return nil, ErrMockTimeout
	}
	return &provider.Result{Status: "SUCCESS", ProviderTxID: "flaky-ok", Response: json.RawMessage(`{}`)}, nil
}

// decliningProvider always answers with a terminal decline.
type decliningProvider struct {
	name  string
	calls int32
}

func (p *decliningProvider) Name() string { return p.name }

func (p *decliningProvider) Process(ctx context.Context, req provider.Request) (*provider.Result, error) {
	atomic.AddInt32(&p.calls, 1)
	return nil, fmt.Errorf("%w: insufficient funds", provider.ErrDeclined)
}

func TestDispatcher_RoutesByKindAndProvider(t *testing.T) {
	t.Parallel()

	dispatcher := provider.NewDispatcher(
		provider.DispatcherConfig{Timeout: time.Second},
		[]provider.Provider{
			provider.NewMoMoAdapter(provider.Config{Mock: true}),
			provider.NewVodafoneAdapter(provider.Config{Mock: true}),
		},
		provider.NewCardAdapter(provider.Config{Mock: true}),
	)

	ctx := context.Background()

	result, err := dispatcher.Process(ctx, domain.PaymentKindMobileMoney, provider.MTNMobileMoney, provider.Request{
		Amount: 10, Currency: domain.CurrencyGHS, Phone: "+233241234567",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(result.ProviderTxID, "mtn_") {
		t.Errorf("expected MTN adapter, got transaction %s", result.ProviderTxID)
	}

	result, err = dispatcher.Process(ctx, domain.PaymentKindBankCard, "", provider.Request{
		Amount: 10, Currency: domain.CurrencyGHS, CardNumber: "4111111111111111",
		ExpiryMonth: "12", ExpiryYear: "2028", CardholderName: "Ama Mensah",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(result.ProviderTxID, "card_") {
		t.Errorf("expected card adapter, got transaction %s", result.ProviderTxID)
	}
}

func TestDispatcher_UnknownProviderRejected(t *testing.T) {
	t.Parallel()

	dispatcher := provider.NewDispatcher(
		provider.DispatcherConfig{Timeout: time.Second},
		[]provider.Provider{provider.NewMoMoAdapter(provider.Config{Mock: true})},
		nil,
	)

	_, err := dispatcher.Process(context.Background(), domain.PaymentKindMobileMoney, "AirtelTigo Money", provider.Request{})
	if !errors.Is(err, provider.ErrUnsupportedProvider) {
		t.Errorf("expected ErrUnsupportedProvider, got %v", err)
	}

	_, err = dispatcher.Process(context.Background(), domain.PaymentKindCash, "", provider.Request{})
	if !errors.Is(err, provider.ErrUnsupportedKind) {
		t.Errorf("expected ErrUnsupportedKind, got %v", err)
	}
}

func TestDispatcher_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	flaky := &flakyProvider{name: "Flaky Money", failures: 1}
	dispatcher := provider.NewDispatcher(
		provider.DispatcherConfig{Timeout: time.Second, MaxRetries: 2, RetryBackoff: time.Millisecond},
		[]provider.Provider{flaky},
		nil,
	)

	result, err := dispatcher.Process(context.Background(), domain.PaymentKindMobileMoney, "Flaky Money", provider.Request{})
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if result.ProviderTxID != "flaky-ok" {
		t.Errorf("unexpected result %s", result.ProviderTxID)
	}
	if got := atomic.LoadInt32(&flaky.calls); got != 2 {
		t.Errorf("expected 2 calls (1 failure + 1 success), got %d", got)
	}
}

func TestDispatcher_RetriesExhausted(t *testing.T) {
	t.Parallel()

	flaky := &flakyProvider{name: "Flaky Money", failures: 10}
	dispatcher := provider.NewDispatcher(
		provider.DispatcherConfig{Timeout: time.Second, MaxRetries: 2, RetryBackoff: time.Millisecond},
		[]provider.Provider{flaky},
		nil,
	)

	_, err := dispatcher.Process(context.Background(), domain.PaymentKindMobileMoney, "Flaky Money", provider.Request{})
	if err == nil {
		t.Fatal("expected failure after retries are exhausted")
	}
	if got := atomic.LoadInt32(&flaky.calls); got != 3 {
		t.Errorf("expected 3 calls (initial + 2 retries), got %d", got)
	}
}

func TestDispatcher_DeclineIsNotRetried(t *testing.T) {
	t.Parallel()

	declining := &decliningProvider{name: "Strict Money"}
	dispatcher := provider.NewDispatcher(
		provider.DispatcherConfig{Timeout: time.Second, MaxRetries: 3, RetryBackoff: time.Millisecond},
		[]provider.Provider{declining},
		nil,
	)

	_, err := dispatcher.Process(context.Background(), domain.PaymentKindMobileMoney, "Strict Money", provider.Request{})
	if !errors.Is(err, provider.ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}
	if got := atomic.LoadInt32(&declining.calls); got != 1 {
		t.Errorf("expected a single call for a terminal decline, got %d", got)
	}
}
