package tests

import (
	"strings"
	"testing"
	"time"

	"ridepay/internal/domain"
	"ridepay/internal/service"
)

// ──────────────────────────────────────────────
// 6. RECEIPT FORMATTING
// ──────────────────────────────────────────────

func TestReceipt_ContainsFareBreakdownAndMaskedCard(t *testing.T) {
	t.Parallel()

	receiptService := service.NewReceiptService()

	txn := &domain.Transaction{
		ID:             "txn-1",
		RideID:         "ride-1",
		Amount:         23.75,
		Currency:       domain.CurrencyGHS,
		Kind:           domain.PaymentKindCreditCard,
		Status:         domain.TransactionStatusCompleted,
		TransactionRef: "RIDE_ride-1_1700000000000",
		CreatedAt:      time.Date(2026, 3, 14, 15, 4, 0, 0, time.UTC),
		MethodDetails: domain.AccountDetails{
			CardNumber: "4111111111111111",
		},
	}
	fare := &domain.FareBreakdown{
		BaseFare:     3.00,
		DistanceFare: 18.75,
		TimeFare:     2.00,
		Total:        23.75,
		Currency:     domain.CurrencyGHS,
	}

	receipt := receiptService.FormatReceipt(txn, fare)

	for _, want := range []string{
		"RIDE_ride-1_1700000000000",
		"GHS 23.75",
		"GHS 18.75",
		"Card ****1111",
		"completed",
	} {
		if !strings.Contains(receipt, want) {
			t.Errorf("expected receipt to contain %q", want)
		}
	}

	if strings.Contains(receipt, "4111111111111111") {
		t.Error("full card number leaked into the receipt")
	}
}

func TestReceipt_MobileMoneyLabelAndOptionalFare(t *testing.T) {
	t.Parallel()

	receiptService := service.NewReceiptService()

	txn := &domain.Transaction{
		ID:             "txn-2",
		RideID:         "ride-2",
		Amount:         15,
		Currency:       domain.CurrencyGHS,
		Kind:           domain.PaymentKindMobileMoney,
		Status:         domain.TransactionStatusCompleted,
		MethodProvider: "MTN Mobile Money",
		MethodDetails: domain.AccountDetails{
			Phone: "+233241234567",
		},
	}

	receipt := receiptService.FormatReceipt(txn, nil)

	if !strings.Contains(receipt, "MTN Mobile Money (+233241234567)") {
		t.Error("expected provider and phone in method label")
	}
	if strings.Contains(receipt, "FARE BREAKDOWN") {
		t.Error("expected no fare section without a breakdown")
	}
}
