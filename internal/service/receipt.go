package service

import (
	"fmt"

	"ridepay/internal/domain"
	"ridepay/internal/provider"
)

// ReceiptService renders payment receipts for completed transactions.
type ReceiptService struct{}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService() *ReceiptService {
	return &ReceiptService{}
}

// FormatReceipt formats a transaction as a plain-text receipt (for
// email/print). Card details appear masked only; the full number is never
// rendered.
func (s *ReceiptService) FormatReceipt(txn *domain.Transaction, fare *domain.FareBreakdown) string {
	receipt := `
=====================================
       RIDE PAYMENT RECEIPT
=====================================
Transaction: ` + txn.ID + `
Reference:   ` + txn.TransactionRef + `
Date:        ` + txn.CreatedAt.Format("Jan 02, 2006 3:04 PM") + `
Ride:        ` + txn.RideID + `
`

	if fare != nil {
		receipt += `
FARE BREAKDOWN
-------------------------------------
Base Fare:     ` + formatAmount(fare.BaseFare, fare.Currency) + `
Distance Fare: ` + formatAmount(fare.DistanceFare, fare.Currency) + `
Time Fare:     ` + formatAmount(fare.TimeFare, fare.Currency) + `
-------------------------------------
TOTAL:         ` + formatAmount(fare.Total, fare.Currency) + `
`
	}

	receipt += `
PAYMENT
-------------------------------------
Amount:  ` + formatAmount(txn.Amount, txn.Currency) + `
Method:  ` + methodLabel(txn) + `
Status:  ` + string(txn.Status) + `

=====================================
     Thank you for riding with us!
=====================================
`
	return receipt
}

// methodLabel describes the instrument used, with card numbers masked.
func methodLabel(txn *domain.Transaction) string {
	switch txn.Kind {
	case domain.PaymentKindMobileMoney:
		if txn.MethodDetails.Phone != "" {
			return fmt.Sprintf("%s (%s)", txn.MethodProvider, txn.MethodDetails.Phone)
		}
		return txn.MethodProvider
	case domain.PaymentKindCreditCard, domain.PaymentKindBankCard:
		if txn.MethodDetails.CardNumber != "" {
			return fmt.Sprintf("Card %s", provider.MaskCard(txn.MethodDetails.CardNumber))
		}
		return "Card"
	default:
		return string(txn.Kind)
	}
}

func formatAmount(amount float64, currency string) string {
	return fmt.Sprintf("%s %.2f", currency, amount)
}
