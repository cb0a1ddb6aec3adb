package domain

import "time"

// PaymentKind identifies the payment rail a method belongs to.
type PaymentKind string

const (
	PaymentKindMobileMoney PaymentKind = "mobile_money"
	PaymentKindCreditCard  PaymentKind = "credit_card"
	PaymentKindBankCard    PaymentKind = "bank_card"
	PaymentKindCash        PaymentKind = "cash"
)

// PaymentMethodStatus represents the current status of a payment method.
type PaymentMethodStatus string

const (
	PaymentMethodStatusActive  PaymentMethodStatus = "active"
	PaymentMethodStatusPending PaymentMethodStatus = "pending"
	PaymentMethodStatusExpired PaymentMethodStatus = "expired"
)

// AccountDetails holds the instrument-specific fields of a payment method.
// Mobile money methods carry a phone number; card methods carry card fields.
// Stored as a JSON blob alongside the method.
type AccountDetails struct {
	Phone          string `json:"phone,omitempty"`
	CardNumber     string `json:"card_number,omitempty"`
	ExpiryMonth    string `json:"expiry_month,omitempty"`
	ExpiryYear     string `json:"expiry_year,omitempty"`
	CVV            string `json:"cvv,omitempty"`
	CardholderName string `json:"cardholder_name,omitempty"`
}

// PaymentMethod represents a stored payment instrument belonging to an owner.
// At most one method per owner has IsDefault set.
type PaymentMethod struct {
	ID             string
	OwnerID        string
	Kind           PaymentKind
	Provider       string
	AccountDetails AccountDetails
	IsDefault      bool
	Status         PaymentMethodStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
