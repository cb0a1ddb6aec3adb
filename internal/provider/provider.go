package provider

import (
	"context"
	"encoding/json"
	"errors"
)

// Known mobile money provider names, matched exactly against the provider
// field stored on a payment method.
const (
	MTNMobileMoney = "MTN Mobile Money"
	VodafoneCash   = "Vodafone Cash"
)

var (
	// ErrUnsupportedProvider is returned when no adapter matches a mobile
	// money provider name.
	ErrUnsupportedProvider = errors.New("unsupported payment provider")

	// ErrUnsupportedKind is returned when no adapter matches a payment kind.
	ErrUnsupportedKind = errors.New("unsupported payment method kind")

	// ErrDeclined is returned when a provider answers with a non-success status.
	ErrDeclined = errors.New("provider declined transaction")
)

// Request carries the normalized inputs for a provider charge. Each adapter
// translates it into its own wire shape.
type Request struct {
	Amount    float64
	Currency  string
	Reference string

	// Mobile money fields.
	Phone        string
	PayerMessage string
	PayeeNote    string

	// Card fields.
	CardNumber     string
	ExpiryMonth    string
	ExpiryYear     string
	CVV            string
	CardholderName string

	Description string
}

// Result is the normalized outcome of a provider call. Response holds the
// provider payload verbatim so the ledger can store it for audit.
type Result struct {
	Status       string
	ProviderTxID string
	Response     json.RawMessage
}

// Provider is the capability every payment adapter implements.
type Provider interface {
	Name() string
	Process(ctx context.Context, req Request) (*Result, error)
}
