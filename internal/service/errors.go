package service

import "errors"

var (
	// ErrInvalidOwnerID is returned when owner ID is empty.
	ErrInvalidOwnerID = errors.New("invalid owner id")

	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidPaymentAmount is returned when payment amount is not positive.
	ErrInvalidPaymentAmount = errors.New("invalid payment amount")

	// ErrInvalidPaymentMethodID is returned when payment method ID is empty.
	ErrInvalidPaymentMethodID = errors.New("invalid payment method id")

	// ErrPaymentMethodNotFound is returned when a payment method does not
	// exist for the given owner.
	ErrPaymentMethodNotFound = errors.New("payment method not found")

	// ErrUnsupportedPaymentMethodType is returned when no adapter serves a
	// payment method's kind.
	ErrUnsupportedPaymentMethodType = errors.New("unsupported payment method type")

	// ErrUnsupportedProvider is returned when a mobile money provider name
	// matches no known adapter.
	ErrUnsupportedProvider = errors.New("unsupported payment provider")

	// ErrIncompletePaymentMethod is returned when a stored method is missing
	// fields required to charge it. Charges fail closed; placeholder data is
	// never substituted.
	ErrIncompletePaymentMethod = errors.New("incomplete payment method details")

	// ErrProviderFailure is returned when the provider call fails or the
	// provider declines the charge.
	ErrProviderFailure = errors.New("payment provider failure")

	// ErrStorage wraps registry and ledger read/write failures.
	ErrStorage = errors.New("storage failure")

	// ErrDefaultUpdateInProgress is returned when another default-flag update
	// holds the owner's method lock.
	ErrDefaultUpdateInProgress = errors.New("default payment method update already in progress")
)
