package provider

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/sony/gobreaker"

	"ridepay/internal/domain"
)

// DispatcherConfig controls how provider calls are executed.
type DispatcherConfig struct {
	// Timeout bounds each individual provider call.
	Timeout time.Duration

	// MaxRetries is the number of additional attempts after a failed call.
	MaxRetries int

	// RetryBackoff is the initial backoff between attempts; it doubles each
	// retry.
	RetryBackoff time.Duration
}

// Dispatcher routes a normalized charge request to the adapter matching a
// payment method's (kind, provider) pair. Every adapter call runs under an
// explicit timeout, behind a per-adapter circuit breaker, with bounded
// retry.
type Dispatcher struct {
	cfg         DispatcherConfig
	mobileMoney map[string]Provider
	card        Provider
	breakers    map[string]*gobreaker.CircuitBreaker
}

// NewDispatcher creates a dispatcher over the given mobile money adapters
// and card adapter.
func NewDispatcher(cfg DispatcherConfig, mobileMoney []Provider, card Provider) *Dispatcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 200 * time.Millisecond
	}

	d := &Dispatcher{
		cfg:         cfg,
		mobileMoney: make(map[string]Provider, len(mobileMoney)),
		card:        card,
		breakers:    make(map[string]*gobreaker.CircuitBreaker),
	}

	for _, p := range mobileMoney {
		d.mobileMoney[p.Name()] = p
		d.breakers[p.Name()] = newBreaker(p.Name())
	}
	if card != nil {
		d.breakers[card.Name()] = newBreaker(card.Name())
	}

	return d
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("provider breaker %s: %s -> %s", name, from, to)
		},
	})
}

// Process selects the adapter for (kind, provider) and executes the charge.
func (d *Dispatcher) Process(ctx context.Context, kind domain.PaymentKind, providerName string, req Request) (*Result, error) {
	adapter, err := d.adapterFor(kind, providerName)
	if err != nil {
		return nil, err
	}

	return d.execute(ctx, adapter, req)
}

func (d *Dispatcher) adapterFor(kind domain.PaymentKind, providerName string) (Provider, error) {
	switch kind {
	case domain.PaymentKindMobileMoney:
		adapter, ok := d.mobileMoney[providerName]
		if !ok {
			return nil, ErrUnsupportedProvider
		}
		return adapter, nil
	case domain.PaymentKindCreditCard, domain.PaymentKindBankCard:
		if d.card == nil {
			return nil, ErrUnsupportedKind
		}
		return d.card, nil
	default:
		return nil, ErrUnsupportedKind
	}
}

func (d *Dispatcher) execute(ctx context.Context, adapter Provider, req Request) (*Result, error) {
	breaker := d.breakers[adapter.Name()]
	backoff := d.cfg.RetryBackoff

	var lastErr error
	for attempt := 0; attempt <= d.cfg.MaxRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
		out, err := breaker.Execute(func() (any, error) {
			return adapter.Process(callCtx, req)
		})
		cancel()

		if err == nil {
			return out.(*Result), nil
		}
		lastErr = err

		// A declined transaction is a final answer, not a transient fault.
		if errors.Is(err, ErrDeclined) || errors.Is(err, gobreaker.ErrOpenState) {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt == d.cfg.MaxRetries {
			break
		}

		log.Printf("provider %s attempt %d failed, retrying in %s: %v", adapter.Name(), attempt+1, backoff, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return nil, lastErr
}
