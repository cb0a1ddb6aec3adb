package provider

import (
	"context"
	"net/http"
	"time"
)

// Config holds the settings for a single provider adapter.
// When Mock is set the adapter simulates the provider's round trip (with
// Latency of artificial delay) instead of calling BaseURL.
type Config struct {
	BaseURL string
	APIKey  string
	Mock    bool
	Latency time.Duration
}

func newHTTPClient() *http.Client {
	// Per-call deadlines come from the caller's context; the client timeout
	// is a backstop against leaked connections.
	return &http.Client{Timeout: 30 * time.Second}
}

// sleep waits for the configured simulated latency, honoring cancellation.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
