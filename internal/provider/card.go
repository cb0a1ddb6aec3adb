package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// CardAdapterName identifies the card network adapter in breaker metrics.
const CardAdapterName = "card-network"

// CardAdapter processes credit and bank card charges through the card
// network gateway. Card numbers and CVVs are masked before any diagnostic
// output; the cleartext values exist only in the outbound request body.
type CardAdapter struct {
	cfg    Config
	client *http.Client
}

// NewCardAdapter creates a new card network adapter.
func NewCardAdapter(cfg Config) *CardAdapter {
	return &CardAdapter{cfg: cfg, client: newHTTPClient()}
}

// Name returns the adapter name.
func (a *CardAdapter) Name() string {
	return CardAdapterName
}

// cardRequest is the card gateway charge wire shape.
type cardRequest struct {
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	CardNumber     string  `json:"cardNumber"`
	ExpiryMonth    string  `json:"expiryMonth"`
	ExpiryYear     string  `json:"expiryYear"`
	CVV            string  `json:"cvv,omitempty"`
	CardholderName string  `json:"cardholderName"`
	Description    string  `json:"description"`
	Reference      string  `json:"reference"`
}

// cardResponse is the card gateway response wire shape.
type cardResponse struct {
	TransactionID string            `json:"transactionId"`
	Amount        float64           `json:"amount"`
	Currency      string            `json:"currency"`
	Status        string            `json:"status"`
	Reference     string            `json:"reference"`
	Message       string            `json:"message,omitempty"`
	Authorization cardAuthorization `json:"authorization"`
}

type cardAuthorization struct {
	AuthorizationCode string `json:"authorization_code"`
	CardType          string `json:"card_type"`
	Last4             string `json:"last4"`
	ExpMonth          string `json:"exp_month"`
	ExpYear           string `json:"exp_year"`
	BIN               string `json:"bin"`
	Bank              string `json:"bank"`
}

// Process executes a card charge.
func (a *CardAdapter) Process(ctx context.Context, req Request) (*Result, error) {
	wire := cardRequest{
		Amount:         req.Amount,
		Currency:       req.Currency,
		CardNumber:     req.CardNumber,
		ExpiryMonth:    req.ExpiryMonth,
		ExpiryYear:     req.ExpiryYear,
		CVV:            req.CVV,
		CardholderName: req.CardholderName,
		Description:    req.Description,
		Reference:      req.Reference,
	}

	// Only the masked number is ever logged.
	log.Printf("card: charge reference=%s card=%s cvv=%s amount=%.2f", wire.Reference, MaskCard(wire.CardNumber), MaskCVV(wire.CVV), wire.Amount)

	if a.cfg.Mock {
		return a.simulate(ctx, wire)
	}
	return a.post(ctx, wire)
}

func (a *CardAdapter) simulate(ctx context.Context, wire cardRequest) (*Result, error) {
	if err := sleep(ctx, a.cfg.Latency); err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	resp := cardResponse{
		TransactionID: fmt.Sprintf("card_%d", now),
		Amount:        wire.Amount,
		Currency:      wire.Currency,
		Status:        "success",
		Reference:     wire.Reference,
		Authorization: cardAuthorization{
			AuthorizationCode: fmt.Sprintf("AUTH_%d", now),
			CardType:          "visa",
			Last4:             cardLast4(wire.CardNumber),
			ExpMonth:          wire.ExpiryMonth,
			ExpYear:           wire.ExpiryYear,
			BIN:               cardBIN(wire.CardNumber),
			Bank:              "Sample Bank",
		},
	}

	body, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}

	return &Result{
		Status:       resp.Status,
		ProviderTxID: resp.TransactionID,
		Response:     body,
	}, nil
}

func (a *CardAdapter) post(ctx context.Context, wire cardRequest) (*Result, error) {
	payload, err := json.Marshal(wire)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/v1/charges", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if a.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	}

	httpResp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("card: charge returned %d", httpResp.StatusCode)
	}

	var resp cardResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	result := &Result{
		Status:       resp.Status,
		ProviderTxID: resp.TransactionID,
		Response:     body,
	}

	if resp.Status != "success" {
		return result, fmt.Errorf("%w: card status %s (%s)", ErrDeclined, resp.Status, resp.Message)
	}

	return result, nil
}
