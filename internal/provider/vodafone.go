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

// VodafoneAdapter processes charges through the Vodafone Cash API.
type VodafoneAdapter struct {
	cfg    Config
	client *http.Client
}

// NewVodafoneAdapter creates a new Vodafone Cash adapter.
func NewVodafoneAdapter(cfg Config) *VodafoneAdapter {
	return &VodafoneAdapter{cfg: cfg, client: newHTTPClient()}
}

// Name returns the provider name this adapter serves.
func (a *VodafoneAdapter) Name() string {
	return VodafoneCash
}

// vodaRequest is the Vodafone Cash payment wire shape.
type vodaRequest struct {
	Reference   string  `json:"reference"`
	Amount      float64 `json:"amount"`
	Phone       string  `json:"phone"`
	Description string  `json:"description"`
}

// vodaResponse is the Vodafone Cash response wire shape.
type vodaResponse struct {
	TransactionID string  `json:"transactionId"`
	Reference     string  `json:"reference"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
	Message       string  `json:"message,omitempty"`
}

// Process executes a payment against Vodafone Cash.
func (a *VodafoneAdapter) Process(ctx context.Context, req Request) (*Result, error) {
	wire := vodaRequest{
		Reference:   req.Reference,
		Amount:      req.Amount,
		Phone:       req.Phone,
		Description: req.Description,
	}

	log.Printf("vodafone: pay reference=%s phone=%s amount=%.2f", wire.Reference, wire.Phone, wire.Amount)

	if a.cfg.Mock {
		return a.simulate(ctx, wire, req.Currency)
	}
	return a.post(ctx, wire)
}

func (a *VodafoneAdapter) simulate(ctx context.Context, wire vodaRequest, currency string) (*Result, error) {
	if err := sleep(ctx, a.cfg.Latency); err != nil {
		return nil, err
	}

	resp := vodaResponse{
		TransactionID: fmt.Sprintf("voda_%d", time.Now().UnixMilli()),
		Reference:     wire.Reference,
		Amount:        wire.Amount,
		Currency:      currency,
		Status:        "SUCCESS",
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

func (a *VodafoneAdapter) post(ctx context.Context, wire vodaRequest) (*Result, error) {
	payload, err := json.Marshal(wire)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/v1/payments", bytes.NewReader(payload))
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
		return nil, fmt.Errorf("vodafone: pay returned %d", httpResp.StatusCode)
	}

	var resp vodaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	result := &Result{
		Status:       resp.Status,
		ProviderTxID: resp.TransactionID,
		Response:     body,
	}

	if resp.Status != "SUCCESS" {
		return result, fmt.Errorf("%w: vodafone status %s (%s)", ErrDeclined, resp.Status, resp.Message)
	}

	return result, nil
}
