package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"
)

// MoMoAdapter processes charges through the MTN Mobile Money collections API.
type MoMoAdapter struct {
	cfg    Config
	client *http.Client
}

// NewMoMoAdapter creates a new MTN Mobile Money adapter.
func NewMoMoAdapter(cfg Config) *MoMoAdapter {
	return &MoMoAdapter{cfg: cfg, client: newHTTPClient()}
}

// Name returns the provider name this adapter serves.
func (a *MoMoAdapter) Name() string {
	return MTNMobileMoney
}

// momoRequest is the MTN MoMo request-to-pay wire shape.
type momoRequest struct {
	Amount       string    `json:"amount"`
	Currency     string    `json:"currency"`
	ExternalID   string    `json:"externalId"`
	Payer        momoParty `json:"payer"`
	PayerMessage string    `json:"payerMessage"`
	PayeeNote    string    `json:"payeeNote"`
}

type momoParty struct {
	PartyIDType string `json:"partyIdType"`
	PartyID     string `json:"partyId"`
}

// momoResponse is the MTN MoMo response wire shape.
type momoResponse struct {
	FinancialTransactionID string    `json:"financialTransactionId"`
	ExternalID             string    `json:"externalId"`
	Amount                 string    `json:"amount"`
	Currency               string    `json:"currency"`
	Payer                  momoParty `json:"payer"`
	PayerMessage           string    `json:"payerMessage"`
	PayeeNote              string    `json:"payeeNote"`
	Status                 string    `json:"status"`
	Reason                 string    `json:"reason,omitempty"`
}

// Process executes a request-to-pay against MTN MoMo.
func (a *MoMoAdapter) Process(ctx context.Context, req Request) (*Result, error) {
	wire := momoRequest{
		Amount:       strconv.FormatFloat(req.Amount, 'f', 2, 64),
		Currency:     req.Currency,
		ExternalID:   req.Reference,
		Payer:        momoParty{PartyIDType: "MSISDN", PartyID: req.Phone},
		PayerMessage: req.PayerMessage,
		PayeeNote:    req.PayeeNote,
	}

	log.Printf("momo: requesttopay externalId=%s msisdn=%s amount=%s", wire.ExternalID, wire.Payer.PartyID, wire.Amount)

	if a.cfg.Mock {
		return a.simulate(ctx, wire)
	}
	return a.post(ctx, wire)
}

// simulate mimics the provider round trip without network access.
func (a *MoMoAdapter) simulate(ctx context.Context, wire momoRequest) (*Result, error) {
	if err := sleep(ctx, a.cfg.Latency); err != nil {
		return nil, err
	}

	resp := momoResponse{
		FinancialTransactionID: fmt.Sprintf("mtn_%d", time.Now().UnixMilli()),
		ExternalID:             wire.ExternalID,
		Amount:                 wire.Amount,
		Currency:               wire.Currency,
		Payer:                  wire.Payer,
		PayerMessage:           wire.PayerMessage,
		PayeeNote:              wire.PayeeNote,
		Status:                 "SUCCESSFUL",
	}

	body, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}

	return &Result{
		Status:       resp.Status,
		ProviderTxID: resp.FinancialTransactionID,
		Response:     body,
	}, nil
}

func (a *MoMoAdapter) post(ctx context.Context, wire momoRequest) (*Result, error) {
	payload, err := json.Marshal(wire)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/collection/v1_0/requesttopay", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Reference-Id", wire.ExternalID)
	if a.cfg.APIKey != "" {
		httpReq.Header.Set("Ocp-Apim-Subscription-Key", a.cfg.APIKey)
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
		return nil, fmt.Errorf("momo: requesttopay returned %d", httpResp.StatusCode)
	}

	var resp momoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	result := &Result{
		Status:       resp.Status,
		ProviderTxID: resp.FinancialTransactionID,
		Response:     body,
	}

	if resp.Status != "SUCCESSFUL" {
		return result, fmt.Errorf("%w: momo status %s (%s)", ErrDeclined, resp.Status, resp.Reason)
	}

	return result, nil
}
