package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ridepay/internal/domain"
	"ridepay/internal/provider"
	"ridepay/internal/service"
)

// TransactionHandler handles HTTP requests for transaction history.
type TransactionHandler struct {
	ledger         *service.LedgerService
	receiptService *service.ReceiptService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledger *service.LedgerService, receiptService *service.ReceiptService) *TransactionHandler {
	return &TransactionHandler{ledger: ledger, receiptService: receiptService}
}

// TransactionResponse is the HTTP response for transaction data.
type TransactionResponse struct {
	ID               string          `json:"id"`
	OwnerID          string          `json:"owner_id"`
	RideID           string          `json:"ride_id,omitempty"`
	Amount           float64         `json:"amount"`
	Currency         string          `json:"currency"`
	PaymentMethodID  string          `json:"payment_method_id"`
	Kind             string          `json:"payment_type"`
	Status           string          `json:"status"`
	TransactionRef   string          `json:"transaction_ref"`
	ProviderResponse json.RawMessage `json:"provider_response,omitempty"`
	Provider         string          `json:"provider,omitempty"`
	Account          string          `json:"account,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// History handles GET /v1/transactions
func (h *TransactionHandler) History(c *gin.Context) {
	ownerID := c.Query("owner_id")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	txns, err := h.ledger.History(c.Request.Context(), ownerID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TransactionResponse, 0, len(txns))
	for _, txn := range txns {
		response = append(response, toTransactionResponse(txn))
	}

	respondJSON(c, http.StatusOK, response)
}

// AnalyticsResponse is the HTTP response for payment analytics.
type AnalyticsResponse struct {
	TotalTransactions int                            `json:"total_transactions"`
	TotalAmount       float64                        `json:"total_amount"`
	ByKind            map[string]service.KindSummary `json:"by_payment_type"`
	Recent            []TransactionResponse          `json:"recent_transactions"`
}

// Analytics handles GET /v1/transactions/analytics
func (h *TransactionHandler) Analytics(c *gin.Context) {
	ownerID := c.Query("owner_id")

	analytics, err := h.ledger.Analytics(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}

	byKind := make(map[string]service.KindSummary, len(analytics.ByKind))
	for kind, summary := range analytics.ByKind {
		byKind[string(kind)] = summary
	}

	recent := make([]TransactionResponse, 0, len(analytics.Recent))
	for _, txn := range analytics.Recent {
		recent = append(recent, toTransactionResponse(txn))
	}

	respondJSON(c, http.StatusOK, AnalyticsResponse{
		TotalTransactions: analytics.TotalTransactions,
		TotalAmount:       analytics.TotalAmount,
		ByKind:            byKind,
		Recent:            recent,
	})
}

// Receipt handles GET /v1/transactions/:id/receipt
func (h *TransactionHandler) Receipt(c *gin.Context) {
	txn, err := h.ledger.Get(c.Request.Context(), c.Query("owner_id"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.String(http.StatusOK, h.receiptService.FormatReceipt(txn, nil))
}

func toTransactionResponse(txn *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:               txn.ID,
		OwnerID:          txn.OwnerID,
		RideID:           txn.RideID,
		Amount:           txn.Amount,
		Currency:         txn.Currency,
		PaymentMethodID:  txn.PaymentMethodID,
		Kind:             string(txn.Kind),
		Status:           string(txn.Status),
		TransactionRef:   txn.TransactionRef,
		ProviderResponse: txn.ProviderResponse,
		Provider:         txn.MethodProvider,
		CreatedAt:        txn.CreatedAt,
	}

	// Show which instrument paid, masked for cards.
	switch {
	case txn.MethodDetails.Phone != "":
		resp.Account = txn.MethodDetails.Phone
	case txn.MethodDetails.CardNumber != "":
		resp.Account = provider.MaskCard(txn.MethodDetails.CardNumber)
	}

	return resp
}
