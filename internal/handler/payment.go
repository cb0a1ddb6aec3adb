package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridepay/internal/service"
)

// PaymentHandler handles HTTP requests for ride payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// ProcessRidePaymentRequest is the HTTP request body for charging a ride.
type ProcessRidePaymentRequest struct {
	RideID          string  `json:"ride_id"`
	OwnerID         string  `json:"owner_id"`
	Amount          float64 `json:"amount"`
	PaymentMethodID string  `json:"payment_method_id"`
	TransactionRef  string  `json:"transaction_ref"`
	IdempotencyKey  string  `json:"idempotency_key"`
}

// RidePaymentResponse is the HTTP response for a payment attempt.
type RidePaymentResponse struct {
	Success     bool                 `json:"success"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
	ErrorCode   string               `json:"error_code,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// ProcessRidePayment handles POST /v1/payments/ride
func (h *PaymentHandler) ProcessRidePayment(c *gin.Context) {
	var req ProcessRidePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result := h.paymentService.ProcessRidePayment(c.Request.Context(), service.ProcessRidePaymentRequest{
		RideID:          req.RideID,
		OwnerID:         req.OwnerID,
		Amount:          req.Amount,
		PaymentMethodID: req.PaymentMethodID,
		TransactionRef:  req.TransactionRef,
		IdempotencyKey:  req.IdempotencyKey,
	})

	if !result.Success {
		respondJSON(c, statusForCode(result.ErrorCode), RidePaymentResponse{
			Success:   false,
			ErrorCode: result.ErrorCode,
			Error:     result.Error,
		})
		return
	}

	txn := toTransactionResponse(result.Transaction)
	respondJSON(c, http.StatusCreated, RidePaymentResponse{
		Success:     true,
		Transaction: &txn,
	})
}

// statusForCode maps a payment failure code to an HTTP status.
func statusForCode(code string) int {
	switch code {
	case service.CodePaymentMethodNotFound:
		return http.StatusNotFound
	case service.CodeUnsupportedPaymentMethod,
		service.CodeUnsupportedProvider,
		service.CodeIncompletePaymentMethod,
		service.CodeInvalidRequest:
		return http.StatusBadRequest
	case service.CodeProviderError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
