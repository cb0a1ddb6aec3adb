package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ridepay/internal/domain"
	"ridepay/internal/provider"
	"ridepay/internal/service"
)

// PaymentMethodHandler handles HTTP requests for payment methods.
type PaymentMethodHandler struct {
	methodService *service.MethodService
}

// NewPaymentMethodHandler creates a new PaymentMethodHandler.
func NewPaymentMethodHandler(methodService *service.MethodService) *PaymentMethodHandler {
	return &PaymentMethodHandler{methodService: methodService}
}

// AccountDetailsRequest carries the instrument fields of a payment method.
type AccountDetailsRequest struct {
	Phone          string `json:"phone"`
	CardNumber     string `json:"card_number"`
	ExpiryMonth    string `json:"expiry_month"`
	ExpiryYear     string `json:"expiry_year"`
	CVV            string `json:"cvv"`
	CardholderName string `json:"cardholder_name"`
}

// AddPaymentMethodRequest is the HTTP request body for registering a method.
type AddPaymentMethodRequest struct {
	OwnerID        string                `json:"owner_id"`
	Kind           string                `json:"type"`
	Provider       string                `json:"provider"`
	AccountDetails AccountDetailsRequest `json:"account_details"`
	IsDefault      bool                  `json:"is_default"`
}

// PaymentMethodResponse is the HTTP response for payment method data.
// Card numbers are masked; the CVV is never returned.
type PaymentMethodResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Kind      string    `json:"type"`
	Provider  string    `json:"provider"`
	Phone     string    `json:"phone,omitempty"`
	CardLast4 string    `json:"card_last4,omitempty"`
	IsDefault bool      `json:"is_default"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Add handles POST /v1/payment-methods
func (h *PaymentMethodHandler) Add(c *gin.Context) {
	var req AddPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.OwnerID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "owner_id is required"})
		return
	}

	method, err := h.methodService.Add(c.Request.Context(), service.AddMethodRequest{
		OwnerID:  req.OwnerID,
		Kind:     domain.PaymentKind(req.Kind),
		Provider: req.Provider,
		AccountDetails: domain.AccountDetails{
			Phone:          req.AccountDetails.Phone,
			CardNumber:     req.AccountDetails.CardNumber,
			ExpiryMonth:    req.AccountDetails.ExpiryMonth,
			ExpiryYear:     req.AccountDetails.ExpiryYear,
			CVV:            req.AccountDetails.CVV,
			CardholderName: req.AccountDetails.CardholderName,
		},
		IsDefault: req.IsDefault,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toMethodResponse(method))
}

// List handles GET /v1/payment-methods
func (h *PaymentMethodHandler) List(c *gin.Context) {
	ownerID := c.Query("owner_id")

	methods, err := h.methodService.List(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]PaymentMethodResponse, 0, len(methods))
	for _, method := range methods {
		response = append(response, toMethodResponse(method))
	}

	respondJSON(c, http.StatusOK, response)
}

// SetDefaultRequest is the HTTP request body for changing the default method.
type SetDefaultRequest struct {
	OwnerID string `json:"owner_id"`
}

// SetDefault handles POST /v1/payment-methods/:id/default
func (h *PaymentMethodHandler) SetDefault(c *gin.Context) {
	var req SetDefaultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	method, err := h.methodService.SetDefault(c.Request.Context(), req.OwnerID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toMethodResponse(method))
}

func toMethodResponse(method *domain.PaymentMethod) PaymentMethodResponse {
	resp := PaymentMethodResponse{
		ID:        method.ID,
		OwnerID:   method.OwnerID,
		Kind:      string(method.Kind),
		Provider:  method.Provider,
		Phone:     method.AccountDetails.Phone,
		IsDefault: method.IsDefault,
		Status:    string(method.Status),
		CreatedAt: method.CreatedAt,
	}
	if method.AccountDetails.CardNumber != "" {
		resp.CardLast4 = provider.MaskCard(method.AccountDetails.CardNumber)
	}
	return resp
}
