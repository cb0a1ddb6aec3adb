package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ridepay/internal/domain"
	"ridepay/internal/service"
)

// FareHandler handles HTTP requests for fare estimates.
type FareHandler struct {
	fareService *service.FareService
}

// NewFareHandler creates a new FareHandler.
func NewFareHandler(fareService *service.FareService) *FareHandler {
	return &FareHandler{fareService: fareService}
}

// FareResponse is the HTTP response for a fare estimate.
type FareResponse struct {
	BaseFare     float64 `json:"base_fare"`
	DistanceFare float64 `json:"distance_fare"`
	TimeFare     float64 `json:"time_fare"`
	Total        float64 `json:"total"`
	Currency     string  `json:"currency"`
}

// Estimate handles GET /v1/fare/estimate
func (h *FareHandler) Estimate(c *gin.Context) {
	distance, err := strconv.ParseFloat(c.Query("distance_km"), 64)
	if err != nil || distance < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "distance_km must be a non-negative number"})
		return
	}

	duration, err := strconv.ParseFloat(c.Query("duration_min"), 64)
	if err != nil || duration < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "duration_min must be a non-negative number"})
		return
	}

	tier := domain.RideTier(c.DefaultQuery("tier", string(domain.RideTierStandard)))
	if tier != domain.RideTierStandard && tier != domain.RideTierPremium {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "tier must be standard or premium"})
		return
	}

	fare := h.fareService.Calculate(distance, duration, tier)

	respondJSON(c, http.StatusOK, FareResponse{
		BaseFare:     fare.BaseFare,
		DistanceFare: fare.DistanceFare,
		TimeFare:     fare.TimeFare,
		Total:        fare.Total,
		Currency:     fare.Currency,
	})
}
