package service

import (
	"math"

	"ridepay/internal/domain"
)

// Fare pricing constants, in GHS.
const (
	fareBaseStandard = 3.00
	fareBasePremium  = 5.00
	farePerKmStandard = 1.50
	farePerKmPremium  = 2.50
	farePerMinute     = 0.25
)

// FareService computes fare breakdowns for rides.
type FareService struct{}

// NewFareService creates a new FareService.
func NewFareService() *FareService {
	return &FareService{}
}

// Calculate prices a trip from its distance (km) and duration (minutes).
// Inputs are assumed non-negative; callers validate before invoking.
// Unknown tiers price as standard.
func (s *FareService) Calculate(distanceKm, durationMin float64, tier domain.RideTier) domain.FareBreakdown {
	base := fareBaseStandard
	perKm := farePerKmStandard
	if tier == domain.RideTierPremium {
		base = fareBasePremium
		perKm = farePerKmPremium
	}

	distanceFare := distanceKm * perKm
	timeFare := durationMin * farePerMinute

	return domain.FareBreakdown{
		BaseFare:     base,
		DistanceFare: distanceFare,
		TimeFare:     timeFare,
		Total:        round2(base + distanceFare + timeFare),
		Currency:     domain.CurrencyGHS,
	}
}

// round2 rounds to two decimal places, half up.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
