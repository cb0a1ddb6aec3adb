package domain

// RideTier selects the pricing tier for a ride.
type RideTier string

const (
	RideTierStandard RideTier = "standard"
	RideTierPremium  RideTier = "premium"
)

// FareBreakdown is a priced breakdown of a trip. It is computed on demand
// and never persisted independently of a transaction.
type FareBreakdown struct {
	BaseFare     float64
	DistanceFare float64
	TimeFare     float64
	Total        float64
	Currency     string
}
