package detour

import "math"

// Result holds the break-even metrics derived from a FuelData.
type Result struct {
	// SavingsEuro is what the cheaper station saves on the whole refuel.
	SavingsEuro float64 `json:"savingsEuro"`
	// CostPerKm is the fuel cost of one kilometer at the off-route price.
	// It is not clamped and may be non-finite when consumption is 0.
	CostPerKm float64 `json:"costPerKm"`
	// ExtraKms is the total extra distance the savings pay for.
	ExtraKms float64 `json:"extraKms"`
	// MaxOneWayDistance is ExtraKms split over the way there and back.
	MaxOneWayDistance float64 `json:"maxOneWayDistance"`
}

// Compute derives the savings and break-even distances from d. It never
// fails: invalid inputs are the caller's concern, negative outcomes are
// clamped to zero.
func Compute(d FuelData) Result {
	savings := math.Max(0, (d.PriceOnRoad-d.PriceOffRoad)*d.LitersToRefuel)
	costPerKm := d.PriceOffRoad / d.ConsumptionKmL
	extraKms := math.Max(0, savings/costPerKm)

	return Result{
		SavingsEuro:       savings,
		CostPerKm:         costPerKm,
		ExtraKms:          extraKms,
		MaxOneWayDistance: math.Max(0, extraKms/2),
	}
}

// Worthwhile reports whether a detour of oneWayKm kilometers each way is
// paid for by the savings.
func (r Result) Worthwhile(oneWayKm float64) bool {
	return r.SavingsEuro > 0 && oneWayKm <= r.MaxOneWayDistance
}

// NetGain is what remains of the savings after driving oneWayKm there
// and back at the off-route cost per kilometer.
func (r Result) NetGain(oneWayKm float64) float64 {
	return r.SavingsEuro - 2*oneWayKm*r.CostPerKm
}

// Finite reports whether every metric is a finite number. Valid inputs
// can still overflow, e.g. with a subnormal off-route price.
func (r Result) Finite() bool {
	for _, v := range []float64{r.SavingsEuro, r.CostPerKm, r.ExtraKms, r.MaxOneWayDistance} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}
