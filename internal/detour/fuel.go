// Package detour decides whether driving off route to a cheaper fuel
// station pays off, given the refuel volume and the vehicle consumption.
//
// Everything in this package is pure and synchronous: the validation
// rules, the savings calculator and the chart series generator can be
// called from any goroutine. Form is the only stateful type and is owned
// by a single caller.
package detour

// Field names one input of FuelData. The string values double as JSON
// keys and as keys of the per-field configuration.
type Field string

const (
	PriceOnRoad    Field = "priceOnRoad"
	PriceOffRoad   Field = "priceOffRoad"
	LitersToRefuel Field = "litersToRefuel"
	ConsumptionKmL Field = "consumptionKmL"
)

// Fields lists every input in display order.
var Fields = []Field{PriceOnRoad, PriceOffRoad, LitersToRefuel, ConsumptionKmL}

// Valid reports whether f is a known field.
func (f Field) Valid() bool {
	switch f {
	case PriceOnRoad, PriceOffRoad, LitersToRefuel, ConsumptionKmL:
		return true
	}
	return false
}

// FuelData is the input record of the decision engine. Prices are in
// €/l, the refuel volume in liters and the consumption in km/l.
type FuelData struct {
	PriceOnRoad    float64 `json:"priceOnRoad" yaml:"price_on_road"`
	PriceOffRoad   float64 `json:"priceOffRoad" yaml:"price_off_road"`
	LitersToRefuel float64 `json:"litersToRefuel" yaml:"liters_to_refuel"`
	ConsumptionKmL float64 `json:"consumptionKmL" yaml:"consumption_km_l"`
}

// Get returns the value stored for field, 0 for unknown fields.
func (d FuelData) Get(field Field) float64 {
	switch field {
	case PriceOnRoad:
		return d.PriceOnRoad
	case PriceOffRoad:
		return d.PriceOffRoad
	case LitersToRefuel:
		return d.LitersToRefuel
	case ConsumptionKmL:
		return d.ConsumptionKmL
	}
	return 0
}

// With returns a copy of d with field set to v.
func (d FuelData) With(field Field, v float64) FuelData {
	switch field {
	case PriceOnRoad:
		d.PriceOnRoad = v
	case PriceOffRoad:
		d.PriceOffRoad = v
	case LitersToRefuel:
		d.LitersToRefuel = v
	case ConsumptionKmL:
		d.ConsumptionKmL = v
	}
	return d
}
