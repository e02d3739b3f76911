package detour

import "math"

const (
	chartMargin   = 1.3
	chartMinRange = 5.0
	chartSteps    = 100
)

// ChartPoint is one sample of the net gain vs detour distance chart.
type ChartPoint struct {
	TotalDist float64 `json:"totalDist"`
	NetGain   float64 `json:"netGain"`
}

// Series samples the net gain (in kilometers of fuel left over) from 0 up
// to 130% of the break-even distance, never less than 5 km. It returns
// nil when the inputs are not valid.
func Series(r Result, valid bool) []ChartPoint {
	if !valid {
		return nil
	}

	breakEven := r.ExtraKms
	maxRange := math.Max(breakEven*chartMargin, chartMinRange)
	step := maxRange / chartSteps

	points := make([]ChartPoint, 0, chartSteps+1)
	for i := 0; i <= chartSteps; i++ {
		distance := float64(i) * step
		points = append(points, ChartPoint{
			TotalDist: round(distance, 2),
			NetGain:   round(breakEven-distance, 2),
		})
	}
	return points
}

func round(v float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}
