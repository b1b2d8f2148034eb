package helper

import "errors"

// ErrZeroCapacity is returned instead of dividing by zero; callers must
// surface it, never treat it as 0%.
var ErrZeroCapacity = errors.New("capacity is zero")

// Utilization bands. Policy thresholds, not hard constants.
const (
	BandEmpty  = "empty"
	BandLow    = "low"
	BandMedium = "medium"
	BandHigh   = "high"
	BandFull   = "full"
)

// Utilization returns occupancy/capacity as a percentage. The raw value
// may exceed 100 when a position is over-packed; callers treat >=100 as
// at-or-over capacity.
func Utilization(occupancy, capacity int64) (float64, error) {
	if capacity == 0 {
		return 0, ErrZeroCapacity
	}
	return float64(occupancy) / float64(capacity) * 100, nil
}

// UtilizationBand classifies a percentage: 0 empty, (0,50) low,
// [50,80) medium, [80,100) high, >=100 full.
func UtilizationBand(pct float64) string {
	switch {
	case pct <= 0:
		return BandEmpty
	case pct < 50:
		return BandLow
	case pct < 80:
		return BandMedium
	case pct < 100:
		return BandHigh
	default:
		return BandFull
	}
}
