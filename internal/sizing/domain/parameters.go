package sizing

import "errors"

// StandardCapacityLadder lists the sellable system sizes in kW, ascending.
var StandardCapacityLadder = []float64{1, 2, 3, 5, 7, 10, 15, 20, 25, 30, 40, 50}

const (
	// NetMeteringMinimumKw is the smallest capacity eligible for net metering.
	NetMeteringMinimumKw = 5.0
	// GrossMeteringMinimumKw is the smallest capacity eligible for gross metering.
	GrossMeteringMinimumKw = 1.0
	// GrossMeteringMaximumKw is the largest capacity eligible for gross metering.
	GrossMeteringMaximumKw = 50.0
)

// Parameters holds the region-specific constants driving the sizing algorithm.
type Parameters struct {
	ElectricityRatePerUnit float64
	PeakSunHours           float64
	SystemLossFactor       float64
	CostPerKw              float64
	AreaPerKwSqm           float64
}

// ErrInvalidParameters is returned when sizing parameters are not usable.
var ErrInvalidParameters = errors.New("sizing: invalid parameters")

// DefaultParameters returns the constants for the default service region.
func DefaultParameters() Parameters {
	return Parameters{
		ElectricityRatePerUnit: 25,
		PeakSunHours:           5.5,
		SystemLossFactor:       0.8,
		CostPerKw:              80000,
		AreaPerKwSqm:           100,
	}
}

// Validate checks that the parameters can drive a computation.
func (p Parameters) Validate() error {
	if p.ElectricityRatePerUnit <= 0 {
		return ErrInvalidParameters
	}
	if p.PeakSunHours <= 0 || p.SystemLossFactor <= 0 || p.SystemLossFactor > 1 {
		return ErrInvalidParameters
	}
	if p.CostPerKw <= 0 || p.AreaPerKwSqm <= 0 {
		return ErrInvalidParameters
	}
	return nil
}
