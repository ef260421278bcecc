package sizing

import "math"

// Input carries the customer-provided figures for a sizing request.
type Input struct {
	MonthlyBillAmount    float64
	RoofAreaSquareMeters float64
}

// Recommendation is the advisory output of the sizing algorithm. It is
// recomputed on every call and never persisted as authoritative state.
type Recommendation struct {
	RecommendedCapacityKw    float64
	MonthlyConsumptionUnits  float64
	RequiredAreaSqm          float64
	TotalCost                float64
	MonthlyGenerationUnits   float64
	MonthlySavings           float64
	AnnualSavings            float64
	PaybackYears             float64
	AnnualCarbonOffsetTonnes float64
	NetMeteringEligible      bool
}

// Calculator sizes a solar system from a bill and a roof area.
type Calculator struct {
	params Parameters
}

// NewCalculator constructs a calculator for one set of region parameters.
func NewCalculator(params Parameters) (*Calculator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{params: params}, nil
}

// Parameters returns the parameters the calculator was built with.
func (c *Calculator) Parameters() Parameters { return c.params }

// Compute runs the sizing algorithm. A nil result means the input was not
// usable (zero or negative bill or roof area); partially filled forms are
// expected and must not produce an error.
func (c *Calculator) Compute(input Input) *Recommendation {
	if input.MonthlyBillAmount <= 0 || input.RoofAreaSquareMeters <= 0 {
		return nil
	}
	p := c.params

	monthlyUnits := input.MonthlyBillAmount / p.ElectricityRatePerUnit
	dailyUnits := monthlyUnits / 30
	requiredCapacity := dailyUnits / (p.PeakSunHours * p.SystemLossFactor)

	capacity := roundUpToLadder(requiredCapacity)

	// Roof constraint: shrink to what the roof can carry, never below 1 kW.
	if capacity*p.AreaPerKwSqm > input.RoofAreaSquareMeters {
		capacity = math.Floor(input.RoofAreaSquareMeters / p.AreaPerKwSqm)
		if capacity < 1 {
			capacity = 1
		}
	}

	totalCost := capacity * p.CostPerKw
	monthlyGeneration := capacity * p.PeakSunHours * 30 * p.SystemLossFactor
	monthlySavings := monthlyGeneration * p.ElectricityRatePerUnit
	annualSavings := monthlySavings * 12

	payback := math.Inf(1)
	if annualSavings > 0 {
		payback = math.Round(totalCost/annualSavings*10) / 10
	}

	carbonOffset := monthlyGeneration * 12 * 0.453592 / 1000

	return &Recommendation{
		RecommendedCapacityKw:    capacity,
		MonthlyConsumptionUnits:  round2(monthlyUnits),
		RequiredAreaSqm:          capacity * p.AreaPerKwSqm,
		TotalCost:                totalCost,
		MonthlyGenerationUnits:   round2(monthlyGeneration),
		MonthlySavings:           round2(monthlySavings),
		AnnualSavings:            round2(annualSavings),
		PaybackYears:             payback,
		AnnualCarbonOffsetTonnes: round2(carbonOffset),
		NetMeteringEligible:      capacity >= NetMeteringMinimumKw,
	}
}

// roundUpToLadder picks the smallest ladder entry at or above the required
// capacity, clamped to the ladder ceiling.
func roundUpToLadder(required float64) float64 {
	for _, step := range StandardCapacityLadder {
		if step >= required {
			return step
		}
	}
	return StandardCapacityLadder[len(StandardCapacityLadder)-1]
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
