package sizing

import (
	"math"
	"testing"
)

func mustCalculator(t *testing.T) *Calculator {
	t.Helper()
	calc, err := NewCalculator(DefaultParameters())
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	return calc
}

func TestCompute_TypicalHousehold(t *testing.T) {
	calc := mustCalculator(t)

	rec := calc.Compute(Input{MonthlyBillAmount: 15000, RoofAreaSquareMeters: 600})
	if rec == nil {
		t.Fatal("expected a recommendation")
	}
	if rec.RecommendedCapacityKw != 5 {
		t.Fatalf("expected 5 kW, got %v", rec.RecommendedCapacityKw)
	}
	if rec.MonthlyConsumptionUnits != 600 {
		t.Fatalf("expected 600 units, got %v", rec.MonthlyConsumptionUnits)
	}
	if rec.TotalCost != 400000 {
		t.Fatalf("expected cost 400000, got %v", rec.TotalCost)
	}
	if rec.MonthlyGenerationUnits != 660 {
		t.Fatalf("expected 660 generated units, got %v", rec.MonthlyGenerationUnits)
	}
	if rec.PaybackYears != 2.0 {
		t.Fatalf("expected payback 2.0, got %v", rec.PaybackYears)
	}
	if !rec.NetMeteringEligible {
		t.Fatal("5 kW should be net metering eligible")
	}
	if rec.RequiredAreaSqm != 500 {
		t.Fatalf("expected 500 sqm required, got %v", rec.RequiredAreaSqm)
	}
}

func TestCompute_RoofShrinksCapacity(t *testing.T) {
	calc := mustCalculator(t)

	rec := calc.Compute(Input{MonthlyBillAmount: 15000, RoofAreaSquareMeters: 300})
	if rec == nil {
		t.Fatal("expected a recommendation")
	}
	if rec.RecommendedCapacityKw != 3 {
		t.Fatalf("expected roof-limited 3 kW, got %v", rec.RecommendedCapacityKw)
	}
	if rec.NetMeteringEligible {
		t.Fatal("3 kW must not be net metering eligible")
	}
}

func TestCompute_RoofFloorIsOneKw(t *testing.T) {
	calc := mustCalculator(t)

	rec := calc.Compute(Input{MonthlyBillAmount: 15000, RoofAreaSquareMeters: 50})
	if rec == nil {
		t.Fatal("expected a recommendation")
	}
	if rec.RecommendedCapacityKw != 1 {
		t.Fatalf("expected 1 kW floor, got %v", rec.RecommendedCapacityKw)
	}
}

func TestCompute_LadderCeiling(t *testing.T) {
	calc := mustCalculator(t)

	rec := calc.Compute(Input{MonthlyBillAmount: 1000000, RoofAreaSquareMeters: 10000})
	if rec == nil {
		t.Fatal("expected a recommendation")
	}
	if rec.RecommendedCapacityKw != 50 {
		t.Fatalf("expected ladder ceiling 50 kW, got %v", rec.RecommendedCapacityKw)
	}
}

func TestCompute_UnusableInput(t *testing.T) {
	calc := mustCalculator(t)

	cases := []Input{
		{MonthlyBillAmount: 0, RoofAreaSquareMeters: 100},
		{MonthlyBillAmount: -100, RoofAreaSquareMeters: 100},
		{MonthlyBillAmount: 5000, RoofAreaSquareMeters: 0},
		{MonthlyBillAmount: 5000, RoofAreaSquareMeters: -5},
	}
	for _, input := range cases {
		if rec := calc.Compute(input); rec != nil {
			t.Fatalf("expected nil recommendation for %+v, got %+v", input, rec)
		}
	}
}

func TestCompute_CapacityAlwaysOnLadder(t *testing.T) {
	calc := mustCalculator(t)
	onLadder := func(capacity float64) bool {
		for _, step := range StandardCapacityLadder {
			if step == capacity {
				return true
			}
		}
		return false
	}

	for bill := 500.0; bill <= 300000; bill += 3700 {
		rec := calc.Compute(Input{MonthlyBillAmount: bill, RoofAreaSquareMeters: 100000})
		if rec == nil {
			t.Fatalf("expected recommendation for bill %v", bill)
		}
		if !onLadder(rec.RecommendedCapacityKw) {
			t.Fatalf("capacity %v for bill %v is not a ladder step", rec.RecommendedCapacityKw, bill)
		}
	}
}

func TestCompute_CarbonOffset(t *testing.T) {
	calc := mustCalculator(t)

	rec := calc.Compute(Input{MonthlyBillAmount: 15000, RoofAreaSquareMeters: 600})
	if rec == nil {
		t.Fatal("expected a recommendation")
	}
	want := math.Round(660*12*0.453592/1000*100) / 100
	if rec.AnnualCarbonOffsetTonnes != want {
		t.Fatalf("expected %v tonnes, got %v", want, rec.AnnualCarbonOffsetTonnes)
	}
}

func TestNewCalculator_RejectsBadParameters(t *testing.T) {
	bad := DefaultParameters()
	bad.SystemLossFactor = 1.3
	if _, err := NewCalculator(bad); err == nil {
		t.Fatal("expected error for loss factor above 1")
	}

	bad = DefaultParameters()
	bad.ElectricityRatePerUnit = 0
	if _, err := NewCalculator(bad); err == nil {
		t.Fatal("expected error for zero rate")
	}
}
