package http

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"time"

	"solar-portal/internal/observability/metrics"
	sizingapp "solar-portal/internal/sizing/application"
	sizing "solar-portal/internal/sizing/domain"
)

// CalculatorHandler serves the public sizing calculator endpoint.
type CalculatorHandler struct {
	config sizingapp.Config
}

// NewCalculatorHandler constructs a calculator handler.
func NewCalculatorHandler(config sizingapp.Config) *CalculatorHandler {
	return &CalculatorHandler{config: config}
}

type calculatorRequest struct {
	MonthlyBillAmount    float64 `json:"monthly_bill"`
	RoofAreaSquareMeters float64 `json:"roof_area"`
	Region               string  `json:"region"`
}

type calculatorResponse struct {
	RecommendedCapacityKw    float64  `json:"recommended_capacity_kw"`
	MonthlyConsumptionUnits  float64  `json:"monthly_consumption_units"`
	RequiredAreaSqm          float64  `json:"required_area_sqm"`
	TotalCost                float64  `json:"total_cost"`
	MonthlyGenerationUnits   float64  `json:"monthly_generation_units"`
	MonthlySavings           float64  `json:"monthly_savings"`
	AnnualSavings            float64  `json:"annual_savings"`
	PaybackYears             *float64 `json:"payback_years"`
	AnnualCarbonOffsetTonnes float64  `json:"annual_carbon_offset_tonnes"`
	NetMeteringEligible      bool     `json:"net_metering_eligible"`
}

// ServeHTTP handles POST /api/v1/solar-calculator.
func (h *CalculatorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		metrics.ObserveSizing(metrics.ResultError, time.Since(start))
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req calculatorRequest
	if err := json.Unmarshal(body, &req); err != nil {
		metrics.ObserveSizing(metrics.ResultError, time.Since(start))
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	calculator, err := sizing.NewCalculator(h.config.ParametersForRegion(req.Region))
	if err != nil {
		metrics.ObserveSizing(metrics.ResultError, time.Since(start))
		http.Error(w, "sizing parameters unavailable", http.StatusInternalServerError)
		return
	}

	rec := calculator.Compute(sizing.Input{
		MonthlyBillAmount:    req.MonthlyBillAmount,
		RoofAreaSquareMeters: req.RoofAreaSquareMeters,
	})
	w.Header().Set("Content-Type", "application/json")
	if rec == nil {
		// Incomplete form: the contract is an empty recommendation, not an
		// error.
		metrics.ObserveSizing(metrics.ResultSuccess, time.Since(start))
		_, _ = w.Write([]byte("null\n"))
		return
	}
	metrics.ObserveSizing(metrics.ResultSuccess, time.Since(start))
	_ = json.NewEncoder(w).Encode(toResponse(rec))
}

func toResponse(rec *sizing.Recommendation) calculatorResponse {
	resp := calculatorResponse{
		RecommendedCapacityKw:    rec.RecommendedCapacityKw,
		MonthlyConsumptionUnits:  rec.MonthlyConsumptionUnits,
		RequiredAreaSqm:          rec.RequiredAreaSqm,
		TotalCost:                rec.TotalCost,
		MonthlyGenerationUnits:   rec.MonthlyGenerationUnits,
		MonthlySavings:           rec.MonthlySavings,
		AnnualSavings:            rec.AnnualSavings,
		AnnualCarbonOffsetTonnes: rec.AnnualCarbonOffsetTonnes,
		NetMeteringEligible:      rec.NetMeteringEligible,
	}
	if !math.IsInf(rec.PaybackYears, 1) {
		payback := rec.PaybackYears
		resp.PaybackYears = &payback
	}
	return resp
}
