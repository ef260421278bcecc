package application

import (
	"os"
	"path/filepath"
	"testing"

	sizing "solar-portal/internal/sizing/domain"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	params := cfg.ParametersForRegion("")
	if params != sizing.DefaultParameters() {
		t.Fatalf("expected defaults, got %+v", params)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("SIZING_RATE_PER_UNIT", "30")
	t.Setenv("SIZING_COST_PER_KW", "75000")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	params := cfg.ParametersForRegion("")
	if params.ElectricityRatePerUnit != 30 {
		t.Fatalf("expected rate 30, got %v", params.ElectricityRatePerUnit)
	}
	if params.CostPerKw != 75000 {
		t.Fatalf("expected cost 75000, got %v", params.CostPerKw)
	}
	if params.PeakSunHours != sizing.DefaultParameters().PeakSunHours {
		t.Fatalf("untouched field changed: %v", params.PeakSunHours)
	}
}

func TestLoadConfig_YAMLRegions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sizing.yaml")
	data := []byte(`
defaults:
  electricity_rate_per_unit: 28
regions:
  north:
    peak_sun_hours: 4.2
  south:
    peak_sun_hours: 6.1
    cost_per_kw: 70000
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SIZING_CONFIG", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	north := cfg.ParametersForRegion("north")
	if north.ElectricityRatePerUnit != 28 {
		t.Fatalf("expected default override 28, got %v", north.ElectricityRatePerUnit)
	}
	if north.PeakSunHours != 4.2 {
		t.Fatalf("expected north peak sun 4.2, got %v", north.PeakSunHours)
	}

	south := cfg.ParametersForRegion("south")
	if south.CostPerKw != 70000 {
		t.Fatalf("expected south cost 70000, got %v", south.CostPerKw)
	}

	unknown := cfg.ParametersForRegion("east")
	if unknown.PeakSunHours != sizing.DefaultParameters().PeakSunHours {
		t.Fatalf("unknown region should use defaults, got %v", unknown.PeakSunHours)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Setenv("SIZING_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
