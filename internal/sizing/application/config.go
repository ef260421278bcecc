package application

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	sizing "solar-portal/internal/sizing/domain"
)

// RegionParameters mirrors sizing.Parameters for YAML loading. Zero fields
// fall back to the defaults, so a region only lists what it overrides.
type RegionParameters struct {
	ElectricityRatePerUnit float64 `yaml:"electricity_rate_per_unit"`
	PeakSunHours           float64 `yaml:"peak_sun_hours"`
	SystemLossFactor       float64 `yaml:"system_loss_factor"`
	CostPerKw              float64 `yaml:"cost_per_kw"`
	AreaPerKwSqm           float64 `yaml:"area_per_kw_sqm"`
}

// Config defines sizing configuration: default parameters plus per-region
// overrides.
type Config struct {
	Defaults RegionParameters            `yaml:"defaults"`
	Regions  map[string]RegionParameters `yaml:"regions"`
}

// LoadConfig loads sizing config from the SIZING_CONFIG yaml file, with env
// fallbacks for the default region.
func LoadConfig() (Config, error) {
	base := sizing.DefaultParameters()
	cfg := Config{
		Defaults: RegionParameters{
			ElectricityRatePerUnit: getenvFloatDefault("SIZING_RATE_PER_UNIT", base.ElectricityRatePerUnit),
			PeakSunHours:           getenvFloatDefault("SIZING_PEAK_SUN_HOURS", base.PeakSunHours),
			SystemLossFactor:       getenvFloatDefault("SIZING_LOSS_FACTOR", base.SystemLossFactor),
			CostPerKw:              getenvFloatDefault("SIZING_COST_PER_KW", base.CostPerKw),
			AreaPerKwSqm:           getenvFloatDefault("SIZING_AREA_PER_KW", base.AreaPerKwSqm),
		},
	}

	if path := os.Getenv("SIZING_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// ParametersForRegion resolves effective parameters for a region.
func (c Config) ParametersForRegion(region string) sizing.Parameters {
	params := mergeParameters(sizing.DefaultParameters(), c.Defaults)
	if c.Regions != nil {
		if override, ok := c.Regions[region]; ok {
			params = mergeParameters(params, override)
		}
	}
	return params
}

func mergeParameters(base sizing.Parameters, override RegionParameters) sizing.Parameters {
	if override.ElectricityRatePerUnit > 0 {
		base.ElectricityRatePerUnit = override.ElectricityRatePerUnit
	}
	if override.PeakSunHours > 0 {
		base.PeakSunHours = override.PeakSunHours
	}
	if override.SystemLossFactor > 0 {
		base.SystemLossFactor = override.SystemLossFactor
	}
	if override.CostPerKw > 0 {
		base.CostPerKw = override.CostPerKw
	}
	if override.AreaPerKwSqm > 0 {
		base.AreaPerKwSqm = override.AreaPerKwSqm
	}
	return base
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
