package plant

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the immutable description of one plant scenario: rated
// capacities, fixed fluid properties, and design set-points. A solver
// instance owns exactly one Config and never mutates it.
//
// Units: loads and capacities in MW, temperatures in C, specific heats in
// J/(kg K), latent heat in J/kg, fractions dimensionless.
type Config struct {
	Scenario string `yaml:"scenario" json:"scenario"`

	// IT loads
	GPULoadMW      float64 `yaml:"gpu_load_mw" json:"gpu_load_mw"`
	BuildingLoadMW float64 `yaml:"building_load_mw" json:"building_load_mw"`
	GPUModel       string  `yaml:"gpu_model" json:"gpu_model"`
	TDPPerGPUW     float64 `yaml:"tdp_per_gpu" json:"tdp_per_gpu"`
	Utilization    float64 `yaml:"utilization" json:"utilization"`

	// Temperature limits and set-points
	GPUMaxTempC      float64 `yaml:"gpu_max_temp" json:"gpu_max_temp"`
	BuildingMaxTempC float64 `yaml:"building_max_temp" json:"building_max_temp"`
	TCHWSupplyC      float64 `yaml:"t_chw_supply" json:"t_chw_supply"`
	TGPUInC          float64 `yaml:"t_gpu_in" json:"t_gpu_in"`
	TAirInC          float64 `yaml:"t_air_in" json:"t_air_in"`
	TWBAmbientC      float64 `yaml:"t_wb_ambient" json:"t_wb_ambient"`

	// Chiller
	ChillerRatedCapacityMW float64 `yaml:"chiller_rated_capacity_mw" json:"chiller_rated_capacity_mw"`
	ChillerRatedCOP        float64 `yaml:"chiller_rated_cop" json:"chiller_rated_cop"`

	// Cooling tower
	CoolingTowerApproachC float64 `yaml:"cooling_tower_approach" json:"cooling_tower_approach"`
	COC                   float64 `yaml:"coc" json:"coc"`
	DriftFraction         float64 `yaml:"drift_rate" json:"drift_rate"`
	MakeupSilicaPPM       float64 `yaml:"makeup_silica_ppm" json:"makeup_silica_ppm"`
	MaxSilicaPPM          float64 `yaml:"max_silica_ppm" json:"max_silica_ppm"`

	// Auxiliary power fractions. Named stand-ins for unmodeled fan and
	// hydraulic curves; override to substitute a better estimate.
	FanPowerFraction float64 `yaml:"fan_power_fraction" json:"fan_power_fraction"`
	CHWPumpFraction  float64 `yaml:"chw_pump_fraction" json:"chw_pump_fraction"`
	CWPumpFraction   float64 `yaml:"cw_pump_fraction" json:"cw_pump_fraction"`
	GPUPumpFraction  float64 `yaml:"gpu_pump_fraction" json:"gpu_pump_fraction"`

	// Fluid properties
	CpWater    float64 `yaml:"cp_water" json:"cp_water"`
	CpAir      float64 `yaml:"cp_air" json:"cp_air"`
	LatentHeat float64 `yaml:"latent_heat" json:"latent_heat"`

	// Design temperature deltas used to size the fixed loop flow rates.
	DesignDeltaGPUC float64 `yaml:"design_delta_gpu" json:"design_delta_gpu"`
	DesignDeltaCHWC float64 `yaml:"design_delta_chw" json:"design_delta_chw"`
	DesignDeltaCWC  float64 `yaml:"design_delta_cw" json:"design_delta_cw"`
	DesignDeltaAirC float64 `yaml:"design_delta_air" json:"design_delta_air"`

	// CondenserSizingFactor oversizes the condenser-water flow relative to
	// the evaporator load to cover compressor heat (Q_cond ~ 1.15 Q_evap
	// at COP ~ 6).
	CondenserSizingFactor float64 `yaml:"condenser_sizing_factor" json:"condenser_sizing_factor"`

	// Convergence control
	ToleranceC    float64 `yaml:"tolerance" json:"tolerance"`
	MaxIterations int     `yaml:"max_iterations" json:"max_iterations"`
}

// DefaultConfig returns the baseline 1 GW scenario.
func DefaultConfig() *Config {
	return &Config{
		Scenario:       "baseline",
		GPULoadMW:      900,
		BuildingLoadMW: 100,
		GPUModel:       "NVIDIA B200",
		TDPPerGPUW:     1200,
		Utilization:    1.0,

		GPUMaxTempC:      40.0,
		BuildingMaxTempC: 25.0,
		TCHWSupplyC:      10.0,
		TGPUInC:          15.0,
		TAirInC:          20.0,
		TWBAmbientC:      25.5,

		ChillerRatedCapacityMW: 1000,
		ChillerRatedCOP:        6.1,

		CoolingTowerApproachC: 4.0,
		COC:                   5.0,
		DriftFraction:         0.00001,

		FanPowerFraction: 0.007,
		CHWPumpFraction:  0.03,
		CWPumpFraction:   0.02,
		GPUPumpFraction:  0.015,

		CpWater:    4186,
		CpAir:      1005,
		LatentHeat: 2.26e6,

		DesignDeltaGPUC: 25.0,
		DesignDeltaCHWC: 5.0,
		DesignDeltaCWC:  5.5,
		DesignDeltaAirC: 5.0,

		CondenserSizingFactor: 1.15,

		ToleranceC:    0.01,
		MaxIterations: 100,
	}
}

// OptimizedConfig returns the water-optimized scenario: COC raised to 6
// under a silica concentration limit, everything else as baseline.
func OptimizedConfig() *Config {
	cfg := DefaultConfig()
	cfg.Scenario = "optimized"
	cfg.COC = 6.0
	cfg.MakeupSilicaPPM = 25
	cfg.MaxSilicaPPM = 150
	return cfg
}

// withDefaults merges cfg over the baseline. Positive values override;
// zero or negative keep the default, since none of these parameters has a
// meaningful zero. An idle scenario is expressed by passing utilization 0
// to Solve directly, not through the config.
func (c *Config) withDefaults() *Config {
	base := DefaultConfig()
	if c == nil {
		return base
	}

	merged := *base
	if c.Scenario != "" {
		merged.Scenario = c.Scenario
	}
	if c.GPUModel != "" {
		merged.GPUModel = c.GPUModel
	}
	if c.Utilization > 0 && c.Utilization <= 1 {
		merged.Utilization = c.Utilization
	}

	override := func(dst *float64, v float64) {
		if v > 0 {
			*dst = v
		}
	}
	override(&merged.GPULoadMW, c.GPULoadMW)
	override(&merged.BuildingLoadMW, c.BuildingLoadMW)
	override(&merged.TDPPerGPUW, c.TDPPerGPUW)
	override(&merged.GPUMaxTempC, c.GPUMaxTempC)
	override(&merged.BuildingMaxTempC, c.BuildingMaxTempC)
	override(&merged.TCHWSupplyC, c.TCHWSupplyC)
	override(&merged.TGPUInC, c.TGPUInC)
	override(&merged.TAirInC, c.TAirInC)
	override(&merged.TWBAmbientC, c.TWBAmbientC)
	override(&merged.ChillerRatedCapacityMW, c.ChillerRatedCapacityMW)
	override(&merged.ChillerRatedCOP, c.ChillerRatedCOP)
	override(&merged.CoolingTowerApproachC, c.CoolingTowerApproachC)
	override(&merged.COC, c.COC)
	override(&merged.DriftFraction, c.DriftFraction)
	override(&merged.MakeupSilicaPPM, c.MakeupSilicaPPM)
	override(&merged.MaxSilicaPPM, c.MaxSilicaPPM)
	override(&merged.FanPowerFraction, c.FanPowerFraction)
	override(&merged.CHWPumpFraction, c.CHWPumpFraction)
	override(&merged.CWPumpFraction, c.CWPumpFraction)
	override(&merged.GPUPumpFraction, c.GPUPumpFraction)
	override(&merged.CpWater, c.CpWater)
	override(&merged.CpAir, c.CpAir)
	override(&merged.LatentHeat, c.LatentHeat)
	override(&merged.DesignDeltaGPUC, c.DesignDeltaGPUC)
	override(&merged.DesignDeltaCHWC, c.DesignDeltaCHWC)
	override(&merged.DesignDeltaCWC, c.DesignDeltaCWC)
	override(&merged.DesignDeltaAirC, c.DesignDeltaAirC)
	override(&merged.CondenserSizingFactor, c.CondenserSizingFactor)
	override(&merged.ToleranceC, c.ToleranceC)
	if c.MaxIterations > 0 {
		merged.MaxIterations = c.MaxIterations
	}
	return &merged
}

// LoadConfig reads a scenario from a JSON or YAML file, chosen by
// extension, and merges it over the baseline defaults.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported config extension %q",
			ErrConfiguration, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrConfiguration, path, err)
	}
	return cfg.withDefaults(), nil
}
