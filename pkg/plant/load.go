package plant

import "fmt"

// ThermalLoad converts a rated capacity and a utilization fraction into a
// heat-flow rate and resolves the outlet temperature of its cooling loop
// via a linear energy balance. It has no state beyond configuration; both
// the liquid-cooled compute cluster and the air-cooled building load are
// instances of it with different working fluids.
type ThermalLoad struct {
	name     string
	ratedW   float64 // W at utilization 1
	maxTempC float64
	cp       float64 // J/(kg K) of the loop fluid

	// populated for the compute instance only
	gpuModel string
	units    int
}

// NewThermalLoad builds a load rated at ratedMW with an outlet temperature
// ceiling of maxTempC, cooled by a fluid with specific heat cp.
func NewThermalLoad(name string, ratedMW, maxTempC, cp float64) (*ThermalLoad, error) {
	if ratedMW <= 0 {
		return nil, fmt.Errorf("%w: %s rated load %v MW, must be > 0", ErrConfiguration, name, ratedMW)
	}
	if maxTempC <= 0 || maxTempC >= 100 {
		return nil, fmt.Errorf("%w: %s max temp %v C, must be in (0, 100)", ErrConfiguration, name, maxTempC)
	}
	if cp <= 0 {
		return nil, fmt.Errorf("%w: %s specific heat %v, must be > 0", ErrConfiguration, name, cp)
	}
	return &ThermalLoad{name: name, ratedW: ratedMW * 1e6, maxTempC: maxTempC, cp: cp}, nil
}

// NewGPULoad builds the compute instance, deriving the unit count from the
// per-device thermal design power.
func NewGPULoad(model string, tdpW, ratedMW, maxTempC, cp float64) (*ThermalLoad, error) {
	if tdpW <= 0 {
		return nil, fmt.Errorf("%w: TDP %v W, must be > 0", ErrConfiguration, tdpW)
	}
	l, err := NewThermalLoad("gpu", ratedMW, maxTempC, cp)
	if err != nil {
		return nil, err
	}
	l.gpuModel = model
	l.units = int(l.ratedW / tdpW)
	return l, nil
}

// HeatLoad returns the heat-flow rate in W at the given utilization.
// Values outside [0, 1] scale proportionally; constraining utilization is
// the caller's responsibility.
func (l *ThermalLoad) HeatLoad(utilization float64) float64 {
	return l.ratedW * utilization
}

// OutletTemperature solves T_out = T_in + q/(mDot cp) for the current
// heat flow q (W) and loop mass flow mDot (kg/s).
func (l *ThermalLoad) OutletTemperature(tIn, q, mDot float64) (float64, error) {
	if mDot <= 0 {
		return 0, fmt.Errorf("%w: %s mass flow %v kg/s, must be > 0", ErrDomain, l.name, mDot)
	}
	return tIn + q/(mDot*l.cp), nil
}

// MinimumFlow returns the smallest mass flow (kg/s) that holds the outlet
// at or below tTarget for the full rated load entering at tIn.
func (l *ThermalLoad) MinimumFlow(tIn, tTarget float64) (float64, error) {
	if tTarget <= tIn {
		return 0, fmt.Errorf("%w: %s target %v C must exceed inlet %v C", ErrDomain, l.name, tTarget, tIn)
	}
	return l.ratedW / (l.cp * (tTarget - tIn)), nil
}

// ConstraintSatisfied reports whether tOut meets the temperature ceiling.
// The ceiling itself is still in range.
func (l *ThermalLoad) ConstraintSatisfied(tOut float64) bool {
	return tOut <= l.maxTempC
}

// Rated returns the rated load in W.
func (l *ThermalLoad) Rated() float64 { return l.ratedW }

// MaxTemp returns the outlet temperature ceiling in C.
func (l *ThermalLoad) MaxTemp() float64 { return l.maxTempC }

// Units returns the device count for the compute instance, 0 otherwise.
func (l *ThermalLoad) Units() int { return l.units }

// Model returns the device model for the compute instance, "" otherwise.
func (l *ThermalLoad) Model() string { return l.gpuModel }
