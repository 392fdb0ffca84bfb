package plant

import "fmt"

// CoolingTowerModel computes the water-side outcome of rejecting the
// condenser heat to ambient: outlet temperature from a fixed approach,
// the full water balance (evaporation, drift, blowdown, makeup), and fan
// power as a fixed fraction of the rejected heat.
type CoolingTowerModel struct {
	approachC    float64
	coc          float64
	drift        float64
	fanFraction  float64
	hfg          float64 // J/kg latent heat of vaporization
	makeupSilica float64 // ppm, 0 when no chemistry limit is configured
	maxSilica    float64 // ppm
}

// TowerPerformance is the outcome of one tower evaluation. Mass flows are
// in kg/s, fan power in W.
type TowerPerformance struct {
	TOutC float64

	// RangeC = T_in - T_out is informational; the energy-based
	// evaporation model does not use it. A negative range in a converged
	// state signals an infeasible configuration and is flagged by the
	// solver.
	RangeC float64

	MEvap     float64
	MDrift    float64
	MBlowdown float64
	MMakeup   float64

	WFanW float64
	COC   float64
}

// WaterSavings compares tower blowdown duty against a baseline COC.
type WaterSavings struct {
	BaselineCOC          float64
	OptimizedCOC         float64
	BlowdownReductionPct float64
	MaxSilicaPPM         float64
}

// NewCoolingTowerModel validates the tower design parameters. COC must
// exceed 1 by construction: blowdown is m_evap/(COC-1).
func NewCoolingTowerModel(approachC, coc, driftFraction, fanFraction, hfg float64) (*CoolingTowerModel, error) {
	if approachC <= 0 || approachC > 20 {
		return nil, fmt.Errorf("%w: tower approach %v C, must be in (0, 20]", ErrConfiguration, approachC)
	}
	if coc <= 1 {
		return nil, fmt.Errorf("%w: cycles of concentration %v, must be > 1", ErrConfiguration, coc)
	}
	if driftFraction < 0 || driftFraction > 0.01 {
		return nil, fmt.Errorf("%w: drift fraction %v, must be in [0, 0.01]", ErrConfiguration, driftFraction)
	}
	if fanFraction <= 0 {
		return nil, fmt.Errorf("%w: fan power fraction %v, must be > 0", ErrConfiguration, fanFraction)
	}
	if hfg <= 0 {
		return nil, fmt.Errorf("%w: latent heat %v J/kg, must be > 0", ErrConfiguration, hfg)
	}
	return &CoolingTowerModel{
		approachC:   approachC,
		coc:         coc,
		drift:       driftFraction,
		fanFraction: fanFraction,
		hfg:         hfg,
	}, nil
}

// WithSilicaLimits returns a copy of the tower carrying a water-chemistry
// limit: the configured COC may not exceed maxPPM/makeupPPM, the silica
// concentration ratio at which scaling begins.
func (t *CoolingTowerModel) WithSilicaLimits(makeupPPM, maxPPM float64) (*CoolingTowerModel, error) {
	if makeupPPM <= 0 || makeupPPM > 100 {
		return nil, fmt.Errorf("%w: makeup silica %v ppm, must be in (0, 100]", ErrConfiguration, makeupPPM)
	}
	if maxPPM <= makeupPPM {
		return nil, fmt.Errorf("%w: max silica %v ppm must exceed makeup %v ppm", ErrConfiguration, maxPPM, makeupPPM)
	}
	limited := *t
	limited.makeupSilica = makeupPPM
	limited.maxSilica = maxPPM
	if maxCOC := limited.MaxCOC(); t.coc > maxCOC {
		return nil, fmt.Errorf("%w: COC %v exceeds silica-limited maximum %.2f", ErrConfiguration, t.coc, maxCOC)
	}
	return &limited, nil
}

// Solve computes the tower water and power balance for a condenser heat
// rejection qCond (W), circulating water flow mCW (kg/s), inlet water
// temperature tIn (C), and ambient wet-bulb tWB (C).
//
// Evaporation is energy-based, m_evap = Q/h_fg, keeping the water balance
// exactly consistent with the condenser energy balance. Sensible heat
// carried by the tower air stream is neglected; the empirical
// 0.00153*range*m_cw estimate is deliberately not used.
func (t *CoolingTowerModel) Solve(qCond, mCW, tIn, tWB float64) (TowerPerformance, error) {
	if qCond < 0 {
		return TowerPerformance{}, fmt.Errorf("%w: condenser heat %v W, must be >= 0", ErrDomain, qCond)
	}
	if mCW <= 0 {
		return TowerPerformance{}, fmt.Errorf("%w: condenser-water flow %v kg/s, must be > 0", ErrDomain, mCW)
	}
	if tWB < -20 || tWB >= 50 {
		return TowerPerformance{}, fmt.Errorf("%w: wet-bulb %v C, must be in [-20, 50)", ErrDomain, tWB)
	}

	tOut := tWB + t.approachC

	mEvap := qCond / t.hfg
	mDrift := t.drift * mCW
	mBlowdown := mEvap / (t.coc - 1)

	return TowerPerformance{
		TOutC:     tOut,
		RangeC:    tIn - tOut,
		MEvap:     mEvap,
		MDrift:    mDrift,
		MBlowdown: mBlowdown,
		MMakeup:   mEvap + mDrift + mBlowdown,
		WFanW:     qCond * t.fanFraction,
		COC:       t.coc,
	}, nil
}

// Approach returns the design approach temperature in C.
func (t *CoolingTowerModel) Approach() float64 { return t.approachC }

// COC returns the configured cycles of concentration.
func (t *CoolingTowerModel) COC() float64 { return t.coc }

// MaxCOC returns the silica-limited maximum cycles of concentration, or 0
// when no chemistry limit is configured.
func (t *CoolingTowerModel) MaxCOC() float64 {
	if t.makeupSilica <= 0 {
		return 0
	}
	return t.maxSilica / t.makeupSilica
}

// WaterSavings reports the blowdown-fraction reduction of the configured
// COC relative to a baseline. Blowdown scales as 1/(COC-1), so the
// reduction is independent of the evaporation rate.
func (t *CoolingTowerModel) WaterSavings(baselineCOC float64) (WaterSavings, error) {
	if baselineCOC <= 1 {
		return WaterSavings{}, fmt.Errorf("%w: baseline COC %v, must be > 1", ErrConfiguration, baselineCOC)
	}
	base := 1 / (baselineCOC - 1)
	opt := 1 / (t.coc - 1)
	return WaterSavings{
		BaselineCOC:          baselineCOC,
		OptimizedCOC:         t.coc,
		BlowdownReductionPct: (base - opt) / base * 100,
		MaxSilicaPPM:         t.maxSilica,
	}, nil
}
