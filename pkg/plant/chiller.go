package plant

import "fmt"

// ChillerModel computes compressor power and condenser heat rejection for
// a water-cooled chiller using a two-stage curve-fit performance model:
// CapFT and EIRFT correct the rated point for the actual chilled-water and
// condenser-water temperatures, EIRFPLR corrects for part load.
type ChillerModel struct {
	ratedCapacityW float64
	ratedCOP       float64
	tCHWSupplyC    float64
	curves         CurveSet
}

// ChillerPerformance is the outcome of one chiller evaluation. All heat
// and power flows are in W.
type ChillerPerformance struct {
	QEvapW float64
	QCondW float64
	WCompW float64

	// COP is 0 when QEvapW is 0 (not applicable, no division happened).
	COP float64

	// PLR is the unclamped part-load ratio; > 1 means the design is
	// oversubscribed, surfaced via Overloaded.
	PLR        float64
	Overloaded bool

	// Curve values at the evaluated point, for diagnostics.
	CapFT, EIRFT, EIRFPLR float64
}

// NewChillerModel validates the rated point and the curve table. The curve
// set is injected, never a process global; a malformed table fails here,
// not at first solve.
func NewChillerModel(ratedCapacityMW, ratedCOP, tCHWSupplyC float64, curves CurveSet) (*ChillerModel, error) {
	if ratedCapacityMW <= 0 {
		return nil, fmt.Errorf("%w: chiller rated capacity %v MW, must be > 0", ErrConfiguration, ratedCapacityMW)
	}
	if ratedCOP <= 0 || ratedCOP > 10 {
		return nil, fmt.Errorf("%w: chiller rated COP %v, must be in (0, 10]", ErrConfiguration, ratedCOP)
	}
	if tCHWSupplyC < 0 || tCHWSupplyC >= 30 {
		return nil, fmt.Errorf("%w: chilled-water supply %v C, must be in [0, 30)", ErrConfiguration, tCHWSupplyC)
	}
	if err := curves.Validate(); err != nil {
		return nil, err
	}
	return &ChillerModel{
		ratedCapacityW: ratedCapacityMW * 1e6,
		ratedCOP:       ratedCOP,
		tCHWSupplyC:    tCHWSupplyC,
		curves:         curves,
	}, nil
}

// Solve evaluates the performance model for an evaporator load qEvap (W)
// and a condenser-water inlet temperature tCWIn (C).
//
// EIRFPLR is evaluated with PLR clamped to [PLRMin, PLRMax]: the fit is
// not trusted to extrapolate below 10% part load, and above rated load the
// curve is held at its full-load value while the overload is surfaced
// through ChillerPerformance.Overloaded. CapFT and EIRFT are evaluated at
// the actual temperatures; a non-positive CapFT or a non-positive derived
// COP aborts the solve.
func (m *ChillerModel) Solve(qEvap, tCWIn float64) (ChillerPerformance, error) {
	if qEvap < 0 {
		return ChillerPerformance{}, fmt.Errorf("%w: evaporator load %v W, must be >= 0", ErrDomain, qEvap)
	}
	if qEvap == 0 {
		// Nothing to cool: zero power, COP not applicable.
		return ChillerPerformance{}, nil
	}

	plr := qEvap / m.ratedCapacityW

	capFT := m.curves[CurveCapFT].Biquadratic(m.tCHWSupplyC, tCWIn)
	if capFT <= 0 {
		return ChillerPerformance{}, fmt.Errorf("%w: CapFT(%.2f, %.2f) = %.4f, must be > 0",
			ErrDomain, m.tCHWSupplyC, tCWIn, capFT)
	}
	eirFT := m.curves[CurveEIRFT].Biquadratic(m.tCHWSupplyC, tCWIn)
	eirFPLR := m.curves[CurveEIRFPLR].Quadratic(clamp(plr, PLRMin, PLRMax))

	eir := eirFT * eirFPLR / capFT
	if eir <= 0 {
		return ChillerPerformance{}, fmt.Errorf("%w: EIR = %.4f at T_cw_in %.2f C, must be > 0",
			ErrDomain, eir, tCWIn)
	}

	cop := m.ratedCOP / eir
	wComp := qEvap / cop

	return ChillerPerformance{
		QEvapW:     qEvap,
		QCondW:     qEvap + wComp, // first law, no other losses modeled
		WCompW:     wComp,
		COP:        cop,
		PLR:        plr,
		Overloaded: plr > 1,
		CapFT:      capFT,
		EIRFT:      eirFT,
		EIRFPLR:    eirFPLR,
	}, nil
}

// SupplyTemperature returns the configured chilled-water supply in C.
func (m *ChillerModel) SupplyTemperature() float64 { return m.tCHWSupplyC }

// RatedCapacity returns the rated cooling capacity in W.
func (m *ChillerModel) RatedCapacity() float64 { return m.ratedCapacityW }

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
