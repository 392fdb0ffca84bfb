package plant

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Curve names recognized by the chiller model.
const (
	CurveCapFT   = "CapFT"   // capacity correction f(T_chw, T_cw_in), biquadratic
	CurveEIRFT   = "EIRFT"   // EIR correction f(T_chw, T_cw_in), biquadratic
	CurveEIRFPLR = "EIRFPLR" // EIR correction f(PLR), quadratic
)

// Coefficient counts per curve form.
const (
	biquadraticLen = 6
	quadraticLen   = 3
)

// Curve holds polynomial coefficients in EnergyPlus order:
// biquadratic c0 + c1*x + c2*x^2 + c3*y + c4*y^2 + c5*x*y,
// quadratic   c0 + c1*x + c2*x^2.
type Curve []float64

// Biquadratic evaluates the curve at (x, y). The coefficient count must
// have been validated beforehand (see CurveSet.Validate).
func (c Curve) Biquadratic(x, y float64) float64 {
	return c[0] + c[1]*x + c[2]*x*x + c[3]*y + c[4]*y*y + c[5]*x*y
}

// Quadratic evaluates the curve at x.
func (c Curve) Quadratic(x float64) float64 {
	return c[0] + c[1]*x + c[2]*x*x
}

// CurveSet is a loaded performance-curve table keyed by curve name.
// It is read-only after load; solver instances share it safely.
type CurveSet map[string]Curve

// Valid operating envelope of the fitted curves. Evaluations outside these
// bounds extrapolate the polynomials past their fitted domain and are not
// trusted; EIRFPLR is clamped to [PLRMin, PLRMax] instead.
const (
	TCHWMinC = 4.0
	TCHWMaxC = 15.0
	TCWMinC  = 15.0
	TCWMaxC  = 45.0
	PLRMin   = 0.1
	PLRMax   = 1.0
)

// DefaultCurves returns the built-in performance-curve table, fitted so a
// 1000 MW machine rated at COP 6.1 delivers COP 7.5 at 10 C chilled-water
// supply and 29.5 C condenser inlet, worsening monotonically as the
// condenser inlet rises.
func DefaultCurves() CurveSet {
	return CurveSet{
		CurveCapFT:   {1.042261, 0.003, 0.0001, -0.0045, -0.00002, 0.00005},
		CurveEIRFT:   {0.555177, -0.004, 0.0002, 0.004814, 0.0001, 0.00002},
		CurveEIRFPLR: {0.9, -0.1, 0.2},
	}
}

// Validate checks that every curve the chiller model needs is present with
// the right coefficient count.
func (cs CurveSet) Validate() error {
	want := map[string]int{
		CurveCapFT:   biquadraticLen,
		CurveEIRFT:   biquadraticLen,
		CurveEIRFPLR: quadraticLen,
	}
	for name, n := range want {
		c, ok := cs[name]
		if !ok {
			return fmt.Errorf("%w: missing curve %q", ErrConfiguration, name)
		}
		if len(c) != n {
			return fmt.Errorf("%w: curve %q has %d coefficients, want %d",
				ErrConfiguration, name, len(c), n)
		}
	}
	return nil
}

// LoadCurves reads a curve table from a YAML or JSON file, chosen by
// extension. The loaded set is validated before return.
func LoadCurves(path string) (CurveSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read curves: %w", err)
	}

	var cs CurveSet
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &cs)
	case ".json":
		err = json.Unmarshal(raw, &cs)
	default:
		return nil, fmt.Errorf("%w: unsupported curve file extension %q",
			ErrConfiguration, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrConfiguration, path, err)
	}
	if err := cs.Validate(); err != nil {
		return nil, err
	}
	return cs, nil
}
