package plant

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSolver(t *testing.T, cfg *Config) *SystemSolver {
	t.Helper()
	s, err := NewSystemSolver(cfg, nil)
	require.NoError(t, err)
	return s
}

func logResult(t *testing.T, name string, r *Result) {
	t.Helper()
	t.Logf("%-10s u=%.2f T_wb=%4.1f | COP=%.3f PLR=%.2f PUE=%.4f WUE=%.3f | W_comp=%7.2f MW makeup=%7.2f kg/s | conv=%v iters=%d",
		name, r.Utilization, r.TWBC, r.COP, r.PLR, r.PUE, r.WUE, r.WCompMW, r.MMakeup, r.Converged, r.Iterations)
}

func TestSolver_DesignFlows(t *testing.T) {
	s := newTestSolver(t, nil)
	f := s.Flows()

	assert.InDelta(t, 900e6/(4186*25.0), f.GPU, 1e-6)
	assert.InDelta(t, 1000e6/(4186*5.0), f.CHW, 1e-6)
	assert.InDelta(t, 1150e6/(4186*5.5), f.CW, 1e-6)
	assert.InDelta(t, 100e6/(1005*5.0), f.Air, 1e-6)
	assert.Equal(t, 750000, s.GPUCount())
}

// Scenario A: design load at design ambient.
func TestSolver_ScenarioA(t *testing.T) {
	s := newTestSolver(t, nil)
	r, err := s.Solve(1.0, 25.5)
	require.NoError(t, err)
	logResult(t, "A", r)

	require.True(t, r.Converged)
	assert.InDelta(t, 40.0, r.TGPUOutC, 1e-9, "compute outlet at design flow")
	assert.InDelta(t, 25.0, r.TAirOutC, 1e-9)
	assert.InDelta(t, 7.5, r.COP, 0.2)
	assert.InDelta(t, 1.20, r.PUE, 0.02)
	assert.Greater(t, r.MMakeup, 620.0)
	assert.Less(t, r.MMakeup, 630.0)
	assert.InDelta(t, 1.0, r.PLR, 1e-12)

	assert.True(t, r.Flags.GPUTempOK)
	assert.True(t, r.Flags.BuildingTempOK)
	assert.True(t, r.Flags.TowerRangeOK)
	assert.False(t, r.Flags.ChillerOverloaded)

	// converged state points
	assert.InDelta(t, 10.0, r.States.CHWSupply, 1e-12)
	assert.InDelta(t, 10.5, r.States.AfterBuildingHX, 1e-9)
	assert.InDelta(t, 15.0, r.States.AfterComputeHX, 1e-9)
	assert.InDelta(t, 15.0, r.States.CHWReturn, 1e-9)
	assert.InDelta(t, 29.5, r.States.CWFromTower, 1e-9)
	assert.InDelta(t, 34.92, r.States.CWFromChiller, 0.01)
	assert.InDelta(t, r.States.CWFromTower, r.States.CWToChiller, 1e-12)
	assert.InDelta(t, r.States.GPUReturn, r.States.GPUToHX, 1e-12)
}

// Scenario B: higher COC cuts blowdown ~20% and makeup ~4%, power untouched.
func TestSolver_ScenarioB(t *testing.T) {
	a, err := newTestSolver(t, nil).Solve(1.0, 25.5)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.COC = 6
	b, err := newTestSolver(t, cfg).Solve(1.0, 25.5)
	require.NoError(t, err)
	logResult(t, "B", b)

	require.True(t, b.Converged)
	assert.InDelta(t, 0.20, (a.MBlowdown-b.MBlowdown)/a.MBlowdown, 1e-9)
	assert.InDelta(t, 0.04, (a.MMakeup-b.MMakeup)/a.MMakeup, 0.002)
	assert.InDelta(t, a.COP, b.COP, a.COP*0.001, "COC does not touch the power side")
	assert.InDelta(t, a.PUE, b.PUE, a.PUE*0.001)
}

// Scenario C: half load improves COP via the part-load curve.
func TestSolver_ScenarioC(t *testing.T) {
	a, err := newTestSolver(t, nil).Solve(1.0, 25.5)
	require.NoError(t, err)
	c, err := newTestSolver(t, nil).Solve(0.5, 25.5)
	require.NoError(t, err)
	logResult(t, "C", c)

	require.True(t, c.Converged)
	assert.Greater(t, c.COP, a.COP)
	assert.InDelta(t, 8.33, c.COP, 0.05)
	assert.InDelta(t, 27.5, c.TGPUOutC, 1e-9)
	assert.LessOrEqual(t, c.TGPUOutC, 40.0)
	assert.InDelta(t, 0.5, c.PLR, 1e-12)
}

// Scenario D: heat wave. COP falls 15-20%, constraints still hold.
func TestSolver_ScenarioD(t *testing.T) {
	a, err := newTestSolver(t, nil).Solve(1.0, 25.5)
	require.NoError(t, err)
	d, err := newTestSolver(t, nil).Solve(1.0, 35)
	require.NoError(t, err)
	logResult(t, "D", d)

	require.True(t, d.Converged)
	drop := (a.COP - d.COP) / a.COP
	assert.Greater(t, drop, 0.15)
	assert.Less(t, drop, 0.20)
	assert.Greater(t, d.MMakeup, a.MMakeup, "warmer condenser water costs more water")
	assert.True(t, d.Flags.GPUTempOK, "design flow still holds the coolant limit")
	assert.True(t, d.Flags.BuildingTempOK)
	assert.True(t, d.Flags.TowerRangeOK)
}

func TestSolver_EnergyAndMassConservation(t *testing.T) {
	cases := []struct {
		utilization, tWB float64
	}{
		{1.0, 25.5}, {0.5, 25.5}, {1.0, 35}, {0.75, 18}, {0.25, 30},
	}
	for _, tc := range cases {
		r, err := newTestSolver(t, nil).Solve(tc.utilization, tc.tWB)
		require.NoError(t, err)
		require.True(t, r.Converged)

		// |Q_cond - (Q_evap + W_comp)| / Q_cond < 1%
		assert.Less(t, r.EnergyBalanceErrPct, 1.0)
		// water balance is exact by construction
		assert.InDelta(t, r.MEvap+r.MDrift+r.MBlowdown, r.MMakeup, 1e-9)
		// chilled-water return closes the evaporator energy balance
		f := newTestSolver(t, nil).Flows()
		assert.InDelta(t, r.States.CHWSupply+r.QEvapMW*1e6/(f.CHW*4186), r.States.CHWReturn, 1e-9)
	}
}

func TestSolver_MonotonicInWetBulb(t *testing.T) {
	prevCOP := math.Inf(1)
	prevMakeup := 0.0
	for _, tWB := range []float64{15, 20, 25.5, 30, 35, 40} {
		r, err := newTestSolver(t, nil).Solve(1.0, tWB)
		require.NoError(t, err)
		require.True(t, r.Converged)

		assert.Less(t, r.COP, prevCOP, "COP at T_wb=%.1f", tWB)
		assert.Greater(t, r.MMakeup, prevMakeup, "makeup at T_wb=%.1f", tWB)
		prevCOP = r.COP
		prevMakeup = r.MMakeup
	}
}

// Fresh instances with identical inputs must reproduce identical results,
// iteration counts included.
func TestSolver_Idempotent(t *testing.T) {
	r1, err := newTestSolver(t, nil).Solve(0.8, 28)
	require.NoError(t, err)
	r2, err := newTestSolver(t, nil).Solve(0.8, 28)
	require.NoError(t, err)

	assert.Equal(t, r1.Iterations, r2.Iterations)
	assert.Equal(t, r1.COP, r2.COP)
	assert.Equal(t, r1.PUE, r2.PUE)
	assert.Equal(t, r1.MMakeup, r2.MMakeup)
	assert.Equal(t, r1.States, r2.States)
}

// State points persist across calls: a repeat solve warm-starts at the
// fixed point and converges immediately.
func TestSolver_WarmStart(t *testing.T) {
	s := newTestSolver(t, nil)

	first, err := s.Solve(1.0, 25.5)
	require.NoError(t, err)
	again, err := s.Solve(1.0, 25.5)
	require.NoError(t, err)

	assert.Greater(t, first.Iterations, again.Iterations)
	assert.Equal(t, 1, again.Iterations)
	assert.Equal(t, first.States, again.States)
	assert.Equal(t, first.COP, again.COP)
}

func TestSolver_ZeroUtilization(t *testing.T) {
	r, err := newTestSolver(t, nil).Solve(0, 25.5)
	require.NoError(t, err)
	logResult(t, "idle", r)

	require.True(t, r.Converged)
	assert.Zero(t, r.QEvapMW)
	assert.Zero(t, r.WCompMW)
	assert.Zero(t, r.COP, "COP not applicable, reported as 0")
	assert.Zero(t, r.PUE, "PUE undefined at zero IT load")
	assert.Zero(t, r.MEvap)
	assert.Zero(t, r.MBlowdown)
	assert.Greater(t, r.MMakeup, 0.0, "drift continues while water circulates")
	assert.InDelta(t, 15.0, r.TGPUOutC, 1e-9, "no heat, no rise")
}

func TestSolver_NonConvergenceReported(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIterations = 1
	s := newTestSolver(t, cfg)

	// off-design ambient guarantees the first iterate moves T8 by 9.5 C
	r, err := s.Solve(1.0, 35)
	require.NoError(t, err, "non-convergence is data, not an error")

	assert.False(t, r.Converged)
	assert.Equal(t, 1, r.Iterations)
	assert.Greater(t, r.ResidualC, cfg.ToleranceC)
}

func TestSolver_Overload(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ChillerRatedCapacityMW = 800
	r, err := newTestSolver(t, cfg).Solve(1.0, 25.5)
	require.NoError(t, err)
	logResult(t, "overload", r)

	require.True(t, r.Converged)
	assert.True(t, r.Flags.ChillerOverloaded)
	assert.InDelta(t, 1.25, r.PLR, 1e-12)
}

func TestSolver_WetBulbOutOfRange(t *testing.T) {
	s := newTestSolver(t, nil)

	_, err := s.Solve(1.0, 55)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDomain)

	_, err = s.Solve(1.0, -30)
	assert.ErrorIs(t, err, ErrDomain)
}

func TestSolver_InvalidConfiguration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.COC = -5
	_, err := NewSystemSolver(cfg, nil)
	require.NoError(t, err, "non-positive values fall back to defaults in the merge")

	// a broken curve table is rejected at construction, not at first use
	_, err = NewSystemSolver(nil, CurveSet{CurveCapFT: {1, 0, 0, 0, 0, 0}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestSolver_SolveDesign(t *testing.T) {
	s := newTestSolver(t, nil)
	r, err := s.SolveDesign()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r.Utilization, 1e-12)
	assert.InDelta(t, 25.5, r.TWBC, 1e-12)
}

func ExampleSystemSolver_Solve() {
	s, _ := NewSystemSolver(DefaultConfig(), nil)
	r, _ := s.Solve(1.0, 25.5)
	fmt.Printf("COP=%.2f PUE=%.3f makeup=%.0fkg/s\n", r.COP, r.PUE, r.MMakeup)
}
