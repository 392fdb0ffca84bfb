package plant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPUE(t *testing.T) {
	r := &Result{PITMW: 1000, WCoolingMW: 204.8}
	assert.InDelta(t, 1.2048, PUE(r), 1e-9)

	assert.Zero(t, PUE(&Result{PITMW: 0, WCoolingMW: 10}), "undefined at zero IT load")
}

func TestWUE(t *testing.T) {
	// 627.34 kg/s over a year against 1000 MW of IT load
	r := &Result{PITMW: 1000, MMakeup: 627.34}
	assert.InDelta(t, 627.34*3.6/1000, WUE(r), 1e-9)

	assert.Zero(t, WUE(&Result{PITMW: 0, MMakeup: 627.34}))
}

func TestAnnualWaterM3(t *testing.T) {
	r := &Result{MMakeup: 627.34}
	assert.InDelta(t, 627.34*3600*8760/1000, AnnualWaterM3(r), 1e-6)
}

func TestMetrics_MatchSolvedResult(t *testing.T) {
	s, err := NewSystemSolver(nil, nil)
	require.NoError(t, err)
	r, err := s.Solve(1.0, 25.5)
	require.NoError(t, err)

	assert.Equal(t, PUE(r), r.PUE, "solver fills PUE via the same pure function")
	assert.Equal(t, WUE(r), r.WUE)
}
