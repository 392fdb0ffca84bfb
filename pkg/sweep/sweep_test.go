package sweep

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrkey4real/615-thermodynamics-project/pkg/plant"
	"github.com/mrkey4real/615-thermodynamics-project/pkg/weather"
)

func testSeries(t *testing.T, csv string) *weather.Series {
	t.Helper()
	s, err := weather.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	return s
}

const dayCSV = `timestamp,t_wb
00:00,22.0
03:00,20.5
06:00,21.5
09:00,25.0
12:00,28.5
15:00,30.0
18:00,27.5
21:00,24.0
`

func TestRun_KeepsInputOrder(t *testing.T) {
	series := testSeries(t, dayCSV)

	outcomes, summary, err := Run(nil, nil, series, Options{Workers: 4, Logger: zap.NewNop()})
	require.NoError(t, err)
	require.Len(t, outcomes, series.Len())

	for i, o := range outcomes {
		assert.Equal(t, i, o.Index)
		p, err := series.At(i)
		require.NoError(t, err)
		assert.Equal(t, p.WetBulbC, o.TWBC)
		assert.Equal(t, p.Timestamp, o.Timestamp)
		require.NoError(t, o.Err)
		assert.True(t, o.Result.Converged)
	}
	assert.Equal(t, series.Len(), summary.Converged)
	assert.Zero(t, summary.Failed)
}

// The solver converges to the exact fixed point, so results must not
// depend on how points are spread across workers. Iteration counts may
// differ (workers warm-start from their previous point) and are excluded.
func TestRun_ParallelMatchesSerial(t *testing.T) {
	serial, _, err := Run(nil, nil, testSeries(t, dayCSV), Options{Workers: 1, Logger: zap.NewNop()})
	require.NoError(t, err)
	parallel, _, err := Run(nil, nil, testSeries(t, dayCSV), Options{Workers: 4, Logger: zap.NewNop()})
	require.NoError(t, err)

	require.Len(t, parallel, len(serial))
	for i := range serial {
		assert.Equal(t, serial[i].Result.COP, parallel[i].Result.COP, "point %d", i)
		assert.Equal(t, serial[i].Result.PUE, parallel[i].Result.PUE, "point %d", i)
		assert.Equal(t, serial[i].Result.MMakeup, parallel[i].Result.MMakeup, "point %d", i)
		assert.Equal(t, serial[i].Result.States, parallel[i].Result.States, "point %d", i)
	}
}

func TestRun_CountsNonConverged(t *testing.T) {
	cfg := plant.DefaultConfig()
	cfg.MaxIterations = 1

	outcomes, summary, err := Run(cfg, nil, testSeries(t, dayCSV), Options{Workers: 3, Logger: zap.NewNop()})
	require.NoError(t, err)

	assert.Equal(t, len(outcomes), summary.NotConverged, "one iteration is never enough from a changed ambient")
	assert.Zero(t, summary.Converged)
	for _, o := range outcomes {
		require.NoError(t, o.Err)
		assert.False(t, o.Result.Converged)
	}
}

func TestRun_CountsFailedSolves(t *testing.T) {
	// 55 C is outside the tower's wet-bulb domain; the solve aborts
	series := testSeries(t, "t_wb\n25.5\n55\n28\n")

	outcomes, summary, err := Run(nil, nil, series, Options{Workers: 1, Logger: zap.NewNop()})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.Converged)
	require.Error(t, outcomes[1].Err)
	assert.ErrorIs(t, outcomes[1].Err, plant.ErrDomain)
	assert.Nil(t, outcomes[1].Result)
}

func TestRun_EmptySeries(t *testing.T) {
	_, _, err := Run(nil, nil, nil, Options{})
	require.Error(t, err)
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := plant.DefaultConfig()
	cfg.COC = 8
	cfg.MakeupSilicaPPM = 25
	cfg.MaxSilicaPPM = 150 // silica-limited max COC is 6

	_, _, err := Run(cfg, nil, testSeries(t, dayCSV), Options{Logger: zap.NewNop()})
	require.Error(t, err)
	assert.ErrorIs(t, err, plant.ErrConfiguration)
}

func TestSummarize(t *testing.T) {
	series := testSeries(t, dayCSV)
	outcomes, summary, err := Run(nil, nil, series, Options{Workers: 2, Logger: zap.NewNop()})
	require.NoError(t, err)

	var minCOP, maxCOP float64
	for i, o := range outcomes {
		if i == 0 || o.Result.COP < minCOP {
			minCOP = o.Result.COP
		}
		if i == 0 || o.Result.COP > maxCOP {
			maxCOP = o.Result.COP
		}
	}
	assert.Equal(t, minCOP, summary.MinCOP)
	assert.Equal(t, maxCOP, summary.MaxCOP)
	assert.GreaterOrEqual(t, summary.MeanCOP, minCOP)
	assert.LessOrEqual(t, summary.MeanCOP, maxCOP)
	assert.Greater(t, summary.MeanPUE, 1.0)
	assert.Greater(t, summary.TotalWaterM3, 0.0)

	// an empty outcome set produces a zero summary, not a panic
	empty := Summarize(nil)
	assert.Zero(t, empty.Points)
	assert.Zero(t, empty.MeanPUE)
}
