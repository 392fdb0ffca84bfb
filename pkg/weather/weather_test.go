package weather

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ColumnVariants(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"canonical", "timestamp,wet_bulb_temp_C\n2025-07-01 00:00,24.5\n2025-07-01 01:00,25.1\n"},
		{"short alias", "time,t_wb\na,24.5\nb,25.1\n"},
		{"station style", "DateTime,WetBulbTemp\na,24.5\nb,25.1\n"},
		{"case insensitive", "TIMESTAMP,WET_BULB\na,24.5\nb,25.1\n"},
		{"no timestamp", "t_wb\n24.5\n25.1\n"},
		{"extra columns", "station,t_wb,rh\nKAUS,24.5,0.6\nKAUS,25.1,0.7\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse(strings.NewReader(tt.csv))
			require.NoError(t, err)
			require.Equal(t, 2, s.Len())
			p, err := s.At(0)
			require.NoError(t, err)
			assert.InDelta(t, 24.5, p.WetBulbC, 1e-12)
		})
	}
}

func TestParse_SkipsMalformedRows(t *testing.T) {
	csv := "timestamp,t_wb\na,24.5\nb,not-a-number\nc\n d,26.5\n"
	s, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 2, s.Skipped())
	p, err := s.At(1)
	require.NoError(t, err)
	assert.InDelta(t, 26.5, p.WetBulbC, 1e-12)
	assert.Equal(t, "d", p.Timestamp, "values are trimmed")
}

func TestParse_NoWetBulbColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("timestamp,dry_bulb\na,30\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoWetBulbColumn)
	assert.Contains(t, err.Error(), "dry_bulb", "error lists the available columns")
}

func TestParse_NoData(t *testing.T) {
	_, err := Parse(strings.NewReader("timestamp,t_wb\n"))
	assert.ErrorIs(t, err, ErrNoData)

	_, err = Parse(strings.NewReader("timestamp,t_wb\na,bad\nb,also-bad\n"))
	assert.ErrorIs(t, err, ErrNoData)
}

func TestSeries_Statistics(t *testing.T) {
	csv := "t_wb\n20\n25\n30\n"
	s, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)

	assert.InDelta(t, 25.0, s.AverageTemperature(), 1e-12)
	lo, hi := s.TemperatureRange()
	assert.InDelta(t, 20.0, lo, 1e-12)
	assert.InDelta(t, 30.0, hi, 1e-12)

	_, err = s.At(3)
	require.Error(t, err)
	_, err = s.At(-1)
	require.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.csv")
	require.NoError(t, os.WriteFile(path, []byte("timestamp,t_wb\na,24.5\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	_, err = Load(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
}
