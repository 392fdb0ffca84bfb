// Package weather ingests wet-bulb temperature time series from CSV
// files. Column names vary between weather stations, so the wet-bulb and
// timestamp columns are detected from a list of known aliases, first by
// exact match and then case-insensitively. Rows that fail to parse are
// skipped and counted rather than aborting the load.
package weather

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var (
	// ErrNoData indicates the CSV had headers but no parseable data rows.
	ErrNoData = errors.New("weather: no valid data rows")

	// ErrNoWetBulbColumn indicates no recognized wet-bulb temperature
	// column was found among the CSV headers.
	ErrNoWetBulbColumn = errors.New("weather: wet-bulb temperature column not found")
)

// Known header aliases, tried in order.
var (
	wetBulbAliases = []string{
		"wet_bulb_temp_C", "t_wb", "wet_bulb", "wetbulb", "wb_temp",
		"temperature_wb", "T_wb", "wet_bulb_temperature", "WetBulbTemp",
	}
	timestampAliases = []string{
		"timestamp", "datetime", "time", "date",
	}
)

// Point is one weather observation. Timestamp is the raw CSV value and
// may be empty when the file carries no timestamp column.
type Point struct {
	Timestamp string
	WetBulbC  float64
}

// Series is a finite, restartable wet-bulb time series. It is read-only
// after load.
type Series struct {
	points  []Point
	skipped int
}

// Load reads a weather series from a CSV file.
func Load(path string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("weather: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a weather series from CSV data.
func Parse(r io.Reader) (*Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows are handled per-row

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("weather: read header: %w", err)
	}

	wbCol := findColumn(header, wetBulbAliases)
	if wbCol < 0 {
		return nil, fmt.Errorf("%w: available columns %v, expected one of %v",
			ErrNoWetBulbColumn, header, wetBulbAliases)
	}
	tsCol := findColumn(header, timestampAliases) // optional

	s := &Series{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.skipped++
			continue
		}
		if wbCol >= len(row) {
			s.skipped++
			continue
		}
		wb, err := strconv.ParseFloat(strings.TrimSpace(row[wbCol]), 64)
		if err != nil {
			s.skipped++
			continue
		}
		p := Point{WetBulbC: wb}
		if tsCol >= 0 && tsCol < len(row) {
			p.Timestamp = strings.TrimSpace(row[tsCol])
		}
		s.points = append(s.points, p)
	}

	if len(s.points) == 0 {
		return nil, ErrNoData
	}
	return s, nil
}

// findColumn resolves the first alias present in the header, exact match
// first, then case-insensitive. Returns -1 when no alias matches.
func findColumn(header, aliases []string) int {
	for _, a := range aliases {
		for i, h := range header {
			if h == a {
				return i
			}
		}
	}
	for _, a := range aliases {
		for i, h := range header {
			if strings.EqualFold(h, a) {
				return i
			}
		}
	}
	return -1
}

// Points returns all observations in file order.
func (s *Series) Points() []Point { return s.points }

// Len returns the number of valid observations.
func (s *Series) Len() int { return len(s.points) }

// Skipped returns the number of rows dropped as malformed.
func (s *Series) Skipped() int { return s.skipped }

// At returns the observation at index i.
func (s *Series) At(i int) (Point, error) {
	if i < 0 || i >= len(s.points) {
		return Point{}, fmt.Errorf("weather: index %d out of range [0, %d)", i, len(s.points))
	}
	return s.points[i], nil
}

// AverageTemperature returns the mean wet-bulb temperature of the series.
func (s *Series) AverageTemperature() float64 {
	var sum float64
	for _, p := range s.points {
		sum += p.WetBulbC
	}
	return sum / float64(len(s.points))
}

// TemperatureRange returns the minimum and maximum wet-bulb temperatures.
func (s *Series) TemperatureRange() (min, max float64) {
	min, max = s.points[0].WetBulbC, s.points[0].WetBulbC
	for _, p := range s.points[1:] {
		if p.WetBulbC < min {
			min = p.WetBulbC
		}
		if p.WetBulbC > max {
			max = p.WetBulbC
		}
	}
	return min, max
}
