package plant

// HoursPerYear is the fixed annualization basis for WUE and the annual
// water volume.
const HoursPerYear = 8760

// PUE returns the power usage effectiveness of a solved operating point:
// (IT load + compressor + pumps + fans) / IT load. It reports 0 when the
// IT load is zero, where the ratio is undefined.
func PUE(r *Result) float64 {
	if r.PITMW <= 0 {
		return 0
	}
	return (r.PITMW + r.WCoolingMW) / r.PITMW
}

// WUE returns the water usage effectiveness in L/kWh: annual makeup-water
// volume over annual IT energy, both over a fixed 8760-hour year. It
// reports 0 when the IT load is zero. Makeup water is taken at 1 kg = 1 L.
func WUE(r *Result) float64 {
	if r.PITMW <= 0 {
		return 0
	}
	annualWaterL := r.MMakeup * 3600 * HoursPerYear
	annualITkWh := r.PITMW * 1000 * HoursPerYear
	return annualWaterL / annualITkWh
}

// AnnualWaterM3 returns the annualized makeup-water volume in cubic
// meters.
func AnnualWaterM3(r *Result) float64 {
	return r.MMakeup * 3600 * HoursPerYear / 1000
}
