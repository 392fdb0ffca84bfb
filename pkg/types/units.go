package types

import "fmt"

// Power is a float64 wrapper representing power in Watts.
type Power float64

// wattsPerTon is the refrigeration conversion: 1 ton = 3.517 kW.
const wattsPerTon = 3517.0

// Humanized returns a human-readable string with automatic unit (W, kW, MW, GW).
func (p Power) Humanized() string {
	v := float64(p)
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.2f GW", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2f MW", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.2f kW", v/1e3)
	default:
		return fmt.Sprintf("%.0f W", v)
	}
}

// KW returns the power in kilowatts.
func (p Power) KW() float64 { return float64(p) / 1e3 }

// MW returns the power in megawatts.
func (p Power) MW() float64 { return float64(p) / 1e6 }

// Tons returns the cooling duty in refrigeration tons.
func (p Power) Tons() float64 { return float64(p) / wattsPerTon }

// MassFlow is a float64 wrapper representing a water mass flow in kg/s.
type MassFlow float64

// LPerHour returns the volumetric flow in liters per hour, at 1 kg = 1 L.
func (m MassFlow) LPerHour() float64 { return float64(m) * 3600 }

// M3PerYear returns the annualized volume in cubic meters over an
// 8760-hour year.
func (m MassFlow) M3PerYear() float64 { return float64(m) * 3600 * 8760 / 1000 }

// Humanized returns the flow with its hourly volume equivalent.
func (m MassFlow) Humanized() string {
	return fmt.Sprintf("%.1f kg/s (%.0f L/hr)", float64(m), m.LPerHour())
}

// CelsiusToFahrenheit converts a temperature in C to F.
func CelsiusToFahrenheit(c float64) float64 { return c*9/5 + 32 }

// FahrenheitToCelsius converts a temperature in F to C.
func FahrenheitToCelsius(f float64) float64 { return (f - 32) * 5 / 9 }
