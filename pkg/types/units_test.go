package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPower_Humanized(t *testing.T) {
	tests := []struct {
		p    Power
		want string
	}{
		{0, "0 W"},
		{950, "950 W"},
		{1500, "1.50 kW"},
		{133.33e6, "133.33 MW"},
		{1.1333e9, "1.13 GW"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.p.Humanized())
	}
}

func TestPower_Conversions(t *testing.T) {
	p := Power(1e6)
	assert.InDelta(t, 1000.0, p.KW(), 1e-12)
	assert.InDelta(t, 1.0, p.MW(), 1e-12)
	assert.InDelta(t, 284.33, p.Tons(), 0.01)
}

func TestMassFlow(t *testing.T) {
	m := MassFlow(627.34)
	assert.InDelta(t, 627.34*3600, m.LPerHour(), 1e-9)
	assert.InDelta(t, 627.34*3600*8760/1000, m.M3PerYear(), 1e-6)
	assert.Equal(t, "627.3 kg/s (2258424 L/hr)", m.Humanized())
}

func TestTemperatureConversions(t *testing.T) {
	assert.InDelta(t, 104.0, CelsiusToFahrenheit(40), 1e-12)
	assert.InDelta(t, 40.0, FahrenheitToCelsius(104), 1e-12)
	assert.InDelta(t, 0.0, FahrenheitToCelsius(32), 1e-12)
}
