package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestEnvironment() *Environment {
	e := NewEnvironment(3)
	for i := 0; i < 3; i++ {
		e.Temperature[i] = 10
		e.TempTarget[i] = 20
		e.Humidity[i] = 0.6
		e.WindX[i] = 3
		e.WindY[i] = 4
		e.Fuel[i] = 1
		e.Pressure[i] = 1013.25
	}
	return e
}

func TestEnvironment_TemperatureDiffuse_RelaxesTowardTarget(t *testing.T) {
	e := newTestEnvironment()
	for tick := 0; tick < 200; tick++ {
		e.TemperatureDiffuse(0.1, 1.0)
	}
	assert.InDelta(t, 20, e.Temperature[0], 0.01)
}

func TestEnvironment_RainfallUpdate_TracksHumidityAndWind(t *testing.T) {
	e := newTestEnvironment()
	e.RainfallUpdate(1.0)
	// target = 0.6 * |(3,4)| * 0.5 = 1.5, full step with dt=1
	assert.InDelta(t, 1.5, e.Rainfall[0], 1e-3)
}

func TestEnvironment_FireSpread_OnlyWhileBurning(t *testing.T) {
	e := newTestEnvironment()
	e.FireIntensity[0] = 0.2

	e.FireSpread(0.5, 1.0)

	assert.Greater(t, e.FireIntensity[0], float32(0.2))
	assert.Equal(t, float32(0), e.FireIntensity[1], "unlit cells stay unlit")
}

func TestEnvironment_FireConsume_ExtinguishesWithoutFuel(t *testing.T) {
	e := newTestEnvironment()
	e.FireIntensity[0] = 0.8
	e.Fuel[0] = 0.05

	e.FireConsume(1.0) // burns 0.08, exhausting the fuel

	assert.Equal(t, float32(0), e.Fuel[0])
	assert.Equal(t, float32(0), e.FireIntensity[0], "fire dies when fuel runs out")
}

func TestEnvironment_FireConsume_DecaysWhileFueled(t *testing.T) {
	e := newTestEnvironment()
	e.FireIntensity[0] = 0.8

	e.FireConsume(1.0)

	assert.InDelta(t, 0.92, e.Fuel[0], 1e-4)
	assert.InDelta(t, 0.79, e.FireIntensity[0], 1e-4)
}

func TestEnvironment_HumidityEvaporate_NeverNegative(t *testing.T) {
	e := newTestEnvironment()
	e.Temperature[0] = 1000
	e.HumidityEvaporate(1.0)
	assert.Equal(t, float32(0), e.Humidity[0])
}

func TestEnvironment_WindDecayAndPressureGradient(t *testing.T) {
	e := newTestEnvironment()
	e.WindDecay(1.0)
	assert.InDelta(t, 2.97, e.WindX[0], 1e-4)
	assert.InDelta(t, 3.96, e.WindY[0], 1e-4)

	e.Pressure[0] = 1113.25 // +100 over base
	e.PressureGradient()
	assert.InDelta(t, 3.97, e.WindX[0], 1e-3)
}

func TestEnvironment_ElevationTempBias(t *testing.T) {
	e := newTestEnvironment()
	e.Elevation[0] = 10
	e.ElevationTempBias()
	assert.InDelta(t, 15, e.TempTarget[0], 1e-4)
	assert.InDelta(t, 20, e.TempTarget[1], 1e-4)
}

func TestEnvironment_DroughtAndFloodFlags(t *testing.T) {
	e := newTestEnvironment()
	e.Rainfall[0] = 0.1
	e.Rainfall[1] = 5
	e.Rainfall[2] = 50

	drought := make([]bool, e.Count())
	flood := make([]bool, e.Count())
	e.DroughtCheck(1.0, drought)
	e.FloodCheck(20.0, flood)

	assert.Equal(t, []bool{true, false, false}, drought)
	assert.Equal(t, []bool{false, false, true}, flood)
}
