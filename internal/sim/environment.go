// Environment and weather — temperature relaxation, rainfall, fire, wind,
// pressure, drought/flood flags.
package sim

// Environment holds per-cell weather columns.
type Environment struct {
	Temperature   []float32 // current temperature
	TempTarget    []float32 // equilibrium temperature
	Rainfall      []float32 // current rainfall level
	Humidity      []float32 // humidity fraction (0..1)
	WindX         []float32 // wind vector x-component
	WindY         []float32 // wind vector y-component
	FireIntensity []float32 // active fire intensity
	Fuel          []float32 // combustible material remaining
	Elevation     []float32 // terrain elevation
	Pressure      []float32 // atmospheric pressure

	n int
}

// NewEnvironment allocates a container with count cells.
func NewEnvironment(count int) *Environment {
	if count < 0 {
		count = 0
	}
	return &Environment{
		Temperature:   make([]float32, count),
		TempTarget:    make([]float32, count),
		Rainfall:      make([]float32, count),
		Humidity:      make([]float32, count),
		WindX:         make([]float32, count),
		WindY:         make([]float32, count),
		FireIntensity: make([]float32, count),
		Fuel:          make([]float32, count),
		Elevation:     make([]float32, count),
		Pressure:      make([]float32, count),
		n:             count,
	}
}

// Count returns the number of cells.
func (e *Environment) Count() int { return e.n }

// TemperatureDiffuse relaxes each cell's temperature toward its target at
// the given rate.
func (e *Environment) TemperatureDiffuse(rate, dt float32) {
	for i := 0; i < e.n; i++ {
		diff := e.TempTarget[i] - e.Temperature[i]
		e.Temperature[i] += rate * diff * dt
	}
}

// RainfallUpdate tracks rainfall toward humidity * |wind| * 0.5 with
// first-order lag.
func (e *Environment) RainfallUpdate(dt float32) {
	for i := 0; i < e.n; i++ {
		windMag := sqrt32(e.WindX[i]*e.WindX[i] + e.WindY[i]*e.WindY[i])
		targetRain := e.Humidity[i] * windMag * 0.5
		diff := targetRain - e.Rainfall[i]
		e.Rainfall[i] = clamp32(e.Rainfall[i]+diff*dt, 0, 100)
	}
}

// FireSpread grows burning cells' intensity proportional to local fuel.
func (e *Environment) FireSpread(spreadProb, dt float32) {
	for i := 0; i < e.n; i++ {
		if e.FireIntensity[i] <= 0 {
			continue
		}
		spread := spreadProb * e.Fuel[i] * e.FireIntensity[i] * dt
		e.FireIntensity[i] = clamp32(e.FireIntensity[i]+spread, 0, 1)
	}
}

// FireConsume burns fuel under active fires. Intensity drops to zero when
// fuel runs out, otherwise decays at a fixed small rate.
func (e *Environment) FireConsume(dt float32) {
	const consumeRate = 0.1
	const decayRate = 0.01
	for i := 0; i < e.n; i++ {
		if e.FireIntensity[i] <= 0 {
			continue
		}
		burned := consumeRate * e.FireIntensity[i] * dt
		e.Fuel[i] = clamp32(e.Fuel[i]-burned, 0, 1)
		if e.Fuel[i] <= 0 {
			e.FireIntensity[i] = 0
		} else {
			e.FireIntensity[i] = clamp32(e.FireIntensity[i]-decayRate*dt, 0, 1)
		}
	}
}

// HumidityEvaporate drives humidity down with temperature.
func (e *Environment) HumidityEvaporate(dt float32) {
	for i := 0; i < e.n; i++ {
		loss := e.Temperature[i] * 0.001 * dt
		e.Humidity[i] = clamp32(e.Humidity[i]-loss, 0, 1)
	}
}

// WindDecay dampens wind vectors geometrically each tick. Pressure-driven
// acceleration is the separate PressureGradient pass.
func (e *Environment) WindDecay(dt float32) {
	const dampen = 0.99
	_ = dt
	for i := 0; i < e.n; i++ {
		e.WindX[i] *= dampen
		e.WindY[i] *= dampen
	}
}

// PressureGradient pushes wind outward from high-pressure cells.
func (e *Environment) PressureGradient() {
	const basePressure = 1013.25
	for i := 0; i < e.n; i++ {
		excess := (e.Pressure[i] - basePressure) * 0.01
		e.WindX[i] += excess
		e.WindY[i] += excess
	}
}

// ElevationTempBias lowers temperature targets with elevation (lapse rate).
func (e *Environment) ElevationTempBias() {
	const lapse = 0.5
	for i := 0; i < e.n; i++ {
		e.TempTarget[i] -= e.Elevation[i] * lapse
	}
}

// DroughtCheck flags cells whose rainfall is below threshold.
func (e *Environment) DroughtCheck(threshold float32, out []bool) {
	n := minCount(e.n, len(out))
	for i := 0; i < n; i++ {
		out[i] = e.Rainfall[i] < threshold
	}
}

// FloodCheck flags cells whose rainfall exceeds threshold.
func (e *Environment) FloodCheck(threshold float32, out []bool) {
	n := minCount(e.n, len(out))
	for i := 0; i < n; i++ {
		out[i] = e.Rainfall[i] > threshold
	}
}
