// Engine and end-game — entropy, stability, spatial binning, victory points,
// seeded chaos events, end-condition flags.
package sim

// EndGame holds per-faction engine columns plus the per-faction RNG state
// consumed by ChaosEvent.
type EndGame struct {
	Entropy     []float32 // chaos / entropy level (0..1)
	EntropyRate []float32 // rate of entropy increase per tick
	GridX       []float32 // spatial hash grid x-bucket index
	GridY       []float32 // spatial hash grid y-bucket index
	InvSqrtVal  []float32 // input values for fast inverse-sqrt
	InvSqrtOut  []float32 // output results from fast inverse-sqrt
	Stability   []float32 // world stability (0..1)
	EndTimer    []float32 // countdown ticks to an end condition
	VictoryPts  []float32 // victory points per faction
	ChaosMult   []float32 // chaos multiplier applied to random events

	rng []uint32
	n   int
}

// NewEndGame allocates a container with count factions.
func NewEndGame(count int) *EndGame {
	if count < 0 {
		count = 0
	}
	e := &EndGame{
		Entropy:     make([]float32, count),
		EntropyRate: make([]float32, count),
		GridX:       make([]float32, count),
		GridY:       make([]float32, count),
		InvSqrtVal:  make([]float32, count),
		InvSqrtOut:  make([]float32, count),
		Stability:   make([]float32, count),
		EndTimer:    make([]float32, count),
		VictoryPts:  make([]float32, count),
		ChaosMult:   make([]float32, count),
		rng:         make([]uint32, count),
		n:           count,
	}
	for i := range e.rng {
		e.rng[i] = drawSeed(i, 0)
	}
	return e
}

// Count returns the number of factions.
func (e *EndGame) Count() int { return e.n }

// InvSqrt runs the batch fast inverse square root over InvSqrtVal into
// InvSqrtOut.
func (e *EndGame) InvSqrt() {
	for i := 0; i < e.n; i++ {
		e.InvSqrtOut[i] = invSqrt32(e.InvSqrtVal[i])
	}
}

// EntropyIncrease raises entropy at each faction's rate, scaled by its
// chaos multiplier.
func (e *EndGame) EntropyIncrease(dt float32) {
	for i := 0; i < e.n; i++ {
		e.Entropy[i] = clamp32(e.Entropy[i]+e.EntropyRate[i]*e.ChaosMult[i]*dt, 0, 1)
	}
}

// StabilityUpdate combines the entropy complement, a tech-derived term and a
// population-pressure penalty, each clamped to [0,1] before combination.
func (e *EndGame) StabilityUpdate(p *Population, t *Tech) {
	for i := 0; i < e.n; i++ {
		techNorm := float32(0.5)
		if i < t.n {
			techNorm = clamp32(t.TechLevel[i]/50, 0, 1)
		}
		popPressure := float32(0)
		if i < p.n {
			popPressure = clamp32(p.Population[i]/(p.CarryingCap[i]+1), 0, 1)
		}
		e.Stability[i] = clamp32(
			(1-e.Entropy[i])*(0.5+0.5*techNorm)*(1-0.5*popPressure), 0, 1)
	}
}

// SpatialGridAssign bins each moving agent into a uniform grid by cellSize.
func (e *EndGame) SpatialGridAssign(m *Movement, cellSize float32) {
	n := minCount(e.n, m.n)
	inv := float32(1)
	if cellSize > 0 {
		inv = 1 / cellSize
	}
	for i := 0; i < n; i++ {
		e.GridX[i] = floor32(m.PosX[i] * inv)
		e.GridY[i] = floor32(m.PosY[i] * inv)
	}
}

// EndTimerTick counts end-game timers down, but only while stability sits
// below the critical threshold.
func (e *EndGame) EndTimerTick(dt float32) {
	for i := 0; i < e.n; i++ {
		if e.Stability[i] < 0.1 {
			e.EndTimer[i] = clamp32(e.EndTimer[i]-dt, 0, 1e6)
		}
	}
}

// VictoryUpdate accumulates victory points from population and tech
// contributions.
func (e *EndGame) VictoryUpdate(p *Population, t *Tech) {
	for i := 0; i < e.n; i++ {
		var popContrib, techContrib float32
		if i < p.n {
			popContrib = p.Population[i] * 0.001
		}
		if i < t.n {
			techContrib = t.TechLevel[i]
		}
		e.VictoryPts[i] += popContrib + techContrib
	}
}

// ChaosEvent draws from the faction's stored RNG state: entropy-weighted
// rolls amplify the chaos multiplier, other rolls dampen it gradually.
func (e *EndGame) ChaosEvent(faction int) {
	if faction < 0 || faction >= e.n {
		return
	}
	roll := lcgFloat(&e.rng[faction])
	if roll < e.Entropy[faction] {
		e.ChaosMult[faction] = clamp32(e.ChaosMult[faction]*(1+roll), 1, 10)
	} else {
		e.ChaosMult[faction] = clamp32(e.ChaosMult[faction]*0.99, 1, 10)
	}
}

// EntropyReset zeroes one faction's entropy and chaos multiplier.
func (e *EndGame) EntropyReset(faction int) {
	if faction < 0 || faction >= e.n {
		return
	}
	e.Entropy[faction] = 0
	e.ChaosMult[faction] = 1
}

// Seed installs one faction's RNG state for reproducible chaos. A zero seed
// is replaced by 1 so the LCG never sticks at zero.
func (e *EndGame) Seed(faction int, seed uint32) {
	if faction < 0 || faction >= e.n {
		return
	}
	if seed == 0 {
		seed = 1
	}
	e.rng[faction] = seed
}

// DrawState copies out the per-faction draw state, for snapshotting.
func (e *EndGame) DrawState() []uint32 {
	out := make([]uint32, e.n)
	copy(out, e.rng)
	return out
}

// RestoreDrawState reinstalls previously snapshotted draw state.
func (e *EndGame) RestoreDrawState(state []uint32) {
	copy(e.rng, state)
}

// EndConditionCheck flags factions whose end timer has run out.
func (e *EndGame) EndConditionCheck(out []bool) {
	n := minCount(e.n, len(out))
	for i := 0; i < n; i++ {
		out[i] = e.EndTimer[i] <= 0
	}
}
