// Progression and technology — research, exponential cost curves, golden
// ages, culture, eras, diffusion.
package sim

// Tech holds per-civilization progression columns.
type Tech struct {
	ResearchPts   []float32 // accumulated research points
	ResearchRate  []float32 // research points generated per tick
	TechCost      []float32 // cost to reach the next tech level
	TechLevel     []float32 // current integer tech level (as float)
	GoldenAgeMult []float32 // research multiplier while a golden age runs
	GoldenAgeTime []float32 // ticks remaining in the current golden age
	Culture       []float32 // cultural advancement score
	CultureSpread []float32 // rate at which culture spreads outward
	Era           []float32 // current era index (integer as float)
	PopBonus      []float32 // population-derived research bonus

	n int
}

// NewTech allocates a container with count civilizations.
func NewTech(count int) *Tech {
	if count < 0 {
		count = 0
	}
	return &Tech{
		ResearchPts:   make([]float32, count),
		ResearchRate:  make([]float32, count),
		TechCost:      make([]float32, count),
		TechLevel:     make([]float32, count),
		GoldenAgeMult: make([]float32, count),
		GoldenAgeTime: make([]float32, count),
		Culture:       make([]float32, count),
		CultureSpread: make([]float32, count),
		Era:           make([]float32, count),
		PopBonus:      make([]float32, count),
		n:             count,
	}
}

// Count returns the number of civilizations.
func (t *Tech) Count() int { return t.n }

// ResearchTick accumulates research points scaled by the population bonus
// and, while a golden age timer runs, the golden age multiplier.
func (t *Tech) ResearchTick(p *Population, dt float32) {
	for i := 0; i < t.n; i++ {
		bonus := float32(1)
		if i < p.n {
			bonus = t.PopBonus[i]
		}
		mult := float32(1)
		if t.GoldenAgeTime[i] > 0 {
			mult = t.GoldenAgeMult[i]
		}
		t.ResearchPts[i] += t.ResearchRate[i] * bonus * mult * dt
	}
}

// CostScale recomputes tech cost as 100 * exp(level * 0.3). The exponent is
// clamped to 20 before exponentiation: an unclamped exponent overflows to
// +Inf at high levels and permanently stalls progression.
func (t *Tech) CostScale() {
	for i := 0; i < t.n; i++ {
		exponent := clamp32(t.TechLevel[i]*0.3, 0, 20)
		t.TechCost[i] = 100 * exp32(exponent)
	}
}

// UnlockCheck consumes accumulated points against the cost and advances the
// level by exactly one per call, however large the surplus; excess points
// carry over. Flags advancing civilizations in out.
func (t *Tech) UnlockCheck(out []bool) {
	for i := 0; i < t.n; i++ {
		unlocked := false
		if t.ResearchPts[i] >= t.TechCost[i] {
			t.ResearchPts[i] -= t.TechCost[i]
			t.TechLevel[i]++
			unlocked = true
		}
		if i < len(out) {
			out[i] = unlocked
		}
	}
}

// GoldenAgeTick counts active golden age timers down.
func (t *Tech) GoldenAgeTick(dt float32) {
	for i := 0; i < t.n; i++ {
		if t.GoldenAgeTime[i] > 0 {
			t.GoldenAgeTime[i] = clamp32(t.GoldenAgeTime[i]-dt, 0, 1e6)
		}
	}
}

// GoldenAgeTrigger starts a golden age for one nation when its culture
// crosses threshold and none is already running. Duration 500 ticks,
// multiplier 2.
func (t *Tech) GoldenAgeTrigger(nation int, threshold float32) {
	if nation < 0 || nation >= t.n {
		return
	}
	if t.Culture[nation] >= threshold && t.GoldenAgeTime[nation] <= 0 {
		t.GoldenAgeTime[nation] = 500
		t.GoldenAgeMult[nation] = 2
	}
}

// CultureGrow advances culture logistically toward a fixed ceiling.
func (t *Tech) CultureGrow(dt float32) {
	const cap = 1000.0
	for i := 0; i < t.n; i++ {
		c := t.Culture[i]
		dc := t.CultureSpread[i] * c * (1 - c/cap)
		t.Culture[i] = clamp32(c+dc*dt, 0, cap)
	}
}

// EraAdvance derives era as floor(level/10); eras only ever increase.
func (t *Tech) EraAdvance() {
	for i := 0; i < t.n; i++ {
		expected := floor32(t.TechLevel[i] / 10)
		if expected > t.Era[i] {
			t.Era[i] = expected
		}
	}
}

// PopResearchBonus derives the population bonus as ln(1 + population/1000).
func (t *Tech) PopResearchBonus(p *Population) {
	n := minCount(t.n, p.n)
	for i := 0; i < n; i++ {
		t.PopBonus[i] = log32(1 + p.Population[i]/1000)
	}
}

// Decay erodes tech very slowly in civilizations with no banked research.
func (t *Tech) Decay(dt float32) {
	for i := 0; i < t.n; i++ {
		if t.ResearchPts[i] <= 0 {
			t.TechLevel[i] = clamp32(t.TechLevel[i]-0.0001*dt, 0, 1e6)
		}
	}
}

// Diffuse transfers a rate-scaled fraction of this container's level at si
// into dst's research balance at di. One-directional.
func (t *Tech) Diffuse(dst *Tech, si, di int, rate, dt float32) {
	if si < 0 || si >= t.n {
		return
	}
	if di < 0 || di >= dst.n {
		return
	}
	dst.ResearchPts[di] += rate * t.TechLevel[si] * dt
}
