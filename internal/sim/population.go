// Population dynamics — logistic growth, SIR epidemics, starvation, age
// cohorts, births/deaths, migration.
package sim

// Population holds per-group demographic columns. Index i is one population
// group (a settlement or faction); the same index in other containers refers
// to the same entity by convention.
type Population struct {
	Population    []float32 // current population count
	CarryingCap   []float32 // carrying capacity K
	GrowthRate    []float32 // intrinsic growth rate r
	Susceptible   []float32 // SIR susceptible fraction
	Infected      []float32 // SIR infected fraction
	Recovered     []float32 // SIR recovered fraction
	Beta          []float32 // SIR transmission rate
	GammaRec      []float32 // SIR recovery rate
	FoodSupply    []float32 // available food units
	FoodThreshold []float32 // minimum food to avoid starvation
	AgeYoung      []float32 // fraction in young cohort
	AgeAdult      []float32 // fraction in adult cohort
	AgeElder      []float32 // fraction in elder cohort

	n int
}

// NewPopulation allocates a container with count groups.
func NewPopulation(count int) *Population {
	if count < 0 {
		count = 0
	}
	return &Population{
		Population:    make([]float32, count),
		CarryingCap:   make([]float32, count),
		GrowthRate:    make([]float32, count),
		Susceptible:   make([]float32, count),
		Infected:      make([]float32, count),
		Recovered:     make([]float32, count),
		Beta:          make([]float32, count),
		GammaRec:      make([]float32, count),
		FoodSupply:    make([]float32, count),
		FoodThreshold: make([]float32, count),
		AgeYoung:      make([]float32, count),
		AgeAdult:      make([]float32, count),
		AgeElder:      make([]float32, count),
		n:             count,
	}
}

// Count returns the number of population groups.
func (p *Population) Count() int { return p.n }

// LogisticGrowth applies the Verhulst model dN/dt = r*N*(1-N/K), clamped to
// [0, K].
func (p *Population) LogisticGrowth(dt float32) {
	for i := 0; i < p.n; i++ {
		n := p.Population[i]
		k := p.CarryingCap[i]
		if k <= 0 {
			p.Population[i] = 0
			continue
		}
		dn := p.GrowthRate[i] * n * (1 - n/k)
		p.Population[i] = clamp32(n+dn*dt, 0, k)
	}
}

// SIRStep advances the compartmental SIR disease model and renormalizes so
// S+I+R stays 1. Groups with no population are skipped.
func (p *Population) SIRStep(dt float32) {
	for i := 0; i < p.n; i++ {
		n := p.Population[i]
		if n <= 0 {
			continue
		}
		s := p.Susceptible[i]
		inf := p.Infected[i]
		r := p.Recovered[i]

		newInf := p.Beta[i] * s * inf / n
		newRec := p.GammaRec[i] * inf

		s -= newInf * dt
		inf += (newInf - newRec) * dt
		r += newRec * dt

		total := s + inf + r
		if total > 0 {
			p.Susceptible[i] = clamp32(s/total, 0, 1)
			p.Infected[i] = clamp32(inf/total, 0, 1)
			p.Recovered[i] = clamp32(r/total, 0, 1)
		}
	}
}

// Starvation reduces population proportionally to the food deficit when
// supply falls below the threshold.
func (p *Population) Starvation(dt float32) {
	for i := 0; i < p.n; i++ {
		if p.FoodThreshold[i] <= 0 {
			continue
		}
		deficit := p.FoodThreshold[i] - p.FoodSupply[i]
		if deficit <= 0 {
			continue
		}
		frac := deficit / p.FoodThreshold[i]
		p.Population[i] = clamp32(
			p.Population[i]-p.Population[i]*frac*0.05*dt,
			0, p.CarryingCap[i])
	}
}

// AgeCohortShift moves a fixed fraction Young→Adult→Elder each tick.
func (p *Population) AgeCohortShift(dt float32) {
	const shiftRate = 0.002 // fraction per unit time
	for i := 0; i < p.n; i++ {
		young := p.AgeYoung[i]
		adult := p.AgeAdult[i]
		elder := p.AgeElder[i]

		ya := young * shiftRate * dt
		ae := adult * shiftRate * dt

		p.AgeYoung[i] = clamp32(young-ya, 0, 1)
		p.AgeAdult[i] = clamp32(adult+ya-ae, 0, 1)
		p.AgeElder[i] = clamp32(elder+ae, 0, 1)
	}
}

// Births adds individuals scaled by the adult fraction and total population.
func (p *Population) Births(dt float32) {
	const birthCoeff = 0.03
	for i := 0; i < p.n; i++ {
		births := birthCoeff * p.AgeAdult[i] * p.Population[i] * dt
		p.AgeYoung[i] = clamp32(p.AgeYoung[i]+births/(p.Population[i]+1), 0, 1)
		p.Population[i] = clamp32(p.Population[i]+births, 0, p.CarryingCap[i])
	}
}

// Deaths removes individuals at a base rate plus an elder-driven excess.
func (p *Population) Deaths(dt float32) {
	const baseDeath = 0.01
	const elderExcess = 0.04
	for i := 0; i < p.n; i++ {
		rate := baseDeath + elderExcess*p.AgeElder[i]
		deaths := rate * p.Population[i] * dt
		p.Population[i] = clamp32(p.Population[i]-deaths, 0, p.CarryingCap[i])
	}
}

// Migrate moves a fraction of group idx's population into dst's same index.
// Not safe for concurrent use against the same container.
func (p *Population) Migrate(dst *Population, idx int, rate, dt float32) {
	if idx < 0 || idx >= p.n || idx >= dst.n {
		return
	}
	amount := rate * p.Population[idx] * dt
	p.Population[idx] = clamp32(p.Population[idx]-amount, 0, p.CarryingCap[idx])
	dst.Population[idx] = clamp32(dst.Population[idx]+amount, 0, dst.CarryingCap[idx])
}

// CarryingCapPressure hard-clamps population to K and derives the food
// threshold as K*0.1.
func (p *Population) CarryingCapPressure() {
	for i := 0; i < p.n; i++ {
		if p.Population[i] > p.CarryingCap[i] {
			p.Population[i] = p.CarryingCap[i]
		}
		p.FoodThreshold[i] = p.CarryingCap[i] * 0.1
	}
}

// EpidemicMortality kills infected individuals at mortalityRate per tick.
func (p *Population) EpidemicMortality(mortalityRate, dt float32) {
	for i := 0; i < p.n; i++ {
		deaths := mortalityRate * p.Infected[i] * p.Population[i] * dt
		p.Population[i] = clamp32(p.Population[i]-deaths, 0, p.CarryingCap[i])
	}
}

// RecoveryBonus grants a small growth bonus proportional to the recovered
// fraction (herd immunity boosting survivors).
func (p *Population) RecoveryBonus(dt float32) {
	const bonus = 0.005
	for i := 0; i < p.n; i++ {
		gain := bonus * p.Recovered[i] * p.Population[i] * dt
		p.Population[i] = clamp32(p.Population[i]+gain, 0, p.CarryingCap[i])
	}
}
