// Economy and resources — stockpiles, pricing, taxation, trade, scarcity.
package sim

// maxPrice caps market prices to prevent multiplicative divergence.
const maxPrice = 1000.0

// Economy holds per-pool resource columns.
type Economy struct {
	Resource      []float32 // current stockpile
	MaxResource   []float32 // maximum stockpile capacity
	GatherRate    []float32 // units gathered per tick
	DepletionRate []float32 // natural depletion per tick
	Price         []float32 // current market price per unit
	Demand        []float32 // current demand level
	Supply        []float32 // current supply level
	TaxRate       []float32 // tax fraction (0..1)
	TaxCollected  []float32 // accumulated tax revenue
	TradeVolume   []float32 // volume of trade processed

	n int
}

// NewEconomy allocates a container with count resource pools.
func NewEconomy(count int) *Economy {
	if count < 0 {
		count = 0
	}
	return &Economy{
		Resource:      make([]float32, count),
		MaxResource:   make([]float32, count),
		GatherRate:    make([]float32, count),
		DepletionRate: make([]float32, count),
		Price:         make([]float32, count),
		Demand:        make([]float32, count),
		Supply:        make([]float32, count),
		TaxRate:       make([]float32, count),
		TaxCollected:  make([]float32, count),
		TradeVolume:   make([]float32, count),
		n:             count,
	}
}

// Count returns the number of resource pools.
func (e *Economy) Count() int { return e.n }

// Gather accumulates resources at each pool's gather rate.
func (e *Economy) Gather(dt float32) {
	for i := 0; i < e.n; i++ {
		e.Resource[i] = clamp32(e.Resource[i]+e.GatherRate[i]*dt, 0, e.MaxResource[i])
	}
}

// Deplete applies natural depletion and refreshes supply from the stockpile.
func (e *Economy) Deplete(dt float32) {
	for i := 0; i < e.n; i++ {
		e.Resource[i] = clamp32(e.Resource[i]-e.DepletionRate[i]*dt, 0, e.MaxResource[i])
		e.Supply[i] = e.Resource[i]
	}
}

// MarketPrice adjusts price by the square root of the demand/supply ratio,
// clamped to [0.01, maxPrice]. Supply is floored at 1 so zero supply cannot
// divide the ratio to infinity.
func (e *Economy) MarketPrice() {
	for i := 0; i < e.n; i++ {
		sup := e.Supply[i]
		if sup < 1 {
			sup = 1
		}
		base := e.Price[i]
		if base <= 0 {
			base = 1
		}
		e.Price[i] = clamp32(base*sqrt32(e.Demand[i]/sup), 0.01, maxPrice)
	}
}

// CollectTax removes resource*rate*population*0.001 from each stockpile into
// the tax ledger. The population column comes from the caller (usually the
// population container).
func (e *Economy) CollectTax(population []float32) {
	n := minCount(e.n, len(population))
	for i := 0; i < n; i++ {
		tax := e.Resource[i] * e.TaxRate[i] * population[i] * 0.001
		e.TaxCollected[i] += tax
		e.Resource[i] = clamp32(e.Resource[i]-tax, 0, e.MaxResource[i])
	}
}

// Trade transfers up to amount of resource from this container's pool si to
// buyer's pool bi and records the volume on both sides. The transfer is
// conserved up to each side's capacity clamp. Not safe for concurrent use
// against the same container.
func (e *Economy) Trade(si int, buyer *Economy, bi int, amount float32) {
	if si < 0 || si >= e.n {
		return
	}
	if bi < 0 || bi >= buyer.n {
		return
	}
	actual := amount
	if e.Resource[si] < actual {
		actual = e.Resource[si]
	}
	e.Resource[si] = clamp32(e.Resource[si]-actual, 0, e.MaxResource[si])
	buyer.Resource[bi] = clamp32(buyer.Resource[bi]+actual, 0, buyer.MaxResource[bi])
	e.TradeVolume[si] += actual
	buyer.TradeVolume[bi] += actual
}

// ResourceCap hard-clamps all stockpiles to [0, max].
func (e *Economy) ResourceCap() {
	for i := 0; i < e.n; i++ {
		e.Resource[i] = clamp32(e.Resource[i], 0, e.MaxResource[i])
	}
}

// DemandUpdate shifts demand with the population delta.
func (e *Economy) DemandUpdate(populationDelta float32) {
	for i := 0; i < e.n; i++ {
		e.Demand[i] = clamp32(e.Demand[i]+0.01*populationDelta, 0, 1e9)
	}
}

// SupplyShock multiplies every stockpile by (1 - shockFactor).
func (e *Economy) SupplyShock(shockFactor float32) {
	keep := clamp32(1-shockFactor, 0, 1)
	for i := 0; i < e.n; i++ {
		e.Resource[i] *= keep
		e.Supply[i] = e.Resource[i]
	}
}

// Inflation compounds prices continuously: price *= 1 + rate*dt.
func (e *Economy) Inflation(inflationRate, dt float32) {
	factor := 1 + inflationRate*dt
	for i := 0; i < e.n; i++ {
		e.Price[i] = clamp32(e.Price[i]*factor, 0.01, 1e6)
	}
}

// ScarcityPenalty writes the stock/max ratio per pool into out; values below
// 1 signal reduced production capacity.
func (e *Economy) ScarcityPenalty(out []float32) {
	n := minCount(e.n, len(out))
	for i := 0; i < n; i++ {
		cap := e.MaxResource[i]
		if cap <= 0 {
			cap = 1
		}
		out[i] = clamp32(e.Resource[i]/cap, 0, 1)
	}
}
