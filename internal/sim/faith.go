// Faith and religion — belief accumulation, heresy, miracles, conversion,
// schism pressure.
package sim

// Faith mana pools are capped at a fixed ceiling.
const manaCap = 1000.0

// Faith holds per-faction religious columns plus the per-index draw state
// consumed by MiracleCheck.
type Faith struct {
	FaithLevel     []float32 // current faith strength (0..1)
	Mana           []float32 // divine mana pool
	ManaRegen      []float32 // mana regen rate per tick
	HeresyRate     []float32 // rate at which heresy spreads
	MiracleChance  []float32 // base probability a miracle triggers
	DevoteeCount   []float32 // number of active devotees
	TempleCount    []float32 // number of temples providing a bonus
	SchismRisk     []float32 // accumulated schism pressure (0..1)
	ConversionRate []float32 // rate of converting non-believers
	DivineFavor    []float32 // current favor with the deity (0..1)

	rng []uint32
	n   int
}

// NewFaith allocates a container with count factions. Draw state starts
// index-derived; call Reseed for a reproducible run keyed to one seed.
func NewFaith(count int) *Faith {
	if count < 0 {
		count = 0
	}
	f := &Faith{
		FaithLevel:     make([]float32, count),
		Mana:           make([]float32, count),
		ManaRegen:      make([]float32, count),
		HeresyRate:     make([]float32, count),
		MiracleChance:  make([]float32, count),
		DevoteeCount:   make([]float32, count),
		TempleCount:    make([]float32, count),
		SchismRisk:     make([]float32, count),
		ConversionRate: make([]float32, count),
		DivineFavor:    make([]float32, count),
		rng:            make([]uint32, count),
		n:              count,
	}
	f.Reseed(0)
	return f
}

// Count returns the number of religious factions.
func (f *Faith) Count() int { return f.n }

// Reseed installs per-index draw state derived from seed. Subsequent draws
// consume and advance this state.
func (f *Faith) Reseed(seed uint32) {
	for i := range f.rng {
		f.rng[i] = drawSeed(i, seed)
	}
}

// DrawState copies out the per-index draw state, for snapshotting.
func (f *Faith) DrawState() []uint32 {
	out := make([]uint32, f.n)
	copy(out, f.rng)
	return out
}

// RestoreDrawState reinstalls previously snapshotted draw state. Extra or
// missing entries are ignored.
func (f *Faith) RestoreDrawState(state []uint32) {
	copy(f.rng, state)
}

// Generate grows faith proportionally to devotees and temple count.
func (f *Faith) Generate(dt float32) {
	for i := 0; i < f.n; i++ {
		gain := f.DevoteeCount[i] * (1 + f.TempleCount[i]*0.1) * 0.001 * dt
		f.FaithLevel[i] = clamp32(f.FaithLevel[i]+gain, 0, 1)
	}
}

// RegenMana restores mana scaled by divine favor.
func (f *Faith) RegenMana(dt float32) {
	for i := 0; i < f.n; i++ {
		gain := f.ManaRegen[i] * f.DivineFavor[i] * dt
		f.Mana[i] = clamp32(f.Mana[i]+gain, 0, manaCap)
	}
}

// HeresySpread grows heresy logistically among low-faith populations.
// Heresy is tracked implicitly as 1 - faith level.
func (f *Faith) HeresySpread(dt float32) {
	for i := 0; i < f.n; i++ {
		heresy := 1 - f.FaithLevel[i]
		d := f.HeresyRate[i] * (1 - f.FaithLevel[i]) * heresy * (1 - heresy)
		heresy = clamp32(heresy+d*dt, 0, 1)
		f.FaithLevel[i] = 1 - heresy
	}
}

// MiracleCheck performs one Bernoulli draw per faction with probability
// miracle_chance * divine_favor and writes the outcomes into out (clamped to
// the shorter length). Each draw advances that faction's stored state.
func (f *Faith) MiracleCheck(out []bool) {
	n := minCount(f.n, len(out))
	for i := 0; i < n; i++ {
		roll := lcgFloat(&f.rng[i])
		out[i] = roll < f.MiracleChance[i]*f.DivineFavor[i]
	}
}

// ConversionTick drifts devotee counts toward a population cap scaled by
// faith level.
func (f *Faith) ConversionTick(dt float32) {
	const popCap = 1000.0
	for i := 0; i < f.n; i++ {
		target := popCap * f.FaithLevel[i]
		delta := f.ConversionRate[i] * (target - f.DevoteeCount[i]) * dt
		f.DevoteeCount[i] = clamp32(f.DevoteeCount[i]+delta, 0, popCap)
	}
}

// SchismAccumulate raises schism risk monotonically while faith is low.
func (f *Faith) SchismAccumulate(dt float32) {
	for i := 0; i < f.n; i++ {
		rise := (1 - f.FaithLevel[i]) * 0.01 * dt
		f.SchismRisk[i] = clamp32(f.SchismRisk[i]+rise, 0, 1)
	}
}

// DivineFavorUpdate shifts every faction's favor by pietyDelta.
func (f *Faith) DivineFavorUpdate(pietyDelta float32) {
	for i := 0; i < f.n; i++ {
		f.DivineFavor[i] = clamp32(f.DivineFavor[i]+pietyDelta, 0, 1)
	}
}

// TempleBonus recomputes miracle chance from temple count.
func (f *Faith) TempleBonus() {
	const baseMiracle = 0.01
	for i := 0; i < f.n; i++ {
		f.MiracleChance[i] = baseMiracle * (1 + f.TempleCount[i]*0.05)
	}
}

// RitualCost deducts ritualMana from faction idx's mana pool.
func (f *Faith) RitualCost(idx int, ritualMana float32) {
	if idx < 0 || idx >= f.n {
		return
	}
	f.Mana[idx] = clamp32(f.Mana[idx]-ritualMana, 0, manaCap)
}

// DevoteeDrift moves devotee counts slowly toward faith_level * 1000.
func (f *Faith) DevoteeDrift(dt float32) {
	const targetScale = 1000.0
	const driftRate = 0.05
	for i := 0; i < f.n; i++ {
		target := f.FaithLevel[i] * targetScale
		f.DevoteeCount[i] += driftRate * (target - f.DevoteeCount[i]) * dt
		f.DevoteeCount[i] = clamp32(f.DevoteeCount[i], 0, targetScale)
	}
}
