// Combat and warfare — damage, mitigation, morale, routing, regen, AoE,
// siege.
package sim

// Combat holds per-unit battle columns plus the per-index draw state consumed
// by HitRoll and CritRoll.
type Combat struct {
	BaseAtk       []float32 // base attack power
	Armor         []float32 // armor rating
	HP            []float32 // current hit points
	MaxHP         []float32 // maximum hit points
	Morale        []float32 // unit morale (0..1)
	MoraleDecay   []float32 // morale decay rate per tick
	HitChance     []float32 // base hit probability (0..1)
	CritChance    []float32 // critical hit probability (0..1)
	CritMult      []float32 // critical damage multiplier
	RoutThreshold []float32 // morale below which the unit routs

	rng []uint32
	n   int
}

// NewCombat allocates a container with count units.
func NewCombat(count int) *Combat {
	if count < 0 {
		count = 0
	}
	c := &Combat{
		BaseAtk:       make([]float32, count),
		Armor:         make([]float32, count),
		HP:            make([]float32, count),
		MaxHP:         make([]float32, count),
		Morale:        make([]float32, count),
		MoraleDecay:   make([]float32, count),
		HitChance:     make([]float32, count),
		CritChance:    make([]float32, count),
		CritMult:      make([]float32, count),
		RoutThreshold: make([]float32, count),
		rng:           make([]uint32, count),
		n:             count,
	}
	c.Reseed(0)
	return c
}

// Count returns the number of combat units.
func (c *Combat) Count() int { return c.n }

// Reseed installs per-index draw state derived from seed.
func (c *Combat) Reseed(seed uint32) {
	for i := range c.rng {
		c.rng[i] = drawSeed(i, seed^0x9e3779b9)
	}
}

// DrawState copies out the per-index draw state, for snapshotting.
func (c *Combat) DrawState() []uint32 {
	out := make([]uint32, c.n)
	copy(out, c.rng)
	return out
}

// RestoreDrawState reinstalls previously snapshotted draw state.
func (c *Combat) RestoreDrawState(state []uint32) {
	copy(c.rng, state)
}

// ApplyDamage deals raw damage to the defender, reduced by half their armor,
// with a floor of 1.
func (c *Combat) ApplyDamage(attacker, defender int, raw float32) {
	if attacker < 0 || attacker >= c.n {
		return
	}
	if defender < 0 || defender >= c.n {
		return
	}
	dmg := raw - c.Armor[defender]*0.5
	if dmg < 1 {
		dmg = 1
	}
	c.HP[defender] = clamp32(c.HP[defender]-dmg, 0, c.MaxHP[defender])
}

// ArmorMitigation pre-scales incoming damage in place using the standard
// mitigation formula armor/(armor+100). Iterates the shorter of dmg and the
// container.
func (c *Combat) ArmorMitigation(dmg []float32) {
	n := minCount(c.n, len(dmg))
	for i := 0; i < n; i++ {
		mit := c.Armor[i] / (c.Armor[i] + 100)
		dmg[i] = dmg[i] * (1 - mit)
	}
}

// HitRoll reports whether attacker's strike lands, advancing its draw state.
// Out-of-range attackers always miss.
func (c *Combat) HitRoll(attacker int) bool {
	if attacker < 0 || attacker >= c.n {
		return false
	}
	return lcgFloat(&c.rng[attacker]) < c.HitChance[attacker]
}

// CritRoll returns the damage multiplier for attacker's strike: crit_mult on
// a critical, otherwise 1. Out-of-range attackers get 1.
func (c *Combat) CritRoll(attacker int) float32 {
	if attacker < 0 || attacker >= c.n {
		return 1
	}
	if lcgFloat(&c.rng[attacker]) < c.CritChance[attacker] {
		return c.CritMult[attacker]
	}
	return 1
}

// DecayMorale degrades every unit's morale at its own decay rate.
func (c *Combat) DecayMorale(dt float32) {
	for i := 0; i < c.n; i++ {
		c.Morale[i] = clamp32(c.Morale[i]-c.MoraleDecay[i]*dt, 0, 1)
	}
}

// BoostMorale instantly raises one unit's morale.
func (c *Combat) BoostMorale(unit int, amount float32) {
	if unit < 0 || unit >= c.n {
		return
	}
	c.Morale[unit] = clamp32(c.Morale[unit]+amount, 0, 1)
}

// RoutCheck flags units whose morale fell below their rout threshold. The
// state machine acting on the flag lives in the game layer.
func (c *Combat) RoutCheck(out []bool) {
	n := minCount(c.n, len(out))
	for i := 0; i < n; i++ {
		out[i] = c.Morale[i] < c.RoutThreshold[i]
	}
}

// RegenHP heals every unit by regenRate * max_hp per unit time.
func (c *Combat) RegenHP(regenRate, dt float32) {
	for i := 0; i < c.n; i++ {
		heal := regenRate * c.MaxHP[i] * dt
		c.HP[i] = clamp32(c.HP[i]+heal, 0, c.MaxHP[i])
	}
}

// AOEDamage deals dmg to every unit within radius of (cx, cy), falling off
// linearly with distance and flooring at 1 per affected unit. Positions come
// from the movement container's columns.
func (c *Combat) AOEDamage(posX, posY []float32, cx, cy, radius, dmg float32) {
	if radius <= 0 {
		return
	}
	r2 := radius * radius
	n := minCount(c.n, minCount(len(posX), len(posY)))
	for i := 0; i < n; i++ {
		dx := posX[i] - cx
		dy := posY[i] - cy
		d2 := dx*dx + dy*dy
		if d2 >= r2 {
			continue
		}
		falloff := 1 - sqrt32(d2)/radius
		actual := dmg * falloff
		if actual < 1 {
			actual = 1
		}
		c.HP[i] = clamp32(c.HP[i]-actual, 0, c.MaxHP[i])
	}
}

// SiegeDamage drains a building's HP continuously at siegePower per unit
// time.
func (c *Combat) SiegeDamage(building int, siegePower, dt float32) {
	if building < 0 || building >= c.n {
		return
	}
	c.HP[building] = clamp32(c.HP[building]-siegePower*dt, 0, c.MaxHP[building])
}
