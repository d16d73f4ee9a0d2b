// Divine powers — the energy economy behind god actions: meteor, terraform,
// smite, blessing, heal. Costed actions follow an afford-and-deduct pattern:
// check energy first, deduct and apply only on success, never partially.
package sim

// Divine holds per-god energy columns.
type Divine struct {
	Energy        []float32 // divine energy stored
	EnergyCap     []float32 // maximum energy capacity
	RegenRate     []float32 // energy regenerated per tick
	MeteorCost    []float32 // energy cost to call a meteor
	HealAmount    []float32 // current heal strength
	HealDecay     []float32 // rate at which heal effectiveness fades
	TerraformCost []float32 // energy cost per tile terraformed
	SmitePower    []float32 // base smite damage
	BlessingMult  []float32 // stat multiplier applied by a blessing
	Cooldown      []float32 // remaining cooldown ticks before reuse

	n int
}

// NewDivine allocates a container with count gods.
func NewDivine(count int) *Divine {
	if count < 0 {
		count = 0
	}
	return &Divine{
		Energy:        make([]float32, count),
		EnergyCap:     make([]float32, count),
		RegenRate:     make([]float32, count),
		MeteorCost:    make([]float32, count),
		HealAmount:    make([]float32, count),
		HealDecay:     make([]float32, count),
		TerraformCost: make([]float32, count),
		SmitePower:    make([]float32, count),
		BlessingMult:  make([]float32, count),
		Cooldown:      make([]float32, count),
		n:             count,
	}
}

// Count returns the number of gods.
func (d *Divine) Count() int { return d.n }

// EnergyRegen restores energy scaled by the linked faith container's divine
// favor. Gods without a faith counterpart regenerate at full rate.
func (d *Divine) EnergyRegen(f *Faith, dt float32) {
	for i := 0; i < d.n; i++ {
		favor := float32(1)
		if i < f.n {
			favor = f.DivineFavor[i]
		}
		gain := d.RegenRate[i] * favor * dt
		d.Energy[i] = clamp32(d.Energy[i]+gain, 0, d.EnergyCap[i])
	}
}

// MeteorCast checks whether the god can afford a meteor; on success the cost
// is deducted and true is returned. Failure leaves energy untouched.
func (d *Divine) MeteorCast(god int) bool {
	if god < 0 || god >= d.n {
		return false
	}
	if d.Energy[god] < d.MeteorCost[god] {
		return false
	}
	d.Energy[god] = clamp32(d.Energy[god]-d.MeteorCost[god], 0, d.EnergyCap[god])
	return true
}

// HealApply restores the target unit's HP by the god's heal strength, then
// weakens that strength for the next cast.
func (d *Divine) HealApply(c *Combat, god, target int) {
	if god < 0 || god >= d.n {
		return
	}
	if target < 0 || target >= c.n {
		return
	}
	c.HP[target] = clamp32(c.HP[target]+d.HealAmount[god], 0, c.MaxHP[target])
	d.HealAmount[god] = clamp32(d.HealAmount[god]*(1-d.HealDecay[god]), 1, 1e6)
}

// HealRecover regrows heal strength toward 10% of the energy cap.
func (d *Divine) HealRecover(dt float32) {
	for i := 0; i < d.n; i++ {
		target := d.EnergyCap[i] * 0.1
		diff := target - d.HealAmount[i]
		d.HealAmount[i] = clamp32(d.HealAmount[i]+diff*d.HealDecay[i]*dt, 1, 1e6)
	}
}

// TerraformCast checks whether the god can afford to terraform the given
// number of tiles; on success the total cost is deducted and true returned.
func (d *Divine) TerraformCast(god, tiles int) bool {
	if god < 0 || god >= d.n {
		return false
	}
	total := d.TerraformCost[god] * float32(tiles)
	if d.Energy[god] < total {
		return false
	}
	d.Energy[god] = clamp32(d.Energy[god]-total, 0, d.EnergyCap[god])
	return true
}

// Smite deals the god's smite power to the target, reduced by a quarter of
// their armor (floor 1), and drains a tenth of the power from the god.
func (d *Divine) Smite(c *Combat, god, target int) {
	if god < 0 || god >= d.n {
		return
	}
	if target < 0 || target >= c.n {
		return
	}
	dmg := d.SmitePower[god] - c.Armor[target]*0.25
	if dmg < 1 {
		dmg = 1
	}
	c.HP[target] = clamp32(c.HP[target]-dmg, 0, c.MaxHP[target])
	d.Energy[god] = clamp32(d.Energy[god]-d.SmitePower[god]*0.1, 0, d.EnergyCap[god])
}

// Blessing multiplies the target's attack and HP stats in place and charges
// the god a flat 10 energy.
func (d *Divine) Blessing(c *Combat, god, target int) {
	if god < 0 || god >= d.n {
		return
	}
	if target < 0 || target >= c.n {
		return
	}
	mult := d.BlessingMult[god]
	c.BaseAtk[target] *= mult
	c.MaxHP[target] *= mult
	c.HP[target] = clamp32(c.HP[target]*mult, 0, c.MaxHP[target])
	d.Energy[god] = clamp32(d.Energy[god]-10, 0, d.EnergyCap[god])
}

// CooldownTick counts all cooldowns down linearly.
func (d *Divine) CooldownTick(dt float32) {
	for i := 0; i < d.n; i++ {
		d.Cooldown[i] = clamp32(d.Cooldown[i]-dt, 0, 1e6)
	}
}

// EnergyClamp hard-clamps all energy values to [0, cap].
func (d *Divine) EnergyClamp() {
	for i := 0; i < d.n; i++ {
		d.Energy[i] = clamp32(d.Energy[i], 0, d.EnergyCap[i])
	}
}

// FavorScale scales each god's regen rate by the faith container's divine
// favor (0.5x at zero favor, 1x at full).
func (d *Divine) FavorScale(f *Faith) {
	n := minCount(d.n, f.n)
	for i := 0; i < n; i++ {
		d.RegenRate[i] *= 0.5 + 0.5*f.DivineFavor[i]
	}
}
