// NPC psychology — affect channels (fear, loyalty, happiness, aggression)
// that feed combat morale.
package sim

// Psyche holds per-NPC emotional columns.
type Psyche struct {
	Happiness    []float32 // general wellbeing (0..1)
	Fear         []float32 // current fear level (0..1)
	Loyalty      []float32 // loyalty to current faction (0..1)
	Aggression   []float32 // aggression tendency (0..1)
	UtilityWork  []float32 // utility score for working
	UtilityFight []float32 // utility score for fighting
	UtilityFlee  []float32 // utility score for fleeing
	ThreatLevel  []float32 // perceived incoming threat (0..1)
	MemoryDecay  []float32 // rate at which events fade from memory
	SocialBond   []float32 // social bond strength (0..1)

	n int
}

// NewPsyche allocates a container with count NPCs.
func NewPsyche(count int) *Psyche {
	if count < 0 {
		count = 0
	}
	return &Psyche{
		Happiness:    make([]float32, count),
		Fear:         make([]float32, count),
		Loyalty:      make([]float32, count),
		Aggression:   make([]float32, count),
		UtilityWork:  make([]float32, count),
		UtilityFight: make([]float32, count),
		UtilityFlee:  make([]float32, count),
		ThreatLevel:  make([]float32, count),
		MemoryDecay:  make([]float32, count),
		SocialBond:   make([]float32, count),
		n:            count,
	}
}

// Count returns the number of NPCs.
func (p *Psyche) Count() int { return p.n }

// UtilityEvaluate compares work/fight/flee utilities and nudges aggression
// toward the winner. It is a tendency shift, not a decision commit.
func (p *Psyche) UtilityEvaluate() {
	for i := 0; i < p.n; i++ {
		uw := p.UtilityWork[i]
		uf := p.UtilityFight[i]
		ul := p.UtilityFlee[i]
		if ul > uf && ul > uw {
			p.Aggression[i] = clamp32(p.Aggression[i]-0.1, 0, 1)
		} else if uf > uw {
			p.Aggression[i] = clamp32(p.Aggression[i]+0.05, 0, 1)
		}
	}
}

// ThreatAssess combines a threat unit's HP fraction and normalized attack
// into threat and fear increments for one NPC.
func (p *Psyche) ThreatAssess(c *Combat, npc, threatUnit int) {
	if npc < 0 || npc >= p.n {
		return
	}
	if threatUnit < 0 || threatUnit >= c.n {
		return
	}
	hpFrac := c.HP[threatUnit] / (c.MaxHP[threatUnit] + 1)
	atkNorm := c.BaseAtk[threatUnit] / 20 // normalized to expected max
	threat := clamp32(hpFrac*atkNorm, 0, 1)
	p.ThreatLevel[npc] = clamp32(p.ThreatLevel[npc]+threat*0.3, 0, 1)
	p.Fear[npc] = clamp32(p.Fear[npc]+threat*0.1, 0, 1)
}

// LoyaltyShift adjusts one NPC's loyalty by delta, scaled by social bond.
func (p *Psyche) LoyaltyShift(npc int, delta float32) {
	if npc < 0 || npc >= p.n {
		return
	}
	scaled := delta * (0.5 + 0.5*p.SocialBond[npc])
	p.Loyalty[npc] = clamp32(p.Loyalty[npc]+scaled, 0, 1)
}

// FearDecay fades fear exponentially at each NPC's memory decay rate.
func (p *Psyche) FearDecay(dt float32) {
	for i := 0; i < p.n; i++ {
		k := p.MemoryDecay[i] * dt
		p.Fear[i] = clamp32(p.Fear[i]*(1-k), 0, 1)
	}
}

// HappinessUpdate blends happiness (90/10) toward a value derived from
// relative resource abundance minus fear.
func (p *Psyche) HappinessUpdate(e *Economy) {
	n := minCount(p.n, e.n)
	for i := 0; i < n; i++ {
		cap := e.MaxResource[i]
		if cap <= 0 {
			cap = 1
		}
		ratio := clamp32(e.Resource[i]/cap, 0, 1)
		happy := 0.5 * (1 + ratio - p.Fear[i])
		p.Happiness[i] = clamp32(p.Happiness[i]*0.9+happy*0.1, 0, 1)
	}
}

// AggressionTrigger raises one NPC's aggression after a provocation,
// inversely with happiness.
func (p *Psyche) AggressionTrigger(npc int, provocation float32) {
	if npc < 0 || npc >= p.n {
		return
	}
	rise := provocation * (1 - p.Happiness[npc])
	p.Aggression[npc] = clamp32(p.Aggression[npc]+rise, 0, 1)
}

// SocialBondUpdate strengthens bonds while loyalty is high and weakens them
// otherwise.
func (p *Psyche) SocialBondUpdate(dt float32) {
	for i := 0; i < p.n; i++ {
		delta := (p.Loyalty[i] - 0.5) * 0.01 * dt
		p.SocialBond[i] = clamp32(p.SocialBond[i]+delta, 0, 1)
	}
}

// MemoryFade decays fear, aggression and threat together at the memory
// decay rate.
func (p *Psyche) MemoryFade(dt float32) {
	for i := 0; i < p.n; i++ {
		k := p.MemoryDecay[i] * dt
		p.Fear[i] = clamp32(p.Fear[i]*(1-k), 0, 1)
		p.Aggression[i] = clamp32(p.Aggression[i]*(1-k), 0, 1)
		p.ThreatLevel[i] = clamp32(p.ThreatLevel[i]*(1-k), 0, 1)
	}
}

// ExportMorale overwrites combat morale from psychological state:
// morale = happiness * (1 - fear) * loyalty.
func (p *Psyche) ExportMorale(c *Combat) {
	n := minCount(p.n, c.n)
	for i := 0; i < n; i++ {
		c.Morale[i] = clamp32(p.Happiness[i]*(1-p.Fear[i])*p.Loyalty[i], 0, 1)
	}
}

// DefectionCheck flags NPCs whose loyalty has fallen below 0.2.
func (p *Psyche) DefectionCheck(out []bool) {
	n := minCount(p.n, len(out))
	for i := 0; i < n; i++ {
		out[i] = p.Loyalty[i] < 0.2
	}
}
