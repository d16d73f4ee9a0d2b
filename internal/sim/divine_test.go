package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestDivine() *Divine {
	d := NewDivine(2)
	for i := 0; i < 2; i++ {
		d.Energy[i] = 50
		d.EnergyCap[i] = 100
		d.RegenRate[i] = 5
		d.MeteorCost[i] = 10
		d.HealAmount[i] = 20
		d.HealDecay[i] = 0.1
		d.TerraformCost[i] = 4
		d.SmitePower[i] = 30
		d.BlessingMult[i] = 1.5
		d.Cooldown[i] = 3
	}
	return d
}

func TestDivine_EnergyRegen_ScaledByFavor(t *testing.T) {
	d := newTestDivine()
	f := NewFaith(2)
	f.DivineFavor[0] = 0.5
	f.DivineFavor[1] = 1

	d.EnergyRegen(f, 1.0)

	assert.InDelta(t, 52.5, d.Energy[0], 1e-4)
	assert.InDelta(t, 55, d.Energy[1], 1e-4)
}

func TestDivine_MeteorCast_AffordAndDeduct(t *testing.T) {
	d := newTestDivine()

	assert.True(t, d.MeteorCast(0))
	assert.InDelta(t, 40, d.Energy[0], 1e-4)
}

func TestDivine_MeteorCast_InsufficientEnergyLeavesStateUntouched(t *testing.T) {
	d := newTestDivine()
	d.Energy[0] = 0

	assert.False(t, d.MeteorCast(0))
	assert.Equal(t, float32(0), d.Energy[0], "failed cast must not deduct")
}

func TestDivine_MeteorCast_OutOfRange(t *testing.T) {
	d := newTestDivine()
	assert.False(t, d.MeteorCast(d.Count()))
	assert.False(t, d.MeteorCast(-1))
}

func TestDivine_HealApply_DecaysStrengthPerCast(t *testing.T) {
	d := newTestDivine()
	c := newTestCombat()
	c.HP[1] = 50

	d.HealApply(c, 0, 1)

	assert.InDelta(t, 70, c.HP[1], 1e-4)
	assert.InDelta(t, 18, d.HealAmount[0], 1e-4, "each cast weakens the heal")

	d.HealApply(c, 0, c.Count()) // no-op
	assert.InDelta(t, 18, d.HealAmount[0], 1e-4)
}

func TestDivine_HealRecover_TowardCapFraction(t *testing.T) {
	d := newTestDivine()
	d.HealAmount[0] = 1
	for tick := 0; tick < 1000; tick++ {
		d.HealRecover(1.0)
	}
	assert.InDelta(t, 10, d.HealAmount[0], 0.1, "heal regrows toward 10% of energy cap")
}

func TestDivine_TerraformCast_CostPerTile(t *testing.T) {
	d := newTestDivine()

	assert.True(t, d.TerraformCast(0, 10)) // 40 energy
	assert.InDelta(t, 10, d.Energy[0], 1e-4)

	assert.False(t, d.TerraformCast(0, 10), "cannot afford a second sweep")
	assert.InDelta(t, 10, d.Energy[0], 1e-4)
}

func TestDivine_Smite_ArmorReducedFloorOne(t *testing.T) {
	d := newTestDivine()
	c := newTestCombat()

	d.Smite(c, 0, 1)

	assert.InDelta(t, 72.5, c.HP[1], 1e-3) // 30 - 10*0.25
	assert.InDelta(t, 47, d.Energy[0], 1e-3)

	c.Armor[2] = 1000
	d.Smite(c, 0, 2)
	assert.InDelta(t, 99, c.HP[2], 1e-3, "smite always deals at least 1")
}

func TestDivine_Blessing_MultipliesStatsInPlace(t *testing.T) {
	d := newTestDivine()
	c := newTestCombat()

	d.Blessing(c, 0, 1)

	assert.InDelta(t, 15, c.BaseAtk[1], 1e-4)
	assert.InDelta(t, 150, c.MaxHP[1], 1e-4)
	assert.InDelta(t, 150, c.HP[1], 1e-4)
	assert.InDelta(t, 40, d.Energy[0], 1e-4)
}

func TestDivine_CooldownAndClamp(t *testing.T) {
	d := newTestDivine()
	d.CooldownTick(1.0)
	assert.InDelta(t, 2, d.Cooldown[0], 1e-4)

	d.CooldownTick(100)
	assert.Equal(t, float32(0), d.Cooldown[0])

	d.Energy[0] = 1e9
	d.EnergyClamp()
	assert.Equal(t, float32(100), d.Energy[0])
}

func TestDivine_FavorScale(t *testing.T) {
	d := newTestDivine()
	f := NewFaith(2)
	f.DivineFavor[0] = 1
	f.DivineFavor[1] = 0

	d.FavorScale(f)

	assert.InDelta(t, 5, d.RegenRate[0], 1e-4)
	assert.InDelta(t, 2.5, d.RegenRate[1], 1e-4)
}
