package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestFaith() *Faith {
	f := NewFaith(4)
	for i := 0; i < 4; i++ {
		f.FaithLevel[i] = 0.5
		f.Mana[i] = 100
		f.ManaRegen[i] = 10
		f.HeresyRate[i] = 0.2
		f.MiracleChance[i] = 0.5
		f.DevoteeCount[i] = 100
		f.TempleCount[i] = 3
		f.ConversionRate[i] = 0.1
		f.DivineFavor[i] = 0.8
	}
	return f
}

func TestFaith_Generate_BoundedByOne(t *testing.T) {
	f := newTestFaith()
	for tick := 0; tick < 10000; tick++ {
		f.Generate(1.0)
	}
	for i := 0; i < f.Count(); i++ {
		assert.LessOrEqual(t, f.FaithLevel[i], float32(1))
	}
}

func TestFaith_RegenMana_ScaledByFavor(t *testing.T) {
	f := newTestFaith()
	f.RegenMana(1.0)
	assert.InDelta(t, 108, f.Mana[0], 1e-4) // 10 * 0.8
}

func TestFaith_HeresySpread_KeepsFaithInUnitRange(t *testing.T) {
	f := newTestFaith()
	f.FaithLevel[0] = 0.05
	f.FaithLevel[1] = 0.95
	for tick := 0; tick < 1000; tick++ {
		f.HeresySpread(1.0)
	}
	for i := 0; i < f.Count(); i++ {
		assert.GreaterOrEqual(t, f.FaithLevel[i], float32(0))
		assert.LessOrEqual(t, f.FaithLevel[i], float32(1))
	}
}

func TestFaith_MiracleCheck_DeterministicUnderReseed(t *testing.T) {
	f := newTestFaith()

	a := make([]bool, f.Count())
	b := make([]bool, f.Count())

	f.Reseed(42)
	f.MiracleCheck(a)
	f.Reseed(42)
	f.MiracleCheck(b)

	assert.Equal(t, a, b, "same seed and prior state must reproduce draws")
}

func TestFaith_MiracleCheck_StateAdvances(t *testing.T) {
	f := newTestFaith()
	f.Reseed(7)

	first := make([]bool, f.Count())
	var streak [8][]bool
	f.MiracleCheck(first)
	same := true
	for round := range streak {
		streak[round] = make([]bool, f.Count())
		f.MiracleCheck(streak[round])
		for i := range first {
			if streak[round][i] != first[i] {
				same = false
			}
		}
	}
	assert.False(t, same, "draw state must advance between calls")
}

func TestFaith_MiracleCheck_ImpossibleAndCertain(t *testing.T) {
	f := newTestFaith()
	out := make([]bool, f.Count())

	for i := 0; i < f.Count(); i++ {
		f.MiracleChance[i] = 0
	}
	f.MiracleCheck(out)
	for _, v := range out {
		assert.False(t, v)
	}

	for i := 0; i < f.Count(); i++ {
		f.MiracleChance[i] = 2 // chance*favor > 1
	}
	f.MiracleCheck(out)
	for _, v := range out {
		assert.True(t, v)
	}
}

func TestFaith_ConversionAndDevoteeDrift_Capped(t *testing.T) {
	f := newTestFaith()
	f.FaithLevel[0] = 1
	for tick := 0; tick < 2000; tick++ {
		f.ConversionTick(1.0)
		f.DevoteeDrift(1.0)
	}
	assert.LessOrEqual(t, f.DevoteeCount[0], float32(1000))
	assert.Greater(t, f.DevoteeCount[0], float32(900), "devotees converge toward faith*1000")
}

func TestFaith_SchismAccumulate_Monotonic(t *testing.T) {
	f := newTestFaith()
	f.FaithLevel[0] = 0.1
	prev := f.SchismRisk[0]
	for tick := 0; tick < 50; tick++ {
		f.SchismAccumulate(1.0)
		assert.GreaterOrEqual(t, f.SchismRisk[0], prev)
		prev = f.SchismRisk[0]
	}
}

func TestFaith_TempleBonus(t *testing.T) {
	f := newTestFaith()
	f.TempleBonus()
	assert.InDelta(t, 0.01*(1+3*0.05), f.MiracleChance[0], 1e-6)
}

func TestFaith_RitualCost_OutOfRangeIsNoop(t *testing.T) {
	f := newTestFaith()
	f.RitualCost(f.Count(), 50) // one past the end
	f.RitualCost(-1, 50)
	for i := 0; i < f.Count(); i++ {
		assert.Equal(t, float32(100), f.Mana[i])
	}

	f.RitualCost(0, 50)
	assert.Equal(t, float32(50), f.Mana[0])
}

func TestFaith_DivineFavorUpdate_Clamped(t *testing.T) {
	f := newTestFaith()
	f.DivineFavorUpdate(5)
	for i := 0; i < f.Count(); i++ {
		assert.Equal(t, float32(1), f.DivineFavor[i])
	}
	f.DivineFavorUpdate(-5)
	for i := 0; i < f.Count(); i++ {
		assert.Equal(t, float32(0), f.DivineFavor[i])
	}
}
