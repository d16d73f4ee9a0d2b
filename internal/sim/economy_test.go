package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestEconomy() *Economy {
	e := NewEconomy(3)
	for i := 0; i < 3; i++ {
		e.Resource[i] = 100
		e.MaxResource[i] = 500
		e.GatherRate[i] = 10
		e.DepletionRate[i] = 2
		e.Price[i] = 1
		e.Demand[i] = 50
		e.Supply[i] = 100
		e.TaxRate[i] = 0.1
	}
	return e
}

func TestEconomy_GatherAndDeplete(t *testing.T) {
	e := newTestEconomy()
	e.Gather(1.0)
	assert.InDelta(t, 110, e.Resource[0], 1e-4)

	e.Deplete(1.0)
	assert.InDelta(t, 108, e.Resource[0], 1e-4)
	assert.Equal(t, e.Resource[0], e.Supply[0], "supply tracks the stockpile")
}

func TestEconomy_MarketPrice_ZeroSupplyStaysFinite(t *testing.T) {
	e := NewEconomy(1)
	e.Resource[0] = 0
	e.Demand[0] = 10
	e.Supply[0] = 0
	e.Price[0] = 1

	e.MarketPrice()

	assert.False(t, isInf32(e.Price[0]))
	assert.False(t, isNaN32(e.Price[0]))
	assert.LessOrEqual(t, e.Price[0], float32(maxPrice))
	assert.InDelta(t, 3.1623, e.Price[0], 1e-3) // sqrt(10/1)
}

func TestEconomy_MarketPrice_ClampsRunawayPrices(t *testing.T) {
	e := NewEconomy(1)
	e.Demand[0] = 1e9
	e.Supply[0] = 1
	e.Price[0] = 900

	e.MarketPrice()

	assert.Equal(t, float32(maxPrice), e.Price[0])
}

func TestEconomy_CollectTax(t *testing.T) {
	e := newTestEconomy()
	population := []float32{1000, 0, 500}

	e.CollectTax(population)

	assert.InDelta(t, 10, e.TaxCollected[0], 1e-4) // 100*0.1*1000*0.001
	assert.InDelta(t, 90, e.Resource[0], 1e-4)
	assert.Equal(t, float32(0), e.TaxCollected[1])
}

func TestEconomy_Trade_BoundedBySellerStock(t *testing.T) {
	seller := newTestEconomy()
	buyer := newTestEconomy()

	seller.Trade(0, buyer, 0, 250) // more than the seller holds

	assert.Equal(t, float32(0), seller.Resource[0])
	assert.InDelta(t, 200, buyer.Resource[0], 1e-4)
	assert.InDelta(t, 100, seller.TradeVolume[0], 1e-4)
	assert.InDelta(t, 100, buyer.TradeVolume[0], 1e-4)
}

func TestEconomy_Trade_ConservesTotal(t *testing.T) {
	seller := newTestEconomy()
	buyer := newTestEconomy()

	before := seller.Resource[1] + buyer.Resource[2]
	seller.Trade(1, buyer, 2, 40)
	after := seller.Resource[1] + buyer.Resource[2]

	assert.InDelta(t, before, after, 1e-4)
}

func TestEconomy_Trade_OutOfRangeIsNoop(t *testing.T) {
	seller := newTestEconomy()
	buyer := newTestEconomy()

	seller.Trade(seller.Count(), buyer, 0, 40) // one past the end
	seller.Trade(0, buyer, buyer.Count(), 40)

	for i := 0; i < seller.Count(); i++ {
		assert.Equal(t, float32(100), seller.Resource[i])
		assert.Equal(t, float32(100), buyer.Resource[i])
		assert.Equal(t, float32(0), seller.TradeVolume[i])
	}
}

func TestEconomy_SupplyShock(t *testing.T) {
	e := newTestEconomy()
	e.SupplyShock(0.3)
	assert.InDelta(t, 70, e.Resource[0], 1e-4)
	assert.Equal(t, e.Resource[0], e.Supply[0])

	e.SupplyShock(2.0) // over-unity shock wipes stock, never negative
	assert.Equal(t, float32(0), e.Resource[0])
}

func TestEconomy_Inflation_Compounds(t *testing.T) {
	e := newTestEconomy()
	e.Inflation(0.1, 1.0)
	assert.InDelta(t, 1.1, e.Price[0], 1e-4)

	for tick := 0; tick < 100000; tick++ {
		e.Inflation(0.1, 1.0)
	}
	assert.False(t, isInf32(e.Price[0]))
	assert.LessOrEqual(t, e.Price[0], float32(1e6))
}

func TestEconomy_ScarcityPenalty(t *testing.T) {
	e := newTestEconomy()
	e.Resource[1] = 500
	e.MaxResource[2] = 0 // degenerate capacity

	out := make([]float32, e.Count())
	e.ScarcityPenalty(out)

	assert.InDelta(t, 0.2, out[0], 1e-4)
	assert.InDelta(t, 1.0, out[1], 1e-4)
	assert.False(t, isNaN32(out[2]))
}

func TestEconomy_DemandUpdate(t *testing.T) {
	e := newTestEconomy()
	e.DemandUpdate(1000)
	assert.InDelta(t, 60, e.Demand[0], 1e-4)

	e.DemandUpdate(-1e9)
	assert.Equal(t, float32(0), e.Demand[0], "demand never goes negative")
}
