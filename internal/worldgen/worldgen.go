// Package worldgen seeds a fresh world's columns from layered simplex noise.
// Environment cells get terrain-derived weather, factions get noise-varied
// demographics and economies, and units get scattered starting positions.
package worldgen

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/pantheon/internal/engine"
)

// Seed fills every container in w with an initial state derived from the
// config seed. The same seed always yields the same world.
func Seed(w *engine.World) {
	seed := w.Config().Seed

	// Independent noise layers, one per concern.
	elevNoise := opensimplex.NewNormalized(seed)
	moistNoise := opensimplex.NewNormalized(seed + 1)
	tempNoise := opensimplex.NewNormalized(seed + 2)
	popNoise := opensimplex.NewNormalized(seed + 3)
	posNoise := opensimplex.NewNormalized(seed + 4)

	seedEnvironment(w, elevNoise, moistNoise, tempNoise)
	seedFactions(w, popNoise)
	seedUnits(w, posNoise)
}

// seedEnvironment lays cells out on a square grid and samples each weather
// column from its noise layer.
func seedEnvironment(w *engine.World, elev, moist, temp opensimplex.Noise) {
	env := w.Env
	side := int(math.Ceil(math.Sqrt(float64(env.Count()))))
	if side < 1 {
		side = 1
	}

	for i := 0; i < env.Count(); i++ {
		x := float64(i % side)
		y := float64(i / side)

		e := octaveNoise(elev, x, y, 4, 0.08, 0.5)
		m := octaveNoise(moist, x, y, 3, 0.06, 0.5)
		t := octaveNoise(temp, x, y, 3, 0.05, 0.5)

		env.Elevation[i] = float32(e)
		env.Humidity[i] = float32(m)
		// Warm lowlands, cold peaks; targets in roughly -5..30.
		env.TempTarget[i] = float32(30*t - 10*e + 5)
		env.Temperature[i] = env.TempTarget[i]
		env.Pressure[i] = 1013.25
		// Moist cells carry more combustible growth.
		env.Fuel[i] = float32(0.3 + 0.7*m)
	}
	env.ElevationTempBias()
}

// seedFactions derives per-faction demographics, economy, faith, divine
// energy, tech and end-game columns from one noise layer.
func seedFactions(w *engine.World, n opensimplex.Noise) {
	for i := 0; i < w.Pop.Count(); i++ {
		x := float64(i) * 1.7
		rich := octaveNoise(n, x, 0, 3, 0.11, 0.5)   // general prosperity
		pious := octaveNoise(n, x, 10, 3, 0.11, 0.5) // religious leaning

		w.Pop.Population[i] = float32(80 + rich*240)
		w.Pop.CarryingCap[i] = float32(800 + rich*1200)
		w.Pop.GrowthRate[i] = 0.02
		w.Pop.Susceptible[i] = 1
		w.Pop.Beta[i] = 0.3
		w.Pop.GammaRec[i] = 0.1
		w.Pop.FoodSupply[i] = float32(300 + rich*400)
		w.Pop.FoodThreshold[i] = 100
		w.Pop.AgeYoung[i] = 0.3
		w.Pop.AgeAdult[i] = 0.5
		w.Pop.AgeElder[i] = 0.2

		w.Econ.Resource[i] = float32(100 + rich*400)
		w.Econ.MaxResource[i] = 1000
		w.Econ.GatherRate[i] = float32(1 + rich*3)
		w.Econ.DepletionRate[i] = 0.01
		w.Econ.Price[i] = 10
		w.Econ.Demand[i] = w.Pop.Population[i]
		w.Econ.Supply[i] = w.Econ.Resource[i]
		w.Econ.TaxRate[i] = 0.1

		w.Faith.FaithLevel[i] = float32(0.2 + pious*0.6)
		w.Faith.DevoteeCount[i] = w.Pop.Population[i] * float32(pious) * 0.5
		w.Faith.TempleCount[i] = float32(math.Floor(pious * 5))
		w.Faith.ManaRegen[i] = 1
		w.Faith.MiracleChance[i] = 0.01
		w.Faith.HeresyRate[i] = float32(0.005 + (1-pious)*0.02)
		w.Faith.ConversionRate[i] = 0.01
		w.Faith.DivineFavor[i] = float32(pious)

		w.Divine.EnergyCap[i] = 1000
		w.Divine.Energy[i] = float32(100 + pious*200)
		w.Divine.RegenRate[i] = 1
		w.Divine.MeteorCost[i] = 200
		w.Divine.HealAmount[i] = 50
		w.Divine.HealDecay[i] = 0.1
		w.Divine.TerraformCost[i] = 30
		w.Divine.SmitePower[i] = 80
		w.Divine.BlessingMult[i] = 1.2

		w.Tech.ResearchRate[i] = float32(1 + rich*4)
		w.Tech.TechCost[i] = 100
		w.Tech.Culture[i] = float32(rich * 200)
		w.Tech.CultureSpread[i] = 0.02
		w.Tech.GoldenAgeMult[i] = 2

		w.End.EntropyRate[i] = 0.0001
		w.End.ChaosMult[i] = 1
		w.End.Stability[i] = 0.8
		// Timers must start positive or the world is born already ended.
		w.End.EndTimer[i] = 10000
	}
}

// seedUnits scatters combat units over the map and gives them matching
// psychological baselines.
func seedUnits(w *engine.World, n opensimplex.Noise) {
	extent := math.Sqrt(float64(w.Env.Count())) * 10
	if extent < 10 {
		extent = 10
	}

	for i := 0; i < w.Combat.Count(); i++ {
		x := float64(i) * 2.3
		px := octaveNoise(n, x, 0, 2, 0.13, 0.5)
		py := octaveNoise(n, x, 7, 2, 0.13, 0.5)
		grit := octaveNoise(n, x, 14, 2, 0.13, 0.5)

		w.Move.PosX[i] = float32(px * extent)
		w.Move.PosY[i] = float32(py * extent)
		w.Move.MaxSpeed[i] = float32(3 + grit*4)

		w.Combat.BaseAtk[i] = float32(5 + grit*15)
		w.Combat.Armor[i] = float32(grit * 20)
		w.Combat.MaxHP[i] = float32(80 + grit*40)
		w.Combat.HP[i] = w.Combat.MaxHP[i]
		w.Combat.Morale[i] = 0.7
		w.Combat.MoraleDecay[i] = 0.001
		w.Combat.HitChance[i] = float32(0.6 + grit*0.3)
		w.Combat.CritChance[i] = 0.1
		w.Combat.CritMult[i] = 2
		w.Combat.RoutThreshold[i] = 0.15

		w.Psyche.Happiness[i] = 0.6
		w.Psyche.Loyalty[i] = float32(0.4 + grit*0.5)
		w.Psyche.SocialBond[i] = 0.5
		w.Psyche.MemoryDecay[i] = 0.05
		w.Psyche.Aggression[i] = float32(grit * 0.5)
	}
}

// octaveNoise layers several noise frequencies for natural-looking variation.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
