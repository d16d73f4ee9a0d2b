// World ties the columnar systems together and runs them each tick.
package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/pantheon/internal/config"
	"github.com/talgya/pantheon/internal/sim"
)

// World holds the complete simulation state. Per-index alignment is by
// convention: index i in Pop, Faith, Econ, Psyche, Tech and End refers to the
// same faction; Combat and Move share unit indices; Env has its own cell
// indexing.
type World struct {
	ID uuid.UUID

	Pop    *sim.Population
	Faith  *sim.Faith
	Combat *sim.Combat
	Econ   *sim.Economy
	Env    *sim.Environment
	Move   *sim.Movement
	Divine *sim.Divine
	Psyche *sim.Psyche
	Tech   *sim.Tech
	End    *sim.EndGame

	Events   []Event // Recent events (trimmed weekly)
	LastTick uint64  // Most recent tick processed
	Stats    WorldStats

	cfg config.Config

	// mu serializes container access between the tick loop and outside
	// callers. The tick layers take it themselves; anything touching the
	// containers from another goroutine must hold it.
	mu sync.Mutex

	// Scratch flag buffers reused across ticks to keep the hot path
	// allocation-free.
	unlockFlags  []bool
	endFlags     []bool
	miracleFlags []bool
	routFlags    []bool
	defectFlags  []bool
	droughtFlags []bool
	floodFlags   []bool

	prevPopulation float32
}

// Event is a notable occurrence in the world.
type Event struct {
	Tick        uint64 `json:"tick"`
	Description string `json:"description"`
	Category    string `json:"category"` // "faith", "combat", "tech", "weather", "endgame"
}

// WorldStats tracks aggregate statistics, refreshed daily.
type WorldStats struct {
	TotalPopulation float64 `json:"total_population"`
	TotalWealth     float64 `json:"total_wealth"`
	AvgHappiness    float32 `json:"avg_happiness"`
	AvgStability    float32 `json:"avg_stability"`
	AvgTechLevel    float32 `json:"avg_tech_level"`
	MaxEra          float32 `json:"max_era"`
	ActiveFires     int     `json:"active_fires"`
	UnitsAlive      int     `json:"units_alive"`
	FactionsEnded   int     `json:"factions_ended"`
}

// NewWorld allocates all containers at the sizes the config names and keys
// every draw stream off the config seed.
func NewWorld(cfg config.Config) *World {
	w := &World{
		ID:     uuid.New(),
		Pop:    sim.NewPopulation(cfg.Factions),
		Faith:  sim.NewFaith(cfg.Factions),
		Combat: sim.NewCombat(cfg.Units),
		Econ:   sim.NewEconomy(cfg.Factions),
		Env:    sim.NewEnvironment(cfg.Cells),
		Move:   sim.NewMovement(cfg.Units),
		Divine: sim.NewDivine(cfg.Factions),
		Psyche: sim.NewPsyche(cfg.Units),
		Tech:   sim.NewTech(cfg.Factions),
		End:    sim.NewEndGame(cfg.Factions),
		cfg:    cfg,

		unlockFlags:  make([]bool, cfg.Factions),
		endFlags:     make([]bool, cfg.Factions),
		miracleFlags: make([]bool, cfg.Factions),
		routFlags:    make([]bool, cfg.Units),
		defectFlags:  make([]bool, cfg.Units),
		droughtFlags: make([]bool, cfg.Cells),
		floodFlags:   make([]bool, cfg.Cells),
	}

	seed := uint32(cfg.Seed)
	w.Faith.Reseed(seed)
	w.Combat.Reseed(seed)
	for i := 0; i < w.End.Count(); i++ {
		w.End.Seed(i, seed+uint32(i))
	}
	return w
}

// Config returns the configuration the world was built from.
func (w *World) Config() config.Config { return w.cfg }

// Lock takes the world mutex. Two-index scalar operations (casts, trades,
// migrations) and snapshot reads are not safe against a running tick loop
// without it.
func (w *World) Lock() { w.mu.Lock() }

// Unlock releases the world mutex.
func (w *World) Unlock() { w.mu.Unlock() }

// CurrentTick returns the most recently processed tick number.
func (w *World) CurrentTick() uint64 { return w.LastTick }

// TickMinute advances every system by one step. Systems run in dependency
// order: weather feeds demographics, demographics feed the economy, faith and
// psychology feed combat, movement positions feed the spatial grid, and the
// end-game pass reads everything.
func (w *World) TickMinute(tick uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.LastTick = tick
	dt := w.cfg.DT

	// Weather first: everything downstream reads a settled environment.
	w.Env.TemperatureDiffuse(w.cfg.TempRate, dt)
	w.Env.RainfallUpdate(dt)
	w.Env.FireSpread(w.cfg.FireSpreadProb, dt)
	w.Env.FireConsume(dt)
	w.Env.HumidityEvaporate(dt)
	w.Env.WindDecay(dt)
	w.Env.PressureGradient()

	// Demographics.
	w.Pop.LogisticGrowth(dt)
	w.Pop.SIRStep(dt)
	w.Pop.Starvation(dt)
	w.Pop.AgeCohortShift(dt)
	w.Pop.Births(dt)
	w.Pop.Deaths(dt)
	w.Pop.CarryingCapPressure()
	w.Pop.RecoveryBonus(dt)

	// Economy reads the population written above.
	totalPop := float32(0)
	for i := 0; i < w.Pop.Count(); i++ {
		totalPop += w.Pop.Population[i]
	}
	w.Econ.Gather(dt)
	w.Econ.Deplete(dt)
	w.Econ.DemandUpdate(totalPop - w.prevPopulation)
	w.Econ.MarketPrice()
	w.Econ.Inflation(w.cfg.InflationRate, dt)
	w.Econ.ResourceCap()
	w.prevPopulation = totalPop

	// Faith.
	w.Faith.Generate(dt)
	w.Faith.RegenMana(dt)
	w.Faith.HeresySpread(dt)
	w.Faith.ConversionTick(dt)
	w.Faith.SchismAccumulate(dt)
	w.Faith.TempleBonus()
	w.Faith.DevoteeDrift(dt)

	// Psychology, then the morale export into combat.
	w.Psyche.UtilityEvaluate()
	w.Psyche.HappinessUpdate(w.Econ)
	w.Psyche.SocialBondUpdate(dt)
	w.Psyche.MemoryFade(dt)
	w.Psyche.ExportMorale(w.Combat)

	// Combat upkeep. Decay runs after the export so attrition is visible
	// in the morale the rout check reads.
	w.Combat.DecayMorale(dt)
	w.Combat.RegenHP(w.cfg.HPRegenRate, dt)

	// Movement: flocking forces accumulate, then positions integrate.
	w.Move.FlockSeparation(w.cfg.FlockRadius, w.cfg.FlockStrength)
	w.Move.FlockAlignment(w.cfg.FlockRadius, w.cfg.FlockStrength)
	w.Move.FlockCohesion(w.cfg.FlockRadius, w.cfg.FlockStrength)
	w.Move.Integrate(dt)
	w.Move.ClampSpeed()
	w.Move.HeadingUpdate()

	// Divine upkeep.
	w.Divine.EnergyRegen(w.Faith, dt)
	w.Divine.HealRecover(dt)
	w.Divine.CooldownTick(dt)
	w.Divine.EnergyClamp()

	// Technology.
	w.Tech.PopResearchBonus(w.Pop)
	w.Tech.ResearchTick(w.Pop, dt)
	w.Tech.CostScale()
	w.Tech.UnlockCheck(w.unlockFlags)
	for i, unlocked := range w.unlockFlags {
		if unlocked {
			w.recordEvent(tick, "tech",
				fmt.Sprintf("faction %d reached tech level %.0f", i, w.Tech.TechLevel[i]))
		}
	}
	w.Tech.GoldenAgeTick(dt)
	w.Tech.CultureGrow(dt)
	w.Tech.EraAdvance()
	w.Tech.Decay(dt)

	// End-game pass reads everything above.
	w.End.EntropyIncrease(dt)
	w.End.StabilityUpdate(w.Pop, w.Tech)
	w.End.SpatialGridAssign(w.Move, w.cfg.GridCellSize)
	w.End.EndTimerTick(dt)
	w.End.VictoryUpdate(w.Pop, w.Tech)
}

// TickHour runs the probabilistic and threshold checks that do not need
// per-minute resolution: miracles, routs, defections, weather extremes.
func (w *World) TickHour(tick uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.Faith.MiracleCheck(w.miracleFlags)
	for i, hit := range w.miracleFlags {
		if hit {
			w.recordEvent(tick, "faith", fmt.Sprintf("a miracle manifests for faction %d", i))
		}
	}

	w.Combat.RoutCheck(w.routFlags)
	for i, routed := range w.routFlags {
		if routed {
			w.recordEvent(tick, "combat", fmt.Sprintf("unit %d breaks and routs", i))
		}
	}

	w.Psyche.DefectionCheck(w.defectFlags)
	for i, gone := range w.defectFlags {
		if gone {
			w.recordEvent(tick, "combat", fmt.Sprintf("npc %d defects to another faction", i))
		}
	}

	w.Env.DroughtCheck(w.cfg.DroughtBelow, w.droughtFlags)
	w.Env.FloodCheck(w.cfg.FloodAbove, w.floodFlags)
	droughts, floods := 0, 0
	for i := range w.droughtFlags {
		if w.droughtFlags[i] {
			droughts++
		}
		if w.floodFlags[i] {
			floods++
		}
	}
	if droughts > 0 {
		w.recordEvent(tick, "weather", fmt.Sprintf("%d cells in drought", droughts))
	}
	if floods > 0 {
		w.recordEvent(tick, "weather", fmt.Sprintf("%d cells flooding", floods))
	}
}

// TickDay runs golden-age triggers, taxation, chaos events, and the daily
// report.
func (w *World) TickDay(tick uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.Econ.CollectTax(w.Pop.Population)

	for i := 0; i < w.Tech.Count(); i++ {
		before := w.Tech.GoldenAgeTime[i]
		w.Tech.GoldenAgeTrigger(i, w.cfg.GoldenAgeCulture)
		if before <= 0 && w.Tech.GoldenAgeTime[i] > 0 {
			w.recordEvent(tick, "tech", fmt.Sprintf("faction %d enters a golden age", i))
		}
	}

	for i := 0; i < w.End.Count(); i++ {
		w.End.ChaosEvent(i)
	}

	w.End.EndConditionCheck(w.endFlags)
	for i, ended := range w.endFlags {
		if ended {
			w.recordEvent(tick, "endgame", fmt.Sprintf("faction %d has reached its end", i))
		}
	}

	w.updateStats()

	eventCounts := make(map[string]int)
	for _, e := range w.Events {
		eventCounts[e.Category]++
	}

	slog.Info("daily report",
		"tick", tick,
		"time", SimTime(tick),
		"population", humanize.CommafWithDigits(w.Stats.TotalPopulation, 0),
		"wealth", humanize.CommafWithDigits(w.Stats.TotalWealth, 0),
		"avg_happiness", fmt.Sprintf("%.3f", w.Stats.AvgHappiness),
		"avg_stability", fmt.Sprintf("%.3f", w.Stats.AvgStability),
		"avg_tech", fmt.Sprintf("%.1f", w.Stats.AvgTechLevel),
		"max_era", w.Stats.MaxEra,
		"fires", w.Stats.ActiveFires,
		"units_alive", w.Stats.UnitsAlive,
		"factions_ended", w.Stats.FactionsEnded,
		"events_faith", eventCounts["faith"],
		"events_combat", eventCounts["combat"],
		"events_tech", eventCounts["tech"],
		"events_weather", eventCounts["weather"],
	)
}

// TickWeek trims the event buffer and logs a summary.
func (w *World) TickWeek(tick uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	slog.Info("weekly summary",
		"tick", tick,
		"time", SimTime(tick),
		"events_this_week", len(w.Events),
	)
	// Keep the last 1000 events to prevent unbounded growth.
	if len(w.Events) > 1000 {
		w.Events = w.Events[len(w.Events)-1000:]
	}
}

func (w *World) recordEvent(tick uint64, category, description string) {
	w.Events = append(w.Events, Event{
		Tick:        tick,
		Description: description,
		Category:    category,
	})
}

func (w *World) updateStats() {
	var totalPop, totalWealth float64
	var happiness, stability, tech float32
	maxEra := float32(0)
	fires, unitsAlive, ended := 0, 0, 0

	for i := 0; i < w.Pop.Count(); i++ {
		totalPop += float64(w.Pop.Population[i])
	}
	for i := 0; i < w.Econ.Count(); i++ {
		totalWealth += float64(w.Econ.Resource[i] + w.Econ.TaxCollected[i])
	}
	for i := 0; i < w.Psyche.Count(); i++ {
		happiness += w.Psyche.Happiness[i]
	}
	for i := 0; i < w.End.Count(); i++ {
		stability += w.End.Stability[i]
		if w.End.EndTimer[i] <= 0 {
			ended++
		}
	}
	for i := 0; i < w.Tech.Count(); i++ {
		tech += w.Tech.TechLevel[i]
		if w.Tech.Era[i] > maxEra {
			maxEra = w.Tech.Era[i]
		}
	}
	for i := 0; i < w.Env.Count(); i++ {
		if w.Env.FireIntensity[i] > 0 {
			fires++
		}
	}
	for i := 0; i < w.Combat.Count(); i++ {
		if w.Combat.HP[i] > 0 {
			unitsAlive++
		}
	}

	w.Stats.TotalPopulation = totalPop
	w.Stats.TotalWealth = totalWealth
	if n := w.Psyche.Count(); n > 0 {
		w.Stats.AvgHappiness = happiness / float32(n)
	}
	if n := w.End.Count(); n > 0 {
		w.Stats.AvgStability = stability / float32(n)
	}
	if n := w.Tech.Count(); n > 0 {
		w.Stats.AvgTechLevel = tech / float32(n)
	}
	w.Stats.MaxEra = maxEra
	w.Stats.ActiveFires = fires
	w.Stats.UnitsAlive = unitsAlive
	w.Stats.FactionsEnded = ended
}
