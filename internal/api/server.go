// Package api provides the HTTP API for observing and steering the world.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/talgya/pantheon/internal/engine"
	"github.com/talgya/pantheon/internal/persistence"
)

// Server serves the world state over HTTP.
type Server struct {
	World    *engine.World
	Eng      *engine.Engine
	DB       *persistence.DB
	Hub      *Hub
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()

	// Public endpoints (GET, read-only — anyone can check in on the world).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/factions", s.handleFactions)
	mux.HandleFunc("/api/v1/faction/", s.handleFactionDetail)
	mux.HandleFunc("/api/v1/units", s.handleUnits)
	mux.HandleFunc("/api/v1/environment", s.handleEnvironment)

	// Live tick feed.
	if s.Hub != nil {
		mux.HandleFunc("/api/v1/live", func(w http.ResponseWriter, r *http.Request) {
			s.Hub.ServeWS(w, r)
		})
	}

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))
	mux.HandleFunc("/api/v1/cast", s.adminOnly(s.handleCast))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no PANTHEON_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.World.Lock()
	defer s.World.Unlock()

	writeJSON(w, map[string]any{
		"name":       "Pantheon",
		"world_id":   s.World.ID.String(),
		"tick":       s.World.CurrentTick(),
		"sim_time":   engine.SimTime(s.World.CurrentTick()),
		"speed":      s.Eng.Speed,
		"running":    s.Eng.Running,
		"factions":   s.World.Pop.Count(),
		"units":      s.World.Combat.Count(),
		"cells":      s.World.Env.Count(),
		"population": s.World.Stats.TotalPopulation,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.World.Lock()
	stats := s.World.Stats
	s.World.Unlock()
	writeJSON(w, stats)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	s.World.Lock()
	buffered := s.World.Events
	if len(buffered) > limit {
		buffered = buffered[len(buffered)-limit:]
	}
	events := make([]engine.Event, 0, limit)

	// The in-memory buffer is flushed to the database on every save; pull
	// older history from there when the buffer alone cannot fill the limit.
	if len(buffered) < limit && s.DB != nil {
		if hist, err := s.DB.RecentEvents(limit - len(buffered)); err == nil {
			for i := len(hist) - 1; i >= 0; i-- { // newest-first → chronological
				events = append(events, hist[i])
			}
		}
	}
	events = append(events, buffered...)
	s.World.Unlock()

	writeJSON(w, events)
}

// factionSummary flattens one index across the per-faction containers.
type factionSummary struct {
	ID         int     `json:"id"`
	Population float32 `json:"population"`
	FaithLevel float32 `json:"faith_level"`
	Mana       float32 `json:"mana"`
	Resource   float32 `json:"resource"`
	Price      float32 `json:"price"`
	Energy     float32 `json:"divine_energy"`
	TechLevel  float32 `json:"tech_level"`
	Era        float32 `json:"era"`
	Stability  float32 `json:"stability"`
	VictoryPts float32 `json:"victory_points"`
	Entropy    float32 `json:"entropy"`
}

func (s *Server) factionSummary(i int) factionSummary {
	return factionSummary{
		ID:         i,
		Population: s.World.Pop.Population[i],
		FaithLevel: s.World.Faith.FaithLevel[i],
		Mana:       s.World.Faith.Mana[i],
		Resource:   s.World.Econ.Resource[i],
		Price:      s.World.Econ.Price[i],
		Energy:     s.World.Divine.Energy[i],
		TechLevel:  s.World.Tech.TechLevel[i],
		Era:        s.World.Tech.Era[i],
		Stability:  s.World.End.Stability[i],
		VictoryPts: s.World.End.VictoryPts[i],
		Entropy:    s.World.End.Entropy[i],
	}
}

func (s *Server) handleFactions(w http.ResponseWriter, r *http.Request) {
	s.World.Lock()
	defer s.World.Unlock()

	out := make([]factionSummary, s.World.Pop.Count())
	for i := range out {
		out[i] = s.factionSummary(i)
	}
	writeJSON(w, out)
}

func (s *Server) handleFactionDetail(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/v1/faction/")
	id, err := strconv.Atoi(idStr)
	if err != nil || id < 0 || id >= s.World.Pop.Count() {
		http.Error(w, "unknown faction", http.StatusNotFound)
		return
	}

	s.World.Lock()
	defer s.World.Unlock()

	writeJSON(w, map[string]any{
		"summary":       s.factionSummary(id),
		"susceptible":   s.World.Pop.Susceptible[id],
		"infected":      s.World.Pop.Infected[id],
		"recovered":     s.World.Pop.Recovered[id],
		"food_supply":   s.World.Pop.FoodSupply[id],
		"devotees":      s.World.Faith.DevoteeCount[id],
		"temples":       s.World.Faith.TempleCount[id],
		"schism_risk":   s.World.Faith.SchismRisk[id],
		"tax_collected": s.World.Econ.TaxCollected[id],
		"culture":       s.World.Tech.Culture[id],
		"golden_age":    s.World.Tech.GoldenAgeTime[id] > 0,
		"end_timer":     s.World.End.EndTimer[id],
	})
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	type unitSummary struct {
		ID     int     `json:"id"`
		HP     float32 `json:"hp"`
		MaxHP  float32 `json:"max_hp"`
		Morale float32 `json:"morale"`
		PosX   float32 `json:"x"`
		PosY   float32 `json:"y"`
		Speed  float32 `json:"speed"`
	}

	s.World.Lock()
	defer s.World.Unlock()

	out := make([]unitSummary, s.World.Combat.Count())
	for i := range out {
		out[i] = unitSummary{
			ID:     i,
			HP:     s.World.Combat.HP[i],
			MaxHP:  s.World.Combat.MaxHP[i],
			Morale: s.World.Combat.Morale[i],
			PosX:   s.World.Move.PosX[i],
			PosY:   s.World.Move.PosY[i],
			Speed:  s.World.Move.Speed[i],
		}
	}
	writeJSON(w, out)
}

func (s *Server) handleEnvironment(w http.ResponseWriter, r *http.Request) {
	type cellSummary struct {
		ID          int     `json:"id"`
		Temperature float32 `json:"temperature"`
		Rainfall    float32 `json:"rainfall"`
		Humidity    float32 `json:"humidity"`
		Fire        float32 `json:"fire"`
		Elevation   float32 `json:"elevation"`
	}

	s.World.Lock()
	defer s.World.Unlock()

	out := make([]cellSummary, s.World.Env.Count())
	for i := range out {
		out[i] = cellSummary{
			ID:          i,
			Temperature: s.World.Env.Temperature[i],
			Rainfall:    s.World.Env.Rainfall[i],
			Humidity:    s.World.Env.Humidity[i],
			Fire:        s.World.Env.FireIntensity[i],
			Elevation:   s.World.Env.Elevation[i],
		}
	}
	writeJSON(w, out)
}

// handleSpeed adjusts the engine speed multiplier.
func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, map[string]any{"speed": s.Eng.Speed})
		return
	}

	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.Speed < 0 || req.Speed > 100 {
		http.Error(w, "speed must be in [0,100]", http.StatusBadRequest)
		return
	}

	s.Eng.Speed = req.Speed
	slog.Info("speed changed", "speed", req.Speed)
	writeJSON(w, map[string]any{"speed": s.Eng.Speed})
}

// handleSnapshot forces an immediate save.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "persistence disabled", http.StatusServiceUnavailable)
		return
	}

	// SaveWorldState takes the world lock itself; only the tick readback
	// afterwards needs one here.
	if err := s.DB.SaveWorldState(s.World); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.World.Lock()
	tick := s.World.CurrentTick()
	s.World.Unlock()
	writeJSON(w, map[string]any{"saved_at_tick": tick})
}

// handleCast performs a divine action on behalf of a god. The cast only
// succeeds when the god can afford it; failed casts change nothing.
func (s *Server) handleCast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		God    int     `json:"god"`
		Power  string  `json:"power"` // "meteor", "smite", "heal", "blessing", "terraform"
		Target int     `json:"target"`
		Tiles  int     `json:"tiles"`
		X      float32 `json:"x"`
		Y      float32 `json:"y"`
		Radius float32 `json:"radius"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	// Casts mutate live containers; hold the world lock so they serialize
	// with the tick loop.
	wld := s.World
	wld.Lock()
	defer wld.Unlock()

	ok := false
	switch req.Power {
	case "meteor":
		ok = wld.Divine.MeteorCast(req.God)
		if ok {
			radius := req.Radius
			if radius <= 0 {
				radius = 10
			}
			wld.Combat.AOEDamage(wld.Move.PosX, wld.Move.PosY, req.X, req.Y, radius, 50)
		}
	case "smite":
		before := wld.Divine.Energy[clampIndex(req.God, wld.Divine.Count())]
		wld.Divine.Smite(wld.Combat, req.God, req.Target)
		ok = wld.Divine.Energy[clampIndex(req.God, wld.Divine.Count())] != before
	case "heal":
		wld.Divine.HealApply(wld.Combat, req.God, req.Target)
		ok = true
	case "blessing":
		wld.Divine.Blessing(wld.Combat, req.God, req.Target)
		ok = true
	case "terraform":
		ok = wld.Divine.TerraformCast(req.God, req.Tiles)
	default:
		http.Error(w, "unknown power", http.StatusBadRequest)
		return
	}

	slog.Info("divine cast", "god", req.God, "power", req.Power, "ok", ok)
	writeJSON(w, map[string]any{"success": ok})
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n && n > 0 {
		return n - 1
	}
	return i
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
