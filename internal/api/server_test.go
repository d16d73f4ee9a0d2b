package api

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/pantheon/internal/config"
	"github.com/talgya/pantheon/internal/engine"
	"github.com/talgya/pantheon/internal/persistence"
)

func testServer() *Server {
	cfg := config.Default()
	cfg.Factions = 3
	cfg.Units = 4
	cfg.Cells = 9

	w := engine.NewWorld(cfg)
	for i := 0; i < w.Divine.Count(); i++ {
		w.Divine.Energy[i] = 100
		w.Divine.EnergyCap[i] = 100
		w.Divine.MeteorCost[i] = 30
		w.Divine.SmitePower[i] = 20
	}
	for i := 0; i < w.Combat.Count(); i++ {
		w.Combat.HP[i] = 100
		w.Combat.MaxHP[i] = 100
	}

	return &Server{
		World:    w,
		Eng:      engine.NewEngine(0),
		AdminKey: "sekrit",
	}
}

func TestHandleStatus(t *testing.T) {
	s := testServer()
	rec := httptest.NewRecorder()
	s.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Pantheon", body["name"])
	assert.EqualValues(t, 3, body["factions"])
	assert.EqualValues(t, 4, body["units"])
}

func TestHandleFactions(t *testing.T) {
	s := testServer()
	s.World.Pop.Population[1] = 500

	rec := httptest.NewRecorder()
	s.handleFactions(rec, httptest.NewRequest(http.MethodGet, "/api/v1/factions", nil))

	var out []factionSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 3)
	assert.Equal(t, float32(500), out[1].Population)
}

func TestHandleFactionDetail_Unknown(t *testing.T) {
	s := testServer()
	rec := httptest.NewRecorder()
	s.handleFactionDetail(rec, httptest.NewRequest(http.MethodGet, "/api/v1/faction/42", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminOnly_RejectsWithoutToken(t *testing.T) {
	s := testServer()
	handler := s.adminOnly(s.handleSpeed)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed":2}`))
	rec := httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed":2}`))
	req.Header.Set("Authorization", "Bearer sekrit")
	rec = httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.0, s.Eng.Speed)
}

func TestAdminOnly_GetPassesThrough(t *testing.T) {
	s := testServer()
	handler := s.adminOnly(s.handleSpeed)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/speed", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleCast_MeteorDeductsEnergy(t *testing.T) {
	s := testServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cast",
		strings.NewReader(`{"god":0,"power":"meteor","x":0,"y":0,"radius":5}`))
	rec := httptest.NewRecorder()
	s.handleCast(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float32(70), s.World.Divine.Energy[0])
}

func TestHandleCast_FailedCastChangesNothing(t *testing.T) {
	s := testServer()
	s.World.Divine.Energy[0] = 5 // cannot afford a 30-point meteor
	hpBefore := append([]float32(nil), s.World.Combat.HP...)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cast",
		strings.NewReader(`{"god":0,"power":"meteor"}`))
	rec := httptest.NewRecorder()
	s.handleCast(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, float32(5), s.World.Divine.Energy[0])
	assert.Equal(t, hpBefore, s.World.Combat.HP)
}

func TestHandleCast_UnknownPower(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cast",
		strings.NewReader(`{"god":0,"power":"earthquake"}`))
	rec := httptest.NewRecorder()
	s.handleCast(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// Casts land through the public handler while the tick loop runs; the world
// lock must keep the two sides from tearing each other's columns.
func TestHandleCast_SerializesWithTickLoop(t *testing.T) {
	s := testServer()
	for i := 0; i < s.World.Divine.Count(); i++ {
		s.World.Divine.EnergyCap[i] = 10000
		s.World.Divine.Energy[i] = 10000
		s.World.Divine.RegenRate[i] = 50
	}

	var wg sync.WaitGroup
	done := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		var tick uint64
		for {
			select {
			case <-done:
				return
			default:
				tick++
				s.World.TickMinute(tick)
			}
		}
	}()

	for i := 0; i < 200; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cast",
			strings.NewReader(`{"god":0,"power":"meteor","x":0,"y":0,"radius":50}`))
		s.handleCast(httptest.NewRecorder(), req)
	}
	close(done)
	wg.Wait()

	for i := 0; i < s.World.Divine.Count(); i++ {
		e := s.World.Divine.Energy[i]
		assert.False(t, math.IsNaN(float64(e)))
		assert.GreaterOrEqual(t, e, float32(0))
		assert.LessOrEqual(t, e, s.World.Divine.EnergyCap[i])
	}
	for i := 0; i < s.World.Combat.Count(); i++ {
		hp := s.World.Combat.HP[i]
		assert.False(t, math.IsNaN(float64(hp)))
		assert.GreaterOrEqual(t, hp, float32(0))
		assert.LessOrEqual(t, hp, s.World.Combat.MaxHP[i])
	}
}

func TestHandleEvents_LimitApplies(t *testing.T) {
	s := testServer()
	for i := 0; i < 100; i++ {
		s.World.Events = append(s.World.Events, engine.Event{Tick: uint64(i), Category: "tech"})
	}

	rec := httptest.NewRecorder()
	s.handleEvents(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events?limit=10", nil))

	var out []engine.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 10)
	assert.Equal(t, uint64(99), out[9].Tick, "newest events are kept")
}

func TestHandleEvents_FallsBackToSavedHistory(t *testing.T) {
	s := testServer()
	db, err := persistence.Open(filepath.Join(t.TempDir(), "world.db"))
	require.NoError(t, err)
	defer db.Close()
	s.DB = db

	// Saving flushes the in-memory buffer into the events table.
	s.World.Events = append(s.World.Events,
		engine.Event{Tick: 1, Description: "a temple rises", Category: "faith"},
		engine.Event{Tick: 2, Description: "a fire spreads", Category: "weather"},
	)
	require.NoError(t, db.SaveWorldState(s.World))
	require.Empty(t, s.World.Events)

	s.World.Events = append(s.World.Events,
		engine.Event{Tick: 3, Description: "bronze working unlocked", Category: "tech"})

	rec := httptest.NewRecorder()
	s.handleEvents(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events?limit=10", nil))

	var out []engine.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 3)
	assert.Equal(t, uint64(1), out[0].Tick)
	assert.Equal(t, uint64(2), out[1].Tick)
	assert.Equal(t, uint64(3), out[2].Tick, "buffered events follow saved history")
}
